package level

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// Index resolves level names to raw level files.
type Index interface {
	// Read returns the raw contents of a level file. Fails with ErrNotFound if there is none.
	Read(ctx context.Context, name string) ([]byte, error)
	// List returns the names of every level file, sorted.
	List(ctx context.Context) ([]string, error)
}

// Load reads a level from an index and parses it.
func Load(ctx context.Context, idx Index, name string) (*Document, error) {
	data, err := idx.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return Parse(name, data)
}

func isLevelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// -------------------------------------------------------------------------------------------------
// Directory index
// -------------------------------------------------------------------------------------------------

// DirIndex serves level files from a directory on disk.
type DirIndex struct {
	root string
}

var _ Index = (*DirIndex)(nil)

func NewDirIndex(root string) *DirIndex {
	return &DirIndex{root: root}
}

func (d *DirIndex) Read(_ context.Context, name string) ([]byte, error) {
	if !filepath.IsLocal(name) {
		return nil, eris.Wrapf(ErrNotFound, "level %q is outside the archive", name)
	}
	data, err := os.ReadFile(filepath.Join(d.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(ErrNotFound, "level %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read level %q", name)
	}
	return data, nil
}

func (d *DirIndex) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to list %s", d.root)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isLevelFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// -------------------------------------------------------------------------------------------------
// Redis index
// -------------------------------------------------------------------------------------------------

// RedisIndex serves level files stored as fields of one Redis hash.
type RedisIndex struct {
	client    redis.UniversalClient
	namespace string
}

var _ Index = (*RedisIndex)(nil)

// NewRedisIndex creates an index over the hash "<namespace>:levels".
func NewRedisIndex(client redis.UniversalClient, namespace string) *RedisIndex {
	return &RedisIndex{client: client, namespace: namespace}
}

func (r *RedisIndex) key() string {
	return r.namespace + ":levels"
}

func (r *RedisIndex) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.HGet(ctx, r.key(), name).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, eris.Wrapf(ErrNotFound, "level %q", name)
	} else if err != nil {
		return nil, eris.Wrapf(err, "failed to read level %q", name)
	}
	return data, nil
}

func (r *RedisIndex) List(ctx context.Context) ([]string, error) {
	names, err := r.client.HKeys(ctx, r.key()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to list levels")
	}
	slices.Sort(names)
	return names, nil
}

// Put stores a level file. The data is parsed first so a malformed level never enters the archive.
func (r *RedisIndex) Put(ctx context.Context, name string, data []byte) error {
	if _, err := Parse(name, data); err != nil {
		return err
	}
	return eris.Wrapf(r.client.HSet(ctx, r.key(), name, data).Err(), "failed to store level %q", name)
}

// Close closes the underlying client.
func (r *RedisIndex) Close() error {
	return eris.Wrap(r.client.Close(), "failed to close redis client")
}
