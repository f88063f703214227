// Package engine holds the fixed set of worlds a process runs, loads levels into them and fans the
// frame update out to every world.
package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/argus-labs/slotworld/pkg/statsd"
	"github.com/argus-labs/slotworld/pkg/vob"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// MaxWorlds is the number of worlds an engine can hold at once.
const MaxWorlds = 4

var ErrUnknownWorld = eris.New("unknown world")

// Engine owns up to MaxWorlds worlds. Every method that touches a world takes the engine lock, so
// frames and reads never overlap.
type Engine struct {
	options Options
	logger  zerolog.Logger
	index   level.Index

	mu     sync.Mutex
	worlds *slot.Allocator[*world.Instance]
	frames uint64
}

var _ world.Engine = (*Engine)(nil)

type Option func(*Engine)

// WithLogger sets the parent logger of the engine and its worlds.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine. Options set in the environment are overridden by non-zero fields of opts.
func New(opts Options, engineOpts ...Option) (*Engine, error) {
	options := newDefaultOptions()

	cfg, err := loadConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config")
	}
	cfg.applyToOptions(&options)
	options.apply(opts)

	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid engine options")
	}

	e := &Engine{
		options: options,
		logger:  zerolog.Nop(),
		worlds:  slot.New[*world.Instance](MaxWorlds),
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "engine").Logger()

	switch {
	case options.Index != nil:
		e.index = options.Index
	case options.RedisAddress != "":
		client := redis.NewClient(&redis.Options{Addr: options.RedisAddress})
		e.index = level.NewRedisIndex(client, options.RedisNamespace)
	default:
		e.index = level.NewDirIndex(options.ArchiveDir)
	}

	if options.StatsdAddress != "" {
		if err := statsd.Init(options.StatsdAddress, nil); err != nil {
			return nil, eris.Wrap(err, "failed to init statsd")
		}
	}

	e.logger.Info().
		Int("max_worlds", MaxWorlds).
		Int("max_entities", options.Capacities.Entities).
		Msg("engine created")
	return e, nil
}

// Capacities returns the allocator capacities every world of this engine uses.
func (e *Engine) Capacities() world.Capacities {
	return e.options.Capacities
}

// NewScriptEngine creates the script engine of a new world.
func (e *Engine) NewScriptEngine(maxNPCs int) script.Engine {
	return script.NewVM(maxNPCs, script.WithLogger(e.logger.With().Str("component", "script").Logger()))
}

// Index returns the level archive.
func (e *Engine) Index() level.Index {
	return e.index
}

// Levels lists the levels of the archive.
func (e *Engine) Levels(ctx context.Context) ([]string, error) {
	return e.index.List(ctx)
}

// AddWorld reads a level from the archive and loads it into a new world. Reading fails with
// level.ErrNotFound or level.ErrMalformed; ingesting fails with world.ErrLoad. On any failure no
// world slot stays allocated.
func (e *Engine) AddWorld(ctx context.Context, levelName string) (world.Handle, error) {
	start := time.Now()
	doc, err := level.Load(ctx, e.index, levelName)
	if err != nil {
		statsd.EmitLevelLoadStat(start, levelName, true)
		return world.Handle{}, eris.Wrapf(err, "failed to read level %q", levelName)
	}

	w := e.newWorld()
	e.mu.Lock()
	h, err := e.allocate(w)
	if err == nil {
		if err = w.InitFromLevel(e, doc); err != nil {
			e.worlds.Deallocate(h)
		}
	}
	e.mu.Unlock()
	if err != nil {
		return world.Handle{}, err
	}

	e.created(w)
	return h, nil
}

// AddEmptyWorld adds an initialized world without a level.
func (e *Engine) AddEmptyWorld() (world.Handle, error) {
	w := e.newWorld()
	e.mu.Lock()
	h, err := e.allocate(w)
	if err == nil {
		if err = w.Init(e); err != nil {
			e.worlds.Deallocate(h)
		}
	}
	e.mu.Unlock()
	if err != nil {
		return world.Handle{}, err
	}

	e.created(w)
	return h, nil
}

func (e *Engine) newWorld() *world.Instance {
	return world.New(world.WithLogger(e.logger), world.WithPopulator(vob.Populate))
}

func (e *Engine) allocate(w *world.Instance) (world.Handle, error) {
	h, err := e.worlds.Allocate()
	if err != nil {
		return world.Handle{}, eris.Wrapf(err, "engine holds at most %d worlds", MaxWorlds)
	}
	*e.worlds.MustGet(h) = w
	w.SetHandle(h)
	return h, nil
}

// created runs outside the lock so the hook may call back into the engine.
func (e *Engine) created(w *world.Instance) {
	e.logger.Info().
		Str("world_id", w.ID().String()).
		Str("level", w.LevelName()).
		Int("entities", w.LiveEntities()).
		Msg("world added")
	if e.options.OnWorldCreated != nil {
		e.options.OnWorldCreated(w)
	}
}

// World resolves a world handle. It does not lock; call it from the frame hook or inside Read.
func (e *Engine) World(h world.Handle) (*world.Instance, bool) {
	w, ok := e.worlds.Get(h)
	if !ok {
		return nil, false
	}
	return *w, true
}

// Worlds returns the handles of every world in slot order. It does not lock.
func (e *Engine) Worlds() []world.Handle {
	handles := make([]world.Handle, 0, e.worlds.Len())
	e.worlds.Each(func(h world.Handle, _ **world.Instance) bool {
		handles = append(handles, h)
		return true
	})
	return handles
}

// RemoveWorld destroys a world and frees its slot.
func (e *Engine) RemoveWorld(h world.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.World(h)
	if !ok {
		return eris.Wrapf(ErrUnknownWorld, "handle %s", h)
	}
	w.Destroy()
	e.worlds.Deallocate(h)
	e.logger.Info().Str("world_id", w.ID().String()).Msg("world removed")
	return nil
}

// FrameUpdate advances every world by dt seconds, then runs the frame hook.
func (e *Engine) FrameUpdate(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.worlds.Each(func(_ world.Handle, w **world.Instance) bool {
		(*w).OnFrameUpdate(dt)
		return true
	})
	e.frames++
	if e.options.OnFrameUpdate != nil {
		e.options.OnFrameUpdate(dt)
	}
}

// Frames returns the number of completed frame updates.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Read runs fn while no frame is in progress.
func (e *Engine) Read(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Close destroys every world and releases the level archive.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.worlds.Each(func(_ world.Handle, w **world.Instance) bool {
		(*w).Destroy()
		return true
	})
	e.worlds.Reset()

	if closer, ok := e.index.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return eris.Wrap(err, "failed to close level archive")
		}
	}
	e.logger.Info().Msg("engine closed")
	return nil
}
