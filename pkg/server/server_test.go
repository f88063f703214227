package server_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/argus-labs/slotworld/internal/testutils"
	"github.com/argus-labs/slotworld/pkg/engine"
	"github.com/argus-labs/slotworld/pkg/server"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine *engine.Engine
	server *server.Server
	world  world.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "testworld.yaml"), []byte(testutils.LevelYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "jsonworld.json"), []byte(testutils.LevelJSON), 0o600))

	e, err := engine.New(engine.Options{ArchiveDir: root})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, e.Close()) })

	h, err := e.AddWorld(t.Context(), "testworld.yaml")
	require.NoError(t, err)

	s, err := server.New(e, server.Options{})
	require.NoError(t, err)
	return &fixture{engine: e, server: s, world: h}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		bz, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bz)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	res, err := f.server.App().Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	bz, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, bz
}

func (f *fixture) worldPath(suffix string) string {
	return fmt.Sprintf("/worlds/%d/%d%s", f.world.Index, f.world.Generation, suffix)
}

func decode[T any](t *testing.T, bz []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(bz, &v), string(bz))
	return v
}

type entityResult struct {
	Index      uint32                     `json:"index"`
	Generation uint32                     `json:"generation"`
	Components map[string]json.RawMessage `json:"components"`
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.engine.FrameUpdate(0.1)

	code, bz := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	res := decode[server.GetHealthResponse](t, bz)
	assert.True(t, res.IsServerRunning)
	assert.Equal(t, uint64(1), res.Frames)
	assert.Equal(t, 1, res.Worlds)
}

func TestLevels(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, bz := f.do(t, http.MethodGet, "/levels", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"jsonworld.json", "testworld.yaml"}, decode[[]string](t, bz))
}

func TestWorlds_AddListRemove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, bz := f.do(t, http.MethodPost, "/worlds", server.PostWorldRequest{Level: "jsonworld.json"})
	require.Equal(t, http.StatusCreated, code, string(bz))
	added := decode[map[string]any](t, bz)
	assert.Equal(t, "jsonworld", added["level"])

	code, bz = f.do(t, http.MethodGet, "/worlds", nil)
	require.Equal(t, http.StatusOK, code)
	worlds := decode[[]map[string]any](t, bz)
	require.Len(t, worlds, 2)
	assert.Equal(t, "testworld", worlds[0]["level"])
	assert.Equal(t, "Populated", worlds[0]["stage"])
	assert.InDelta(t, 6, worlds[0]["entities"], 0)

	code, _ = f.do(t, http.MethodDelete, f.worldPath(""), nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = f.do(t, http.MethodDelete, f.worldPath(""), nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.do(t, http.MethodGet, f.worldPath("/state"), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWorlds_AddErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "missing level name", body: server.PostWorldRequest{}, want: http.StatusBadRequest},
		{name: "unknown level", body: server.PostWorldRequest{Level: "nowhere.yaml"}, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			code, bz := f.do(t, http.MethodPost, "/worlds", tt.body)
			assert.Equal(t, tt.want, code, string(bz))
			assert.Contains(t, string(bz), `"error"`)
		})
	}
}

func TestDebugState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, bz := f.do(t, http.MethodGet, f.worldPath("/state"), nil)
	require.Equal(t, http.StatusOK, code, string(bz))
	entities := decode[[]entityResult](t, bz)
	assert.Len(t, entities, 6)
	vobs := 0
	for _, e := range entities {
		assert.Contains(t, e.Components, "Position")
		if _, ok := e.Components["Entity"]; ok {
			vobs++
		}
	}
	assert.Equal(t, 3, vobs)

	for _, path := range []string{
		"/worlds/0/0/state",
		"/worlds/4294967297/1/state",
		"/worlds/0/4294967297/state",
	} {
		code, _ = f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, code, path)
	}
	code, _ = f.do(t, http.MethodGet, "/worlds/3/1/state", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCQL(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		cql  string
		code int
		want int
	}{
		{cql: "ALL()", code: http.StatusOK, want: 6},
		{cql: "CONTAINS(Logic)", code: http.StatusOK, want: 3},
		{cql: "EXACT(Position, StaticMesh)", code: http.StatusOK, want: 3},
		{cql: "CONTAINS(Entity) & !CONTAINS(Logic)", code: http.StatusOK, want: 0},
		{cql: "CONTAINS(Health)", code: http.StatusBadRequest},
		{cql: "CONTAINS(", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.cql, func(t *testing.T) {
			t.Parallel()
			code, bz := f.do(t, http.MethodPost, f.worldPath("/cql"), server.CQLQueryRequest{CQL: tt.cql})
			require.Equal(t, tt.code, code, string(bz))
			if tt.code != http.StatusOK {
				return
			}
			res := decode[struct {
				Results []entityResult `json:"results"`
			}](t, bz)
			assert.Len(t, res.Results, tt.want)
		})
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	code, bz := f.do(t, http.MethodPost, f.worldPath("/search"), server.SearchRequest{
		Find:  []string{"Position"},
		Match: "contains",
		Where: "_index < 2",
	})
	require.Equal(t, http.StatusOK, code, string(bz))
	res := decode[struct {
		Results []map[string]any `json:"results"`
	}](t, bz)
	assert.Len(t, res.Results, 2)

	code, _ = f.do(t, http.MethodPost, f.worldPath("/search"), server.SearchRequest{Find: []string{"Entity"}, Match: "any"})
	assert.Equal(t, http.StatusBadRequest, code)
}
