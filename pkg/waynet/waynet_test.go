package waynet_test

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/waynet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGrid builds
//
//	A - B - C
//	|       |
//	D ----- E     F
//
// where the A-D-E-C detour is longer than A-B-C.
func newGrid(t *testing.T) *waynet.Waynet {
	t.Helper()
	w := waynet.New()
	points := map[string]mgl32.Vec3{
		"A": {0, 0, 0},
		"B": {10, 0, 0},
		"C": {20, 0, 0},
		"D": {0, 0, 10},
		"E": {20, 0, 3},
		"F": {40, 0, 10},
	}
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := w.AddWaypoint(name, points[name], mgl32.Vec3{1, 0, 0})
		require.NoError(t, err)
	}
	for _, e := range [][2]string{{"A", "B"}, {"B", "C"}, {"A", "D"}, {"D", "E"}, {"E", "C"}} {
		require.NoError(t, w.Connect(e[0], e[1]))
	}
	return w
}

func idx(t *testing.T, w *waynet.Waynet, names ...string) []int {
	t.Helper()
	out := make([]int, len(names))
	for i, n := range names {
		var ok bool
		out[i], ok = w.Index(n)
		require.True(t, ok, n)
	}
	return out
}

func TestFindWay(t *testing.T) {
	t.Parallel()

	w := newGrid(t)
	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"shortest of two routes", "A", "C", []string{"A", "B", "C"}},
		{"reverse", "C", "A", []string{"C", "B", "A"}},
		{"through detour", "D", "C", []string{"D", "E", "C"}},
		{"same waypoint", "B", "B", []string{"B"}},
		{"unreachable", "A", "F", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, to := idx(t, w, tt.from)[0], idx(t, w, tt.to)[0]
			got := w.FindWay(from, to)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, idx(t, w, tt.want...), got)
		})
	}

	assert.Empty(t, w.FindWay(-1, 0))
	assert.Empty(t, w.FindWay(0, 99))
}

func TestWaynet_BuildErrors(t *testing.T) {
	t.Parallel()

	w := waynet.New()
	_, err := w.AddWaypoint("A", mgl32.Vec3{}, mgl32.Vec3{})
	require.NoError(t, err)

	_, err = w.AddWaypoint("A", mgl32.Vec3{}, mgl32.Vec3{})
	require.Error(t, err)
	_, err = w.AddWaypoint("", mgl32.Vec3{}, mgl32.Vec3{})
	require.Error(t, err)

	err = w.Connect("A", "Z")
	assert.True(t, eris.Is(err, waynet.ErrUnknownWaypoint))
	require.Error(t, w.Connect("A", "A"))
}

func TestWaynet_ConnectIsIdempotent(t *testing.T) {
	t.Parallel()

	w := newGrid(t)
	require.NoError(t, w.Connect("A", "B"))
	require.NoError(t, w.Connect("B", "A"))
	a := idx(t, w, "A")[0]
	assert.Len(t, w.Waypoints[a].Edges, 2)
}

func TestNearestAndLength(t *testing.T) {
	t.Parallel()

	w := newGrid(t)
	got, ok := w.Nearest(mgl32.Vec3{19, 0, 9})
	require.True(t, ok)
	assert.Equal(t, idx(t, w, "E")[0], got)

	assert.InDelta(t, 20, w.Length(idx(t, w, "A", "B", "C")), 1e-5)

	var empty *waynet.Waynet
	_, ok = empty.Nearest(mgl32.Vec3{})
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}
