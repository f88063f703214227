// Package waynet is the navigation graph of a level: named waypoints connected by undirected edges.
package waynet

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

var ErrUnknownWaypoint = eris.New("unknown waypoint")

// Waypoint is a node of the way-network. Edges hold indices into Waynet.Waypoints.
type Waypoint struct {
	Name      string
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Edges     []int
}

// Waynet is an immutable-after-build way-network.
type Waynet struct {
	Waypoints []Waypoint
	byName    map[string]int
}

// New creates an empty way-network.
func New() *Waynet {
	return &Waynet{byName: make(map[string]int)}
}

// AddWaypoint appends a waypoint and returns its index. Names must be unique.
func (w *Waynet) AddWaypoint(name string, position, direction mgl32.Vec3) (int, error) {
	if name == "" {
		return 0, eris.New("waypoint name cannot be empty")
	}
	if _, exists := w.byName[name]; exists {
		return 0, eris.Errorf("duplicate waypoint %q", name)
	}
	idx := len(w.Waypoints)
	w.Waypoints = append(w.Waypoints, Waypoint{Name: name, Position: position, Direction: direction})
	w.byName[name] = idx
	return idx, nil
}

// Connect links two waypoints by name in both directions. Connecting twice is a no-op.
func (w *Waynet) Connect(a, b string) error {
	ia, ok := w.byName[a]
	if !ok {
		return eris.Wrapf(ErrUnknownWaypoint, "edge %s-%s: %q", a, b, a)
	}
	ib, ok := w.byName[b]
	if !ok {
		return eris.Wrapf(ErrUnknownWaypoint, "edge %s-%s: %q", a, b, b)
	}
	if ia == ib {
		return eris.Errorf("waypoint %q cannot connect to itself", a)
	}
	w.link(ia, ib)
	w.link(ib, ia)
	return nil
}

func (w *Waynet) link(from, to int) {
	for _, e := range w.Waypoints[from].Edges {
		if e == to {
			return
		}
	}
	w.Waypoints[from].Edges = append(w.Waypoints[from].Edges, to)
}

// Index returns the index of a waypoint by name.
func (w *Waynet) Index(name string) (int, bool) {
	if w == nil {
		return 0, false
	}
	idx, ok := w.byName[name]
	return idx, ok
}

// Len returns the number of waypoints.
func (w *Waynet) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Waypoints)
}

// Nearest returns the index of the waypoint closest to pos.
func (w *Waynet) Nearest(pos mgl32.Vec3) (int, bool) {
	if w.Len() == 0 {
		return 0, false
	}
	best, bestDist := 0, float32(math.MaxFloat32)
	for i, wp := range w.Waypoints {
		if d := wp.Position.Sub(pos).Len(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, true
}

// FindWay returns the shortest route from start to end as waypoint indices, both ends included.
// The route is empty if either index is out of range or end is unreachable.
func (w *Waynet) FindWay(start, end int) []int {
	n := w.Len()
	if start < 0 || start >= n || end < 0 || end >= n {
		return nil
	}
	if start == end {
		return []int{start}
	}

	dist := make([]float32, n)
	prev := make([]int, n)
	closed := make([]bool, n)
	for i := range dist {
		dist[i] = float32(math.Inf(1))
		prev[i] = -1
	}
	dist[start] = 0

	target := w.Waypoints[end].Position
	estimate := func(i int) float32 { return w.Waypoints[i].Position.Sub(target).Len() }

	open := &frontier{{node: start, priority: estimate(start)}}
	for open.Len() > 0 {
		cur := heap.Pop(open).(item).node //nolint:errcheck // frontier only holds items
		if cur == end {
			break
		}
		if closed[cur] {
			continue
		}
		closed[cur] = true

		for _, next := range w.Waypoints[cur].Edges {
			if closed[next] {
				continue
			}
			d := dist[cur] + w.Waypoints[cur].Position.Sub(w.Waypoints[next].Position).Len()
			if d < dist[next] {
				dist[next] = d
				prev[next] = cur
				heap.Push(open, item{node: next, priority: d + estimate(next)})
			}
		}
	}

	if prev[end] == -1 {
		return nil
	}
	var path []int
	for at := end; at != -1; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Length returns the travel distance along a route.
func (w *Waynet) Length(path []int) float32 {
	var total float32
	for i := 1; i < len(path); i++ {
		total += w.Waypoints[path[i]].Position.Sub(w.Waypoints[path[i-1]].Position).Len()
	}
	return total
}

type item struct {
	node     int
	priority float32
}

// frontier is a min-heap of items ordered by priority.
type frontier []item

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].priority < f[j].priority }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(item)) } //nolint:errcheck // always an item

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}
