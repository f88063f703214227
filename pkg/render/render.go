// Package render walks a world's data bundle once per frame and turns it into draw submissions for a
// Backend. It never changes the world's storage.
package render

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/content"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
)

const (
	WaynetColor uint32 = 0xFF0000FF
	PathColor   uint32 = 0xFF00FFFF

	waypointAxisLength float32 = 1
)

// DrawCall is one submesh submission.
type DrawCall struct {
	Row       int // Row of the entity in the frame's data bundle
	Mesh      *content.StaticMesh
	Submesh   content.Submesh
	Texture   *content.Texture // nil if the entity has no valid texture
	Transform mgl32.Mat4       // Identity if the entity has no Position
}

// Backend is the GPU side of rendering.
type Backend interface {
	components.DebugSink
	Submit(call DrawCall)
}

// Config selects the debug overlays of a pass.
type Config struct {
	DebugWaynet bool
	DebugPath   []int // Waypoint indices of a route to highlight
}

// Stats summarises a pass.
type Stats struct {
	DrawCalls  int
	Indices    int
	Triangles  int
	DebugBoxes int
}

// DrawWorld runs the main pass over a world. Every drawn row is recorded in the world's transient
// visible entity list.
func DrawWorld(w *world.Instance, backend Backend, cfg Config) Stats {
	var stats Stats

	bundle := w.ComponentDataBundle()
	if !bundle.Valid() {
		return stats
	}
	statics, err := ecs.View[components.StaticMesh](bundle)
	if err != nil {
		log.Error().Err(err).Msg("world has no static mesh column")
		return stats
	}
	positions, err := ecs.View[components.Position](bundle)
	if err != nil {
		log.Error().Err(err).Msg("world has no position column")
		return stats
	}
	bboxes, err := ecs.View[components.BBox](bundle)
	if err != nil {
		log.Error().Err(err).Msg("world has no bbox column")
		return stats
	}
	logics, err := ecs.View[components.Logic](bundle)
	if err != nil {
		log.Error().Err(err).Msg("world has no logic column")
		return stats
	}

	meshes := w.StaticMeshes()
	textures := w.Textures()
	visible := &w.Transient().VisibleEntities

	for i := range bundle.Count() {
		mask := bundle.Mask(i)
		if mask == 0 {
			continue
		}

		transform := mgl32.Ident4()
		if mask.Has(components.MaskPosition) {
			transform = positions.At(i).WorldMatrix
		}

		if mask.Has(components.MaskStaticMesh) {
			sm := statics.At(i)
			if mesh, ok := meshes.Get(sm.Mesh); ok && len(mesh.Indices) > 0 {
				call := DrawCall{Row: i, Mesh: mesh, Submesh: sm.Submesh, Transform: transform}
				if tex, ok := textures.Get(sm.Texture); ok {
					call.Texture = tex
				}
				backend.Submit(call)
				stats.DrawCalls++
				stats.Indices += int(sm.Submesh.NumIndices)
				*visible = append(*visible, i)
			}
		}

		if mask.Has(components.MaskBBox) {
			if box := bboxes.At(i); box.DebugColor != 0 {
				backend.SetColor(box.DebugColor)
				backend.Box(box.Min, box.Max, mgl32.Translate3D(transform.At(0, 3), transform.At(1, 3), transform.At(2, 3)))
				stats.DebugBoxes++
			}
		}

		if mask.Has(components.MaskLogic) {
			if drawer, ok := logics.At(i).Controller.(components.DebugDrawer); ok {
				drawer.OnDebugDraw(backend)
			}
		}
	}
	stats.Triangles = stats.Indices / 3

	if cfg.DebugWaynet {
		DebugDrawWaynet(backend, w)
	}
	if len(cfg.DebugPath) > 0 {
		DebugDrawPath(backend, w, cfg.DebugPath)
	}
	return stats
}

// DebugDrawWaynet draws every waypoint as an axis cross and every edge as a line.
func DebugDrawWaynet(sink components.DebugSink, w *world.Instance) {
	wn := w.Waynet()
	if wn.Len() == 0 {
		return
	}
	sink.SetColor(WaynetColor)
	for i, wp := range wn.Waypoints {
		sink.Axis(wp.Position, waypointAxisLength)
		sink.Axis(wp.Position, -waypointAxisLength)
		for _, e := range wp.Edges {
			// Edges are stored on both ends; draw each once.
			if e > i {
				sink.Line(wp.Position, wn.Waypoints[e].Position)
			}
		}
	}
}

// DebugDrawPath draws a route as connected line segments.
func DebugDrawPath(sink components.DebugSink, w *world.Instance, path []int) {
	wn := w.Waynet()
	if len(path) < 2 {
		return
	}
	sink.SetColor(PathColor)
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		if from < 0 || from >= wn.Len() || to < 0 || to >= wn.Len() {
			return
		}
		sink.Line(wn.Waypoints[from].Position, wn.Waypoints[to].Position)
	}
}
