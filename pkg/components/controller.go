package components

import "github.com/go-gl/mathgl/mgl32"

// Controller is the hook contract of entity logic. A controller is bound to one entity of one world
// and never outlives that world.
type Controller interface {
	// OnUpdate runs once per frame.
	OnUpdate(dt float64)
	// OnTransformChanged runs after the entity's Position was changed through the world.
	OnTransformChanged()
	// Teardown releases everything the controller created, including auxiliary entities. The world
	// calls it exactly once, when the entity is removed or the controller is replaced.
	Teardown()
}

// DebugDrawer is implemented by controllers that draw debug geometry during the render pass.
type DebugDrawer interface {
	OnDebugDraw(sink DebugSink)
}

// DebugSink receives debug line geometry.
type DebugSink interface {
	SetColor(abgr uint32)
	Line(from, to mgl32.Vec3)
	Axis(at mgl32.Vec3, length float32)
	Box(min, max mgl32.Vec3, transform mgl32.Mat4)
}
