package logic

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

// DefaultWalkSpeed is the walk speed of NPCs in units per second.
const DefaultWalkSpeed float32 = 2

const (
	arrivalDistance float32 = 0.01
	routeColor      uint32  = 0xFF00FFFF
)

// NPCController drives an entity from a script-side NPC. Every frame it walks the entity along its
// way-network route and then runs the script's update hook.
type NPCController struct {
	ModelVisual
	npc   script.NPCHandle
	speed float32
	route []int // Waypoint indices still to visit
}

var (
	_ components.Controller  = (*NPCController)(nil)
	_ components.DebugDrawer = (*NPCController)(nil)
)

func NewNPCController(w *world.Instance, entity ecs.EntityHandle, npc script.NPCHandle) *NPCController {
	return &NPCController{
		ModelVisual: *NewModelVisual(w, entity),
		npc:         npc,
		speed:       DefaultWalkSpeed,
	}
}

// NPC returns the script handle the controller drives.
func (c *NPCController) NPC() script.NPCHandle { return c.npc }

// SetSpeed sets the walk speed in units per second.
func (c *NPCController) SetSpeed(speed float32) { c.speed = speed }

// Route returns the waypoints the NPC still has to visit.
func (c *NPCController) Route() []int { return c.route }

// GoTo plans a route from the waypoint nearest to the NPC through every stop in order. The previous
// route is dropped only if the new one can be planned.
func (c *NPCController) GoTo(stops ...string) error {
	wn := c.world.Waynet()
	from, ok := wn.Nearest(c.position())
	if !ok {
		return eris.New("waynet is empty")
	}

	var route []int
	for _, stop := range stops {
		to, ok := wn.Index(stop)
		if !ok {
			return eris.Errorf("unknown waypoint %q", stop)
		}
		path := wn.FindWay(from, to)
		if len(path) == 0 {
			return eris.Errorf("no way from %q to %q", wn.Waypoints[from].Name, stop)
		}
		if len(route) > 0 {
			path = path[1:]
		}
		route = append(route, path...)
		from = to
	}
	c.route = route
	return nil
}

func (c *NPCController) position() mgl32.Vec3 {
	return c.EntityTransform().Col(3).Vec3()
}

// OnUpdate advances the NPC along its route and runs the script hook.
func (c *NPCController) OnUpdate(dt float64) {
	if len(c.route) > 0 {
		c.walk(float32(dt))
	}
	c.world.ScriptEngine().OnNPCUpdate(c.npc, dt)
}

func (c *NPCController) walk(dt float32) {
	pos, err := world.GetEntity[components.Position](c.world, c.entity)
	if err != nil {
		return
	}

	budget := c.speed * dt
	at := pos.WorldMatrix.Col(3).Vec3()
	for budget > 0 && len(c.route) > 0 {
		target := c.world.Waynet().Waypoints[c.route[0]].Position
		delta := target.Sub(at)
		dist := delta.Len()
		if dist <= budget || dist < arrivalDistance {
			at = target
			budget -= dist
			c.route = c.route[1:]
			continue
		}
		at = at.Add(delta.Mul(budget / dist))
		budget = 0
	}

	pos.WorldMatrix.SetCol(3, at.Vec4(1))
	c.OnTransformChanged()
}

// OnDebugDraw draws the rest of the route.
func (c *NPCController) OnDebugDraw(sink components.DebugSink) {
	if len(c.route) == 0 {
		return
	}
	sink.SetColor(routeColor)
	from := c.position()
	for _, idx := range c.route {
		to := c.world.Waynet().Waypoints[idx].Position
		sink.Line(from, to)
		from = to
	}
}

// Teardown removes the visual and releases the script link if it still points at this entity.
func (c *NPCController) Teardown() {
	c.ModelVisual.Teardown()
	links := c.world.ScriptEngine().Links()
	if bound, ok := links.Entity(c.npc); ok && bound == c.entity {
		_, _ = links.Unbind(c.npc)
	}
}
