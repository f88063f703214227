// Package vob builds world objects: placed entities with a transform, bounding box, visual and
// optional logic, including NPCs bound to script instances.
package vob

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/logic"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

// DefaultNPCVisual is the body mesh of NPCs whose script instance names none.
const DefaultNPCVisual = "HUM_BODY_NAKED0.MDM"

// visualLoader is implemented by controllers that can show a mesh.
type visualLoader interface {
	components.Controller
	Load(visual string) error
}

// ConstructVob creates an entity with every vob component active, placed at the origin.
func ConstructVob(w *world.Instance) (ecs.EntityHandle, error) {
	h, err := w.AddEntity(components.MaskVob)
	if err != nil {
		return ecs.EntityHandle{}, eris.Wrap(err, "failed to construct vob")
	}
	world.MustGetEntity[components.Position](w, h).WorldMatrix = mgl32.Ident4()
	return h, nil
}

// SetVisual shows a mesh on a vob. The vob's controller loads it if it can, otherwise a model
// visual controller replaces it.
func SetVisual(w *world.Instance, h ecs.EntityHandle, visual string) error {
	if loader, ok := w.Controller(h).(visualLoader); ok {
		return loader.Load(visual)
	}

	mv := logic.NewModelVisual(w, h)
	if err := w.SetController(h, mv); err != nil {
		return eris.Wrap(err, "failed to set visual")
	}
	return mv.Load(visual)
}

// SetTransform moves a vob and notifies its controller.
func SetTransform(w *world.Instance, h ecs.EntityHandle, transform mgl32.Mat4) error {
	pos, err := world.GetEntity[components.Position](w, h)
	if err != nil {
		return eris.Wrap(err, "failed to set transform")
	}
	pos.WorldMatrix = transform
	w.NotifyTransformChanged(h)
	return nil
}

// SetPosition moves a vob to a point, keeping its rotation.
func SetPosition(w *world.Instance, h ecs.EntityHandle, at mgl32.Vec3) error {
	pos, err := world.GetEntity[components.Position](w, h)
	if err != nil {
		return eris.Wrap(err, "failed to set position")
	}
	transform := pos.WorldMatrix
	transform.SetCol(3, at.Vec4(1))
	return SetTransform(w, h, transform)
}

// InitNPCFromScript creates the vob of a script NPC, links the two, and attaches an NPC controller
// showing the NPC's visual. On error nothing is left behind: no entity and no link. It fails with
// world.ErrInvalidStage during a frame update, where cleanup would be deferred to the commit.
func InitNPCFromScript(w *world.Instance, npc script.NPCHandle) (ecs.EntityHandle, error) {
	if w.InFrame() {
		return ecs.EntityHandle{}, eris.Wrapf(world.ErrInvalidStage, "init npc %s during a frame update", npc)
	}
	engine := w.ScriptEngine()
	state, ok := engine.NPC(npc)
	if !ok {
		return ecs.EntityHandle{}, eris.Errorf("npc %s is not alive", npc)
	}

	h, err := ConstructVob(w)
	if err != nil {
		return ecs.EntityHandle{}, err
	}
	if err := engine.Links().Bind(h, npc); err != nil {
		w.RemoveEntity(h)
		return ecs.EntityHandle{}, eris.Wrap(err, "failed to link npc")
	}

	// Removing the entity from here on tears the controller down, which releases the link.
	controller := logic.NewNPCController(w, h, npc)
	if err := w.SetController(h, controller); err != nil {
		_, _ = engine.Links().Unbind(npc)
		w.RemoveEntity(h)
		return ecs.EntityHandle{}, err
	}

	world.MustGetEntity[components.Entity](w, h).Label = state.Name
	bbox := world.MustGetEntity[components.BBox](w, h)
	bbox.Min = mgl32.Vec3{-1, -1, -1}
	bbox.Max = mgl32.Vec3{1, 1, 1}
	bbox.DebugColor = 0xFFFFFFFF

	if idx, ok := w.Waynet().Index(state.Waypoint); ok {
		if err := SetPosition(w, h, w.Waynet().Waypoints[idx].Position); err != nil {
			w.RemoveEntity(h)
			return ecs.EntityHandle{}, err
		}
	}

	visual := state.Visual
	if visual == "" {
		visual = DefaultNPCVisual
	}
	if err := controller.Load(visual); err != nil {
		w.RemoveEntity(h)
		return ecs.EntityHandle{}, eris.Wrapf(err, "npc %q", state.Name)
	}

	if len(state.Route) > 0 {
		if err := controller.GoTo(state.Route...); err != nil {
			w.RemoveEntity(h)
			return ecs.EntityHandle{}, eris.Wrapf(err, "npc %q", state.Name)
		}
	}
	return h, nil
}

// UnlinkNPC releases the link between an NPC and its entity without removing either. Fails with
// script.ErrNotBound if the NPC isn't bound to that entity and with script.ErrDoubleRelease if the
// link was already released.
func UnlinkNPC(w *world.Instance, entity ecs.EntityHandle, npc script.NPCHandle) error {
	links := w.ScriptEngine().Links()
	if bound, ok := links.Entity(npc); ok && bound != entity {
		return eris.Wrapf(script.ErrNotBound, "npc %s is bound to %s, not %s", npc, bound, entity)
	}
	_, err := links.Unbind(npc)
	return err
}
