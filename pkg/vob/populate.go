package vob

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

var _ world.Populator = Populate

// Populate places the vobs and NPCs of a level. It is the world.Populator used by the engine.
func Populate(w *world.Instance, doc *level.Document) error {
	for _, v := range doc.Vobs {
		h, err := ConstructVob(w)
		if err != nil {
			return eris.Wrapf(err, "vob %q", v.Name)
		}
		world.MustGetEntity[components.Entity](w, h).Label = v.Name
		bbox := world.MustGetEntity[components.BBox](w, h)
		bbox.Min = mgl32.Vec3(v.BBoxMin)
		bbox.Max = mgl32.Vec3(v.BBoxMax)
		bbox.DebugColor = v.DebugColor

		if err := SetPosition(w, h, mgl32.Vec3(v.Position)); err != nil {
			return eris.Wrapf(err, "vob %q", v.Name)
		}
		if v.Visual != "" {
			if err := SetVisual(w, h, v.Visual); err != nil {
				return eris.Wrapf(err, "vob %q", v.Name)
			}
		}
	}

	engine := w.ScriptEngine()
	for _, n := range doc.NPCs {
		npc, err := engine.SpawnNPC(script.NPC{
			Name:     n.Name,
			Instance: n.Instance,
			Visual:   n.Visual,
			Waypoint: n.Waypoint,
			Route:    n.Route,
		})
		if err != nil {
			return err
		}
		if _, err := InitNPCFromScript(w, npc); err != nil {
			engine.RemoveNPC(npc)
			return err
		}
	}

	w.Logger().Debug().Int("vobs", len(doc.Vobs)).Int("npcs", len(doc.NPCs)).Msg("level populated")
	return nil
}
