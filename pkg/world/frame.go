package world

import (
	"time"

	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/statsd"
)

// OnFrameUpdate runs one update pass: every live entity with an active Logic component and a
// controller gets OnUpdate(dt) once, in index order. Entities created during the pass are first
// updated next frame. Removals requested during the pass are applied after it.
func (w *Instance) OnFrameUpdate(dt float64) {
	if !w.stage.live() {
		return
	}
	start := time.Now()
	w.transient.VisibleEntities = w.transient.VisibleEntities[:0]

	w.updatePass(dt)
	w.commit()

	id := w.id.String()
	statsd.EmitFrameStat(start, id)
	statsd.EmitLiveEntities(w.storage.Len(), id)
}

func (w *Instance) updatePass(dt float64) {
	w.inFrame = true
	defer func() { w.inFrame = false }()

	for _, h := range w.storage.Query(ecs.Contains(components.MaskLogic)) {
		if _, removed := w.pendingSet[h]; removed {
			continue
		}
		logic, err := ecs.Get[components.Logic](w.storage, h)
		if err != nil || logic.Controller == nil {
			continue
		}
		logic.Controller.OnUpdate(dt)
	}
}
