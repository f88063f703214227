package world

import (
	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/ecslog"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// AddEntity creates an entity with the components in mask active and zero valued. Fails with
// slot.ErrCapacityExhausted when the world is full, in which case nothing was created.
func (w *Instance) AddEntity(mask ecs.Mask) (ecs.EntityHandle, error) {
	if !w.stage.live() {
		return ecs.EntityHandle{}, eris.Wrapf(ErrInvalidStage, "add entity in stage %s", w.stage.Current())
	}
	h, err := w.storage.Create(mask)
	if err != nil {
		return ecs.EntityHandle{}, err
	}
	w.stage.CompareAndSwap(Initialized, Populated)
	if w.logger.GetLevel() <= zerolog.TraceLevel {
		ecslog.Entity(&w.logger, zerolog.TraceLevel, h, mask, w.storage)
	}
	return h, nil
}

// RemoveEntity tears down the entity's controller and releases its slot. Removing a stale handle is
// a no-op. During a frame update the removal is deferred until the update pass is over.
func (w *Instance) RemoveEntity(h ecs.EntityHandle) {
	if w.storage == nil || !w.storage.Alive(h) {
		return
	}
	if w.inFrame {
		if _, queued := w.pendingSet[h]; !queued {
			w.pendingSet[h] = struct{}{}
			w.pending = append(w.pending, h)
		}
		return
	}
	w.removeNow(h)
}

func (w *Instance) removeNow(h ecs.EntityHandle) {
	// The controller is detached before Teardown runs, so a teardown that removes its own entity
	// can't tear down twice.
	if logic, err := ecs.Get[components.Logic](w.storage, h); err == nil && logic.Controller != nil {
		controller := logic.Controller
		logic.Controller = nil
		controller.Teardown()
	}

	w.storage.Destroy(h)
	if w.storage.Len() == 0 {
		w.stage.CompareAndSwap(Populated, Initialized)
	}
}

// commit applies the removals deferred during a frame update, in request order.
func (w *Instance) commit() {
	assert.That(!w.inFrame, "commit during a frame update")
	for i := 0; i < len(w.pending); i++ {
		h := w.pending[i]
		delete(w.pendingSet, h)
		w.RemoveEntity(h)
	}
	w.pending = w.pending[:0]
}

// GetEntity returns a pointer to the T record of an entity. The pointer must not be kept across a
// frame; keep the handle instead.
func GetEntity[T ecs.Component](w *Instance, h ecs.EntityHandle) (*T, error) {
	if w.storage == nil {
		return nil, eris.Wrapf(ecs.ErrStaleHandle, "world %s has no storage", w.id)
	}
	return ecs.Get[T](w.storage, h)
}

// MustGetEntity is GetEntity for handles that must be valid. Stale access is a programming error.
func MustGetEntity[T ecs.Component](w *Instance, h ecs.EntityHandle) *T {
	assert.That(w.storage != nil, "world %s has no storage", w.id)
	return ecs.MustGet[T](w.storage, h)
}

// SetController attaches a controller to an entity with an active Logic component. A previously
// attached controller is torn down first.
func (w *Instance) SetController(h ecs.EntityHandle, c components.Controller) error {
	logic, err := GetEntity[components.Logic](w, h)
	if err != nil {
		return eris.Wrap(err, "set controller")
	}
	prev := logic.Controller
	logic.Controller = nil
	if prev != nil {
		prev.Teardown()
	}

	// Teardown may have removed the entity.
	logic, err = GetEntity[components.Logic](w, h)
	if err != nil {
		return eris.Wrap(err, "set controller")
	}
	logic.Controller = c
	return nil
}

// Controller returns the controller of an entity, nil if it has none.
func (w *Instance) Controller(h ecs.EntityHandle) components.Controller {
	logic, err := GetEntity[components.Logic](w, h)
	if err != nil {
		return nil
	}
	return logic.Controller
}

// NotifyTransformChanged tells the entity's controller that its Position changed.
func (w *Instance) NotifyTransformChanged(h ecs.EntityHandle) {
	if c := w.Controller(h); c != nil {
		c.OnTransformChanged()
	}
}
