// Package logic has the concrete entity controllers: a base bound to one entity, visual controllers
// that own child render entities, and the script-driven NPC controller.
package logic

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
)

// Base is a controller bound to (world, entity) that does nothing. Concrete controllers embed it and
// override the hooks they need.
type Base struct {
	world  *world.Instance
	entity ecs.EntityHandle
}

var _ components.Controller = (*Base)(nil)

func NewBase(w *world.Instance, entity ecs.EntityHandle) *Base {
	return &Base{world: w, entity: entity}
}

func (b *Base) World() *world.Instance   { return b.world }
func (b *Base) Entity() ecs.EntityHandle { return b.entity }

// EntityTransform returns the world matrix of the bound entity, or identity if it has no Position.
func (b *Base) EntityTransform() mgl32.Mat4 {
	pos, err := world.GetEntity[components.Position](b.world, b.entity)
	if err != nil {
		return mgl32.Ident4()
	}
	return pos.WorldMatrix
}

func (b *Base) OnUpdate(float64)    {}
func (b *Base) OnTransformChanged() {}
func (b *Base) Teardown()           {}
