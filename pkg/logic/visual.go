package logic

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/rotisserie/eris"
)

// VisualController owns child entities that render on behalf of its entity. The children follow the
// owner's transform and are removed with the controller.
type VisualController struct {
	Base
	children []ecs.EntityHandle
}

var _ components.Controller = (*VisualController)(nil)

func NewVisualController(w *world.Instance, entity ecs.EntityHandle) *VisualController {
	return &VisualController{Base: Base{world: w, entity: entity}}
}

// AddChild creates a child entity with a Position plus the components in mask. The child starts at
// the owner's transform.
func (v *VisualController) AddChild(mask ecs.Mask) (ecs.EntityHandle, error) {
	child, err := v.world.AddEntity(mask | components.MaskPosition)
	if err != nil {
		return ecs.EntityHandle{}, eris.Wrap(err, "failed to create visual entity")
	}
	world.MustGetEntity[components.Position](v.world, child).WorldMatrix = v.EntityTransform()
	v.children = append(v.children, child)
	return child, nil
}

// Children returns the child entities.
func (v *VisualController) Children() []ecs.EntityHandle {
	return v.children
}

// OnTransformChanged moves every child to the owner's transform.
func (v *VisualController) OnTransformChanged() {
	transform := v.EntityTransform()
	for _, child := range v.children {
		if pos, err := world.GetEntity[components.Position](v.world, child); err == nil {
			pos.WorldMatrix = transform
		}
	}
}

// Teardown removes every child entity.
func (v *VisualController) Teardown() {
	children := v.children
	v.children = nil
	for _, child := range children {
		v.world.RemoveEntity(child)
	}
}
