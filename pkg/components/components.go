// Package components defines the built-in component records of a world and the controller contract
// attached through the Logic component.
package components

import (
	"github.com/argus-labs/slotworld/pkg/content"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

// Component IDs of the built-in components. Register assigns them in this order so the masks below
// are constants.
const (
	EntityID ecs.ComponentID = iota
	PositionID
	BBoxID
	StaticMeshID
	LogicID
)

var (
	MaskEntity     = ecs.MaskOf(EntityID)
	MaskPosition   = ecs.MaskOf(PositionID)
	MaskBBox       = ecs.MaskOf(BBoxID)
	MaskStaticMesh = ecs.MaskOf(StaticMeshID)
	MaskLogic      = ecs.MaskOf(LogicID)

	// MaskVob is the component set of a placed world object.
	MaskVob = MaskEntity | MaskPosition | MaskBBox | MaskStaticMesh | MaskLogic
)

// Entity is the metadata every vob carries.
type Entity struct {
	Label string `json:"label"`
}

func (Entity) Name() string { return "Entity" }

// Position holds the world transform of an entity.
type Position struct {
	WorldMatrix mgl32.Mat4 `json:"worldMatrix"`
}

func (Position) Name() string { return "Position" }

// Translation returns the translation part of the world matrix.
func (p Position) Translation() mgl32.Vec3 {
	return p.WorldMatrix.Col(3).Vec3()
}

// BBox is an axis aligned bounding box relative to the entity's position. A non-zero DebugColor
// makes the renderer draw it.
type BBox struct {
	Min        mgl32.Vec3 `json:"min"`
	Max        mgl32.Vec3 `json:"max"`
	DebugColor uint32     `json:"debugColor"`
}

func (BBox) Name() string { return "BBox" }

// StaticMesh references one submesh of a mesh in the world's static mesh library.
type StaticMesh struct {
	Mesh    handle.Handle[content.StaticMesh] `json:"mesh"`
	Submesh content.Submesh                   `json:"submesh"`
	Texture handle.Handle[content.Texture]    `json:"texture"`
}

func (StaticMesh) Name() string { return "StaticMesh" }

// Logic attaches a controller to an entity. The world dispatches per-frame updates to every entity
// with an active Logic component and a non-nil controller.
type Logic struct {
	Controller Controller `json:"-"`
}

func (Logic) Name() string { return "Logic" }

// Register registers the built-in components on a storage. It must run before any other
// registration so the IDs match the constants above.
func Register(s *ecs.Storage) error {
	steps := []struct {
		want ecs.ComponentID
		reg  func(*ecs.Storage) (ecs.ComponentID, error)
	}{
		{EntityID, ecs.Register[Entity]},
		{PositionID, ecs.Register[Position]},
		{BBoxID, ecs.Register[BBox]},
		{StaticMeshID, ecs.Register[StaticMesh]},
		{LogicID, ecs.Register[Logic]},
	}
	for _, step := range steps {
		id, err := step.reg(s)
		if err != nil {
			return err
		}
		if id != step.want {
			return eris.Errorf("built-in component registered as %d, expected %d", id, step.want)
		}
	}
	return nil
}
