package logic

import (
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/content"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/rotisserie/eris"
)

var ErrVisualNotFound = eris.New("visual not found")

// ModelVisual renders a static mesh from the world's mesh library with one child entity per submesh.
type ModelVisual struct {
	VisualController
	visual string
}

var _ components.Controller = (*ModelVisual)(nil)

func NewModelVisual(w *world.Instance, entity ecs.EntityHandle) *ModelVisual {
	return &ModelVisual{VisualController: *NewVisualController(w, entity)}
}

// Visual returns the name of the loaded visual, empty if none is loaded.
func (m *ModelVisual) Visual() string {
	return m.visual
}

// Load replaces the current visual with the mesh of the given name. On error the previous visual is
// already gone and the controller has no children.
func (m *ModelVisual) Load(visual string) error {
	m.VisualController.Teardown()
	m.visual = ""

	meshes := m.world.StaticMeshes()
	mh, ok := meshes.Lookup(visual)
	if !ok {
		return eris.Wrapf(ErrVisualNotFound, "%q", visual)
	}
	mesh := meshes.MustGet(mh)

	for _, sub := range mesh.Submeshes {
		child, err := m.AddChild(components.MaskStaticMesh)
		if err != nil {
			m.VisualController.Teardown()
			return eris.Wrapf(err, "visual %q", visual)
		}
		sm := world.MustGetEntity[components.StaticMesh](m.world, child)
		sm.Mesh = mh
		sm.Submesh = sub
		sm.Texture = m.textureOf(sub)
	}
	m.visual = visual
	return nil
}

func (m *ModelVisual) textureOf(sub content.Submesh) handle.Handle[content.Texture] {
	mat, ok := m.world.Materials().Get(sub.Material)
	if !ok {
		return handle.Handle[content.Texture]{}
	}
	return mat.Texture
}
