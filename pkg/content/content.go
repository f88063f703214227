// Package content holds the resource records a world owns besides its entities: static meshes,
// the level mesh, textures and materials. Each kind lives in its own fixed-capacity library and is
// addressed by a typed handle.
package content

import (
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a position/texture-coordinate vertex.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// Submesh is a contiguous range of a mesh's index buffer drawn with one material.
type Submesh struct {
	StartIndex uint32
	NumIndices uint32
	Material   handle.Handle[Material]
}

// StaticMesh is a named mesh that entities reference through their StaticMesh component.
type StaticMesh struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	Submeshes []Submesh
}

func (m StaticMesh) ResourceName() string { return m.Name }

// Triangles returns the number of triangles in the index buffer.
func (m StaticMesh) Triangles() int { return len(m.Indices) / 3 }

// WorldMesh is the static geometry of a level.
type WorldMesh struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	Submeshes []Submesh
}

func (m WorldMesh) ResourceName() string { return m.Name }

// Texture is a decoded texture. The pixel data is owned by the renderer backend; only the
// dimensions are tracked here.
type Texture struct {
	Name   string
	Width  int
	Height int
}

func (t Texture) ResourceName() string { return t.Name }

// Material binds a diffuse texture and colour.
type Material struct {
	Name    string
	Texture handle.Handle[Texture]
	Color   uint32
}

func (m Material) ResourceName() string { return m.Name }

type (
	StaticMeshes = Library[StaticMesh]
	WorldMeshes  = Library[WorldMesh]
	Textures     = Library[Texture]
	Materials    = Library[Material]
)
