// Package level is the level document model: world geometry, materials, the way-network and the
// initial vob and NPC placements of a world, read from YAML or JSON.
package level

import (
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound  = eris.New("level not found")
	ErrMalformed = eris.New("malformed level")
)

// Document is a parsed level.
type Document struct {
	Name         string     `yaml:"name"         json:"name"`
	WorldMesh    *Mesh      `yaml:"worldMesh"    json:"worldMesh"`
	Textures     []Texture  `yaml:"textures"     json:"textures"`
	Materials    []Material `yaml:"materials"    json:"materials"`
	StaticMeshes []Mesh     `yaml:"staticMeshes" json:"staticMeshes"`
	Waynet       *Waynet    `yaml:"waynet"       json:"waynet"`
	Vobs         []Vob      `yaml:"vobs"         json:"vobs"`
	NPCs         []NPC      `yaml:"npcs"         json:"npcs"`
}

type Vec3 [3]float32

type Vec2 [2]float32

type Vertex struct {
	Position Vec3 `yaml:"position" json:"position"`
	UV       Vec2 `yaml:"uv"       json:"uv"`
}

type Submesh struct {
	Material   string `yaml:"material"   json:"material"`
	StartIndex uint32 `yaml:"startIndex" json:"startIndex"`
	NumIndices uint32 `yaml:"numIndices" json:"numIndices"`
}

// Mesh is used for both the world mesh and static meshes.
type Mesh struct {
	Name      string    `yaml:"name"      json:"name"`
	Vertices  []Vertex  `yaml:"vertices"  json:"vertices"`
	Indices   []uint32  `yaml:"indices"   json:"indices"`
	Submeshes []Submesh `yaml:"submeshes" json:"submeshes"`
}

type Texture struct {
	Name   string `yaml:"name"   json:"name"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
}

type Material struct {
	Name    string `yaml:"name"    json:"name"`
	Texture string `yaml:"texture" json:"texture"`
	Color   uint32 `yaml:"color"   json:"color"`
}

type Waypoint struct {
	Name      string `yaml:"name"      json:"name"`
	Position  Vec3   `yaml:"position"  json:"position"`
	Direction Vec3   `yaml:"direction" json:"direction"`
}

type Waynet struct {
	Waypoints []Waypoint  `yaml:"waypoints" json:"waypoints"`
	Edges     [][2]string `yaml:"edges"     json:"edges"`
}

// Vob is a placed world object.
type Vob struct {
	Name       string `yaml:"name"       json:"name"`
	Visual     string `yaml:"visual"     json:"visual"`
	Position   Vec3   `yaml:"position"   json:"position"`
	BBoxMin    Vec3   `yaml:"bboxMin"    json:"bboxMin"`
	BBoxMax    Vec3   `yaml:"bboxMax"    json:"bboxMax"`
	DebugColor uint32 `yaml:"debugColor" json:"debugColor"`
}

// NPC is a script instance spawned at a waypoint when the level loads.
type NPC struct {
	Name     string   `yaml:"name"     json:"name"`
	Instance string   `yaml:"instance" json:"instance"`
	Visual   string   `yaml:"visual"   json:"visual"`
	Waypoint string   `yaml:"waypoint" json:"waypoint"`
	Route    []string `yaml:"route"    json:"route"`
}

// Parse decodes a level file. The format is chosen by the file extension of name: .yaml/.yml or
// .json. The document is validated before it is returned.
func Parse(name string, data []byte) (*Document, error) {
	doc := &Document{}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, eris.Wrapf(ErrMalformed, "%s: %v", name, err)
		}
	case ".json":
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, eris.Wrapf(ErrMalformed, "%s: %v", name, err)
		}
	default:
		return nil, eris.Wrapf(ErrMalformed, "%s: unsupported level format %q", name, ext)
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks that the required sections are present and that every name a section refers to
// is declared. A level needs a world mesh, at least one material, and a way-network.
func (d *Document) Validate() error {
	if d.WorldMesh == nil || len(d.WorldMesh.Indices) == 0 {
		return eris.Wrapf(ErrMalformed, "level %q: missing world mesh", d.Name)
	}
	if len(d.Materials) == 0 {
		return eris.Wrapf(ErrMalformed, "level %q: missing materials", d.Name)
	}
	if d.Waynet == nil || len(d.Waynet.Waypoints) == 0 {
		return eris.Wrapf(ErrMalformed, "level %q: missing waynet", d.Name)
	}

	textures := make(map[string]struct{}, len(d.Textures))
	for _, tex := range d.Textures {
		textures[tex.Name] = struct{}{}
	}
	materials := make(map[string]struct{}, len(d.Materials))
	for _, mat := range d.Materials {
		if mat.Name == "" {
			return eris.Wrapf(ErrMalformed, "level %q: material without name", d.Name)
		}
		if _, ok := textures[mat.Texture]; mat.Texture != "" && !ok {
			return eris.Wrapf(ErrMalformed, "level %q: material %q uses unknown texture %q", d.Name, mat.Name, mat.Texture)
		}
		materials[mat.Name] = struct{}{}
	}

	meshes := append([]Mesh{*d.WorldMesh}, d.StaticMeshes...)
	for _, mesh := range meshes {
		if err := mesh.validate(materials); err != nil {
			return eris.Wrapf(ErrMalformed, "level %q: %v", d.Name, err)
		}
	}

	waypoints := make(map[string]struct{}, len(d.Waynet.Waypoints))
	for _, wp := range d.Waynet.Waypoints {
		waypoints[wp.Name] = struct{}{}
	}
	for _, npc := range d.NPCs {
		if _, ok := waypoints[npc.Waypoint]; npc.Waypoint != "" && !ok {
			return eris.Wrapf(ErrMalformed, "level %q: npc %q starts at unknown waypoint %q", d.Name, npc.Name, npc.Waypoint)
		}
		for _, stop := range npc.Route {
			if _, ok := waypoints[stop]; !ok {
				return eris.Wrapf(ErrMalformed, "level %q: npc %q routes through unknown waypoint %q", d.Name, npc.Name, stop)
			}
		}
	}
	return nil
}

func (m Mesh) validate(materials map[string]struct{}) error {
	for _, i := range m.Indices {
		if int(i) >= len(m.Vertices) {
			return eris.Errorf("mesh %q: index %d out of %d vertices", m.Name, i, len(m.Vertices))
		}
	}
	for _, sub := range m.Submeshes {
		if uint64(sub.StartIndex)+uint64(sub.NumIndices) > uint64(len(m.Indices)) {
			return eris.Errorf("mesh %q: submesh [%d,+%d) outside %d indices", m.Name, sub.StartIndex, sub.NumIndices, len(m.Indices))
		}
		if _, ok := materials[sub.Material]; !ok {
			return eris.Errorf("mesh %q: unknown material %q", m.Name, sub.Material)
		}
	}
	return nil
}
