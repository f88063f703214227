package world

import "github.com/rotisserie/eris"

// Capacities are the fixed sizes of a world's allocators. They never change after Init.
type Capacities struct {
	Entities     int
	StaticMeshes int
	LevelMeshes  int
	Textures     int
	Materials    int
	NPCs         int
}

// DefaultCapacities returns the capacities used when nothing else is configured.
func DefaultCapacities() Capacities {
	return Capacities{
		Entities:     4096,
		StaticMeshes: 1024,
		LevelMeshes:  16,
		Textures:     1024,
		Materials:    1024,
		NPCs:         512,
	}
}

// Validate checks that every capacity is positive.
func (c Capacities) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"entities", c.Entities},
		{"static meshes", c.StaticMeshes},
		{"level meshes", c.LevelMeshes},
		{"textures", c.Textures},
		{"materials", c.Materials},
		{"npcs", c.NPCs},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return eris.Errorf("%s capacity must be positive, got %d", check.name, check.value)
		}
	}
	return nil
}
