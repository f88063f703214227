package ecs

import (
	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// Entity is the per-slot metadata record of the storage. Its only content is the component mask.
type Entity struct {
	mask Mask
}

// EntityHandle is the opaque reference to an entity. It is only meaningful against the storage
// that issued it.
type EntityHandle = handle.Handle[Entity]

// Storage is a fixed-capacity entity/component store. Every registered component type gets a
// column with one row per entity slot, and all columns share the entity allocator's index space:
// row i of every column belongs to the entity in slot i.
//
// Entities are removed in place. Indices never move while an entity is alive, iteration runs in
// index order, and a freed index is reused by the next creation.
type Storage struct {
	entities   *slot.Allocator[Entity]
	components componentManager

	alive   bitmap.Bitmap   // Slots holding a live entity
	members []bitmap.Bitmap // Component ID -> slots with that component active

	version uint64 // Bumped on every structural change, used to expire data bundles
}

// NewStorage creates a storage with room for exactly capacity entities.
func NewStorage(capacity int) *Storage {
	s := &Storage{
		entities:   slot.New[Entity](capacity),
		components: newComponentManager(capacity),
		members:    make([]bitmap.Bitmap, 0, MaxComponents),
	}
	s.alive.Grow(uint32(capacity - 1)) //nolint:gosec // capacity fits in uint32
	return s
}

// Create allocates an entity slot and activates the components in mask. The records start zero
// valued. Either the whole mask is activated or nothing happens.
func (s *Storage) Create(mask Mask) (EntityHandle, error) {
	if err := s.checkRegistered(mask); err != nil {
		return EntityHandle{}, err
	}

	h, err := s.entities.Allocate()
	if err != nil {
		return EntityHandle{}, eris.Wrap(err, "failed to create entity")
	}

	s.entities.MustGet(h).mask = mask
	s.alive.Set(h.Index)
	for _, id := range mask.IDs() {
		s.members[id].Set(h.Index)
	}
	s.version++

	return h, nil
}

// Destroy removes the entity, resets its records, and releases its slot. Every handle to the
// entity becomes stale. Returns false if the handle was already stale.
func (s *Storage) Destroy(h EntityHandle) bool {
	meta, ok := s.entities.Get(h)
	if !ok {
		return false
	}

	s.clear(h.Index, meta.mask)
	s.alive.Remove(h.Index)
	ok = s.entities.Deallocate(h)
	assert.That(ok, "failed to deallocate live entity %s", h)
	s.version++

	return true
}

// Activate attaches the components in mask to a live entity. Newly attached records start zero
// valued, already attached ones keep their data.
func (s *Storage) Activate(h EntityHandle, mask Mask) error {
	if err := s.checkRegistered(mask); err != nil {
		return err
	}
	meta, ok := s.entities.Get(h)
	if !ok {
		return eris.Wrapf(ErrStaleHandle, "activate on %s", h)
	}

	added := mask &^ meta.mask
	if added == 0 {
		return nil
	}
	meta.mask |= added
	for _, id := range added.IDs() {
		s.members[id].Set(h.Index)
	}
	s.version++
	return nil
}

// Deactivate detaches the components in mask from a live entity and resets their records.
func (s *Storage) Deactivate(h EntityHandle, mask Mask) error {
	meta, ok := s.entities.Get(h)
	if !ok {
		return eris.Wrapf(ErrStaleHandle, "deactivate on %s", h)
	}

	removed := mask & meta.mask
	if removed == 0 {
		return nil
	}
	meta.mask &^= removed
	s.clear(h.Index, removed)
	s.version++
	return nil
}

// clear resets the records of the components in mask at a row and drops the row from their
// membership bitmaps.
func (s *Storage) clear(row uint32, mask Mask) {
	for _, id := range mask.IDs() {
		s.components.columns[id].reset(int(row))
		s.members[id].Remove(row)
	}
}

// Alive reports whether h refers to a live entity.
func (s *Storage) Alive(h EntityHandle) bool {
	return s.entities.IsValid(h)
}

// MaskFor returns the component mask of a live entity.
func (s *Storage) MaskFor(h EntityHandle) (Mask, bool) {
	meta, ok := s.entities.Get(h)
	if !ok {
		return 0, false
	}
	return meta.mask, true
}

// Handle returns the handle of the live entity in slot index.
func (s *Storage) Handle(index int) (EntityHandle, bool) {
	return s.entities.HandleAt(index)
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return s.entities.Len()
}

// Capacity returns the fixed number of entity slots.
func (s *Storage) Capacity() int {
	return s.entities.Capacity()
}

// Reset destroys every entity.
func (s *Storage) Reset() {
	for i := s.entities.HighWater() - 1; i >= 0; i-- {
		if h, ok := s.entities.HandleAt(i); ok {
			s.Destroy(h)
		}
	}
}

// Components returns the registered component types ordered by ID.
func (s *Storage) Components() []ComponentInfo {
	infos := make([]ComponentInfo, len(s.components.columns))
	for i, col := range s.components.columns {
		infos[i] = ComponentInfo{ID: ComponentID(i), Name: col.name(), Type: s.components.types[i]} //nolint:gosec // < 64
	}
	return infos
}

// ComponentID returns the ID of a registered component by name.
func (s *Storage) ComponentID(name string) (ComponentID, error) {
	return s.components.getID(name)
}

// ComponentsOf returns a copy of every active record of a live entity keyed by component name.
func (s *Storage) ComponentsOf(h EntityHandle) (map[string]Component, error) {
	mask, ok := s.MaskFor(h)
	if !ok {
		return nil, eris.Wrapf(ErrStaleHandle, "components of %s", h)
	}
	out := make(map[string]Component, mask.Count())
	for _, id := range mask.IDs() {
		col := s.components.columns[id]
		out[col.name()] = col.getAbstract(int(h.Index))
	}
	return out, nil
}

// checkRegistered returns an error if mask names a component ID that isn't registered.
func (s *Storage) checkRegistered(mask Mask) error {
	if unknown := mask &^ s.components.registered(); unknown != 0 {
		return eris.Wrapf(ErrComponentNotRegistered, "component IDs %v", unknown.IDs())
	}
	return nil
}
