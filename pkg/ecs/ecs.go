// Package ecs is the component storage of a world: fixed-capacity parallel columns indexed by
// generational entity handles, per-entity component masks, frame-scoped data bundles, and queries.
package ecs

import (
	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// Register registers the component type T and returns its ID. Registering the same type twice
// returns the existing ID. The column is allocated with one row per entity slot right away.
func Register[T Component](s *Storage) (ComponentID, error) {
	before := len(s.components.columns)
	id, err := register[T](&s.components)
	if err != nil {
		return 0, err
	}
	if len(s.components.columns) > before {
		s.members = append(s.members, bitmap.Bitmap{})
	}
	assert.That(len(s.members) == len(s.components.columns), "membership bitmaps out of sync with columns")
	return id, nil
}

// ComponentMask returns the mask bit of the registered component type T.
func ComponentMask[T Component](s *Storage) (Mask, error) {
	id, err := componentIDOf[T](s)
	if err != nil {
		return 0, err
	}
	return MaskOf(id), nil
}

// Get returns a pointer to the T record of a live entity. The pointer is only valid until the next
// structural change of the storage; retain the handle, not the pointer.
func Get[T Component](s *Storage, h EntityHandle) (*T, error) {
	col, id, err := columnOf[T](s)
	if err != nil {
		return nil, err
	}
	mask, ok := s.MaskFor(h)
	if !ok {
		return nil, eris.Wrapf(ErrStaleHandle, "get %s on %s", col.name(), h)
	}
	if !mask.Has(MaskOf(id)) {
		return nil, eris.Wrapf(ErrComponentNotActive, "get %s on %s", col.name(), h)
	}
	return col.at(int(h.Index)), nil
}

// MustGet returns a pointer to the T record of a live entity. The handle must be valid and the
// component active; anything else is a programming error and panics in development builds.
func MustGet[T Component](s *Storage, h EntityHandle) *T {
	rec, err := Get[T](s, h)
	assert.That(err == nil, "MustGet: %v", err)
	if err != nil {
		// Release builds read the raw row so a defect degrades instead of crashing.
		col, _, colErr := columnOf[T](s)
		if colErr != nil || int(h.Index) >= col.len() {
			var zero T
			return &zero
		}
		return col.at(int(h.Index))
	}
	return rec
}

// Has reports whether a live entity has component T active.
func Has[T Component](s *Storage, h EntityHandle) bool {
	_, err := Get[T](s, h)
	return err == nil
}

// componentIDOf returns the ID of the registered component type T.
func componentIDOf[T Component](s *Storage) (ComponentID, error) {
	var zero T
	return s.components.getID(zero.Name())
}

// columnOf returns the typed column of component T and its ID.
func columnOf[T Component](s *Storage) (*column[T], ComponentID, error) {
	id, err := componentIDOf[T](s)
	if err != nil {
		return nil, 0, err
	}
	col, ok := s.components.columns[id].(*column[T])
	if !ok {
		return nil, 0, eris.Errorf("component %s is registered with a different type", s.components.columns[id].name())
	}
	return col, id, nil
}
