package ecs

import (
	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/rotisserie/eris"
)

// DataBundle is a read-only view of every column of a storage for one pass, typically one frame.
// Rows are indexed by entity slot in [0, Count). A row whose mask is zero is an empty slot.
//
// A bundle expires with the first structural change of the storage (entity created, destroyed,
// or a component (de)activated). Reading an expired bundle is a programming error. Never keep a
// bundle across frames; take a new one.
type DataBundle struct {
	storage *Storage
	version uint64
	count   int
}

// Bundle returns a data bundle of the current state of the storage.
func (s *Storage) Bundle() DataBundle {
	return DataBundle{storage: s, version: s.version, count: s.entities.HighWater()}
}

// Valid reports whether the storage hasn't changed structurally since the bundle was taken.
func (b DataBundle) Valid() bool {
	return b.storage != nil && b.storage.version == b.version
}

// Count returns the number of rows covered by the bundle.
func (b DataBundle) Count() int {
	return b.count
}

// Mask returns the component mask of row i, zero for an empty slot.
func (b DataBundle) Mask(i int) Mask {
	b.check(i)
	h, ok := b.storage.entities.HandleAt(i)
	if !ok {
		return 0
	}
	return b.storage.entities.MustGet(h).mask
}

// Handle returns the handle of the entity in row i.
func (b DataBundle) Handle(i int) (EntityHandle, bool) {
	b.check(i)
	return b.storage.entities.HandleAt(i)
}

func (b DataBundle) check(i int) {
	assert.That(b.Valid(), "data bundle read after a structural change")
	assert.That(i >= 0 && i < b.count, "row %d outside data bundle of %d rows", i, b.count)
}

// ColumnView is the read-only view of one component column inside a data bundle. Rows of entities
// that don't have the component active hold the zero value.
type ColumnView[T Component] struct {
	bundle DataBundle
	rows   []T
}

// View returns the column of component T in a bundle.
func View[T Component](b DataBundle) (ColumnView[T], error) {
	if b.storage == nil {
		return ColumnView[T]{}, eris.New("empty data bundle")
	}
	col, _, err := columnOf[T](b.storage)
	if err != nil {
		return ColumnView[T]{}, err
	}
	return ColumnView[T]{bundle: b, rows: col.components[:b.count]}, nil
}

// Len returns the number of rows in the view.
func (v ColumnView[T]) Len() int {
	return len(v.rows)
}

// At returns a copy of the record in row i.
func (v ColumnView[T]) At(i int) T {
	v.bundle.check(i)
	return v.rows[i]
}
