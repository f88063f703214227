// Package slot implements the static slot allocator: a fixed-capacity arena of records addressed
// by generation-counted handles. Capacity is chosen once at construction and never changes.
package slot

import (
	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/rotisserie/eris"
)

// ErrCapacityExhausted is returned when every slot of an allocator is alive. In a fixed budget
// system this is fatal to the requested operation and must reach the caller.
var ErrCapacityExhausted = eris.New("allocator capacity exhausted")

// firstGeneration is the generation of a slot that has never been freed. Generation 0 is reserved
// for the zero handle.
const firstGeneration uint32 = 1

// meta is the per-slot bookkeeping. It is never exposed outside the allocator.
type meta struct {
	generation uint32 // Current generation of the slot
	alive      bool   // Whether the slot is handed out
}

// Allocator is a fixed-capacity array of T records. Handles returned by Allocate stay valid until
// the matching Deallocate, after which IsValid reports false for them even if the slot is reused.
//
// Removal is mark-dead-in-place: records never move, so the index of a live handle is stable for
// its whole lifetime. Freed indices are recycled LIFO.
type Allocator[T any] struct {
	records   []T      // Record storage, allocated once
	slots     []meta   // Slot metadata, same index space as records
	free      []uint32 // Stack of free indices, top is the next to allocate
	live      int      // Number of alive slots
	highWater int      // One past the highest index allocated since the last Reset
}

// New creates an allocator with room for exactly capacity records.
func New[T any](capacity int) *Allocator[T] {
	assert.That(capacity > 0, "allocator capacity must be positive, got %d", capacity)

	a := &Allocator[T]{
		records: make([]T, capacity),
		slots:   make([]meta, capacity),
		free:    make([]uint32, capacity),
	}
	for i := range a.slots {
		a.slots[i].generation = firstGeneration
		// Seed the stack in reverse so fresh slots are handed out in ascending order.
		a.free[i] = uint32(capacity - 1 - i) //nolint:gosec // capacity fits in uint32
	}
	return a
}

// Allocate reserves a free slot and returns its handle. The record is zero valued.
func (a *Allocator[T]) Allocate() (handle.Handle[T], error) {
	if len(a.free) == 0 {
		return handle.Handle[T]{}, eris.Wrapf(ErrCapacityExhausted, "all %d slots are alive", len(a.slots))
	}

	top := len(a.free) - 1
	index := a.free[top]
	a.free = a.free[:top]

	s := &a.slots[index]
	assert.That(!s.alive, "slot %d on the free list is alive", index)
	s.alive = true
	a.live++
	if int(index) >= a.highWater {
		a.highWater = int(index) + 1
	}

	return handle.New[T](index, s.generation), nil
}

// Deallocate releases the slot referenced by h. Stale or out of range handles are ignored and
// false is returned, which also makes a second Deallocate of the same handle harmless.
func (a *Allocator[T]) Deallocate(h handle.Handle[T]) bool {
	if !a.IsValid(h) {
		return false
	}

	s := &a.slots[h.Index]
	s.alive = false
	s.generation++
	if s.generation == 0 {
		s.generation = firstGeneration
	}

	var zero T
	a.records[h.Index] = zero
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// IsValid reports whether h refers to a slot that is alive and still in the generation it was
// issued for. It is the only safe test before dereferencing an untrusted handle.
func (a *Allocator[T]) IsValid(h handle.Handle[T]) bool {
	if int(h.Index) >= len(a.slots) {
		return false
	}
	s := a.slots[h.Index]
	return s.alive && s.generation == h.Generation
}

// Get returns the record referenced by h, or false if the handle is not valid.
func (a *Allocator[T]) Get(h handle.Handle[T]) (*T, bool) {
	if !a.IsValid(h) {
		return nil, false
	}
	return &a.records[h.Index], true
}

// MustGet returns the record referenced by h. Accessing a stale handle is a programming error and
// panics in development builds.
func (a *Allocator[T]) MustGet(h handle.Handle[T]) *T {
	assert.That(a.IsValid(h), "access through stale %s", h)
	return &a.records[h.Index]
}

// HandleAt returns the handle of the alive slot at index.
func (a *Allocator[T]) HandleAt(index int) (handle.Handle[T], bool) {
	if index < 0 || index >= len(a.slots) || !a.slots[index].alive {
		return handle.Handle[T]{}, false
	}
	return handle.New[T](uint32(index), a.slots[index].generation), true //nolint:gosec // bounded by capacity
}

// Each calls fn for every alive record in index order until fn returns false. fn must not
// allocate or deallocate.
func (a *Allocator[T]) Each(fn func(h handle.Handle[T], record *T) bool) {
	for i := 0; i < a.highWater; i++ {
		if !a.slots[i].alive {
			continue
		}
		if !fn(handle.New[T](uint32(i), a.slots[i].generation), &a.records[i]) { //nolint:gosec // bounded
			return
		}
	}
}

// Reset deallocates every alive slot, invalidating all handles issued so far.
func (a *Allocator[T]) Reset() {
	for i := a.highWater - 1; i >= 0; i-- {
		if a.slots[i].alive {
			a.Deallocate(handle.New[T](uint32(i), a.slots[i].generation)) //nolint:gosec // bounded
		}
	}
	a.highWater = 0
}

// Len returns the number of alive slots.
func (a *Allocator[T]) Len() int {
	return a.live
}

// Capacity returns the fixed number of slots.
func (a *Allocator[T]) Capacity() int {
	return len(a.slots)
}

// HighWater returns one past the highest index allocated since the last Reset. It only grows
// between resets, so Deallocate stays O(1). Dense iteration covers [0, HighWater) and may include
// dead slots.
func (a *Allocator[T]) HighWater() int {
	return a.highWater
}

// Full reports whether the next Allocate would fail.
func (a *Allocator[T]) Full() bool {
	return len(a.free) == 0
}
