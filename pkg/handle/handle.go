// Package handle defines the opaque, versioned references used to address slots in a fixed
// capacity allocator without holding a pointer into its storage.
package handle

import "fmt"

// Handle is a versioned reference into a slot array of records of type T. The type parameter only
// tags the handle so a mesh handle cannot be passed to a texture allocator.
//
// Handles are plain values: copy them freely, compare them with ==, and store them anywhere. They
// carry no ownership. A handle only proves anything once the allocator that issued it confirms it
// with IsValid. The zero value is the invalid handle since generations start at 1.
type Handle[T any] struct {
	Index      uint32 // Position of the slot in the allocator
	Generation uint32 // Generation of the slot at the time the handle was issued
}

// New builds a handle from its parts.
func New[T any](index, generation uint32) Handle[T] {
	return Handle[T]{Index: index, Generation: generation}
}

// IsZero reports whether the handle is the invalid handle. A non-zero handle may still be stale.
func (h Handle[T]) IsZero() bool {
	return h.Generation == 0
}

// Invalidate resets the handle to the invalid handle.
func (h *Handle[T]) Invalidate() {
	*h = Handle[T]{}
}

func (h Handle[T]) String() string {
	if h.IsZero() {
		return "handle(invalid)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.Index, h.Generation)
}
