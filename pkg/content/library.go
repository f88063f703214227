package content

import (
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/rotisserie/eris"
)

var (
	ErrDuplicateName = eris.New("resource name already in use")
	ErrNotFound      = eris.New("resource not found")
)

// Resource is a record that can be looked up by name.
type Resource interface {
	ResourceName() string
}

// Library is a fixed-capacity allocator of resources with a name index. Names are unique within a
// library; an unnamed resource is only reachable by handle.
type Library[T Resource] struct {
	records *slot.Allocator[T]
	byName  map[string]handle.Handle[T]
}

// NewLibrary creates a library with room for exactly capacity resources.
func NewLibrary[T Resource](capacity int) *Library[T] {
	return &Library[T]{
		records: slot.New[T](capacity),
		byName:  make(map[string]handle.Handle[T], capacity),
	}
}

// Add stores a resource and returns its handle. Fails with ErrDuplicateName if the name is taken
// and with slot.ErrCapacityExhausted if the library is full.
func (l *Library[T]) Add(res T) (handle.Handle[T], error) {
	name := res.ResourceName()
	if name != "" {
		if _, exists := l.byName[name]; exists {
			return handle.Handle[T]{}, eris.Wrapf(ErrDuplicateName, "resource %q", name)
		}
	}

	h, err := l.records.Allocate()
	if err != nil {
		return handle.Handle[T]{}, eris.Wrapf(err, "failed to add resource %q", name)
	}
	*l.records.MustGet(h) = res
	if name != "" {
		l.byName[name] = h
	}
	return h, nil
}

// Lookup returns the handle of the resource with the given name.
func (l *Library[T]) Lookup(name string) (handle.Handle[T], bool) {
	h, ok := l.byName[name]
	return h, ok
}

// MustLookup is Lookup for names that are known to exist; it returns ErrNotFound otherwise.
func (l *Library[T]) MustLookup(name string) (handle.Handle[T], error) {
	h, ok := l.byName[name]
	if !ok {
		return handle.Handle[T]{}, eris.Wrapf(ErrNotFound, "resource %q", name)
	}
	return h, nil
}

// Get returns the resource for a handle, or false if the handle is stale.
func (l *Library[T]) Get(h handle.Handle[T]) (*T, bool) {
	return l.records.Get(h)
}

// MustGet returns the resource for a handle that must be valid.
func (l *Library[T]) MustGet(h handle.Handle[T]) *T {
	return l.records.MustGet(h)
}

// IsValid reports whether h refers to a stored resource.
func (l *Library[T]) IsValid(h handle.Handle[T]) bool {
	return l.records.IsValid(h)
}

// Remove releases a resource. Every handle to it becomes stale.
func (l *Library[T]) Remove(h handle.Handle[T]) bool {
	res, ok := l.records.Get(h)
	if !ok {
		return false
	}
	if name := (*res).ResourceName(); name != "" {
		delete(l.byName, name)
	}
	return l.records.Deallocate(h)
}

// Each calls fn for every stored resource in slot order until fn returns false.
func (l *Library[T]) Each(fn func(h handle.Handle[T], res *T) bool) {
	l.records.Each(fn)
}

// Len returns the number of stored resources.
func (l *Library[T]) Len() int { return l.records.Len() }

// Capacity returns the fixed number of resource slots.
func (l *Library[T]) Capacity() int { return l.records.Capacity() }

// Reset removes every resource.
func (l *Library[T]) Reset() {
	l.records.Reset()
	clear(l.byName)
}
