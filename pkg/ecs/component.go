package ecs

import (
	"math/bits"
	"reflect"

	"github.com/argus-labs/slotworld/pkg/assert"
	"github.com/rotisserie/eris"
)

// Component is the interface that all components must implement.
// Components are pure data records stored by value in a fixed-capacity column.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type.
	Name() string
}

// ComponentID is the bit position of a component type in a Mask.
type ComponentID = uint8

// MaxComponents is the number of component types a single storage can hold.
const MaxComponents = 64

// Mask is a per-entity bitfield of active component types. Bit i is set when the component with
// ID i is attached to the entity.
type Mask uint64

// MaskOf builds a mask from component IDs.
func MaskOf(ids ...ComponentID) Mask {
	var m Mask
	for _, id := range ids {
		assert.That(id < MaxComponents, "component ID %d exceeds maximum (%d)", id, MaxComponents)
		m |= 1 << id
	}
	return m
}

// Has reports whether every bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other == other
}

// Intersects reports whether m and other share any bit.
func (m Mask) Intersects(other Mask) bool {
	return m&other != 0
}

// Count returns the number of active component types.
func (m Mask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// IDs returns the component IDs set in the mask in ascending order.
func (m Mask) IDs() []ComponentID {
	ids := make([]ComponentID, 0, m.Count())
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		ids = append(ids, ComponentID(bits.TrailingZeros64(rest))) //nolint:gosec // < 64
	}
	return ids
}

// ComponentInfo describes a registered component type.
type ComponentInfo struct {
	ID   ComponentID
	Name string
	Type reflect.Type
}

// componentManager manages component type registration and lookup.
type componentManager struct {
	capacity int                    // Number of rows every column is created with
	catalog  map[string]ComponentID // Component name -> component ID
	columns  []abstractColumn       // Component ID -> column
	types    []reflect.Type         // Component ID -> Go type
}

// newComponentManager creates a new component manager whose columns hold capacity rows.
func newComponentManager(capacity int) componentManager {
	return componentManager{
		capacity: capacity,
		catalog:  make(map[string]ComponentID),
		columns:  make([]abstractColumn, 0, MaxComponents),
		types:    make([]reflect.Type, 0, MaxComponents),
	}
}

// register registers a new component type and returns its ID.
// If a component with the same name and type is already registered, no-op.
func register[T Component](cm *componentManager) (ComponentID, error) {
	var zero T
	name := zero.Name()
	if name == "" {
		return 0, eris.New("component name cannot be empty")
	}

	typ := reflect.TypeOf(zero)
	if cid, exists := cm.catalog[name]; exists {
		if cm.types[cid] != typ {
			return 0, eris.Errorf("component name %s already registered for %s", name, cm.types[cid])
		}
		return cid, nil
	}

	if len(cm.columns) >= MaxComponents {
		return 0, eris.Errorf("cannot register %s: maximum of %d component types reached", name, MaxComponents)
	}

	cid := ComponentID(len(cm.columns)) //nolint:gosec // bounded by MaxComponents
	col := newColumn[T](cm.capacity)
	cm.catalog[name] = cid
	cm.columns = append(cm.columns, &col)
	cm.types = append(cm.types, typ)
	assert.That(len(cm.columns) == len(cm.types), "component id doesn't match number of components")

	return cid, nil
}

// getID returns a component's ID given a name.
func (cm *componentManager) getID(name string) (ComponentID, error) {
	id, exists := cm.catalog[name]
	if !exists {
		return 0, eris.Wrapf(ErrComponentNotRegistered, "component %s", name)
	}
	return id, nil
}

// registered returns the mask of every registered component.
func (cm *componentManager) registered() Mask {
	n := len(cm.columns)
	if n == MaxComponents {
		return ^Mask(0)
	}
	return Mask(1)<<n - 1
}
