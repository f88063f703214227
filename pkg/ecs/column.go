package ecs

import "github.com/argus-labs/slotworld/pkg/assert"

// abstractColumn is an internal interface for generic column operations.
type abstractColumn interface {
	len() int
	name() string
	reset(row int)
	getAbstract(row int) Component
}

var _ abstractColumn = &column[Component]{}

// column stores the component data of every slot in a storage. The components slice is allocated
// once with one row per slot, so a row is addressed by the same index as the entity's handle and
// the backing array never moves.
type column[T Component] struct {
	compName   string // The name of the component stored in this column
	components []T    // Array containing the component data
}

// newColumn creates a column with rows zero valued records.
func newColumn[T Component](rows int) column[T] {
	var zero T
	return column[T]{
		compName:   zero.Name(),
		components: make([]T, rows),
	}
}

// len returns the number of rows.
func (c *column[T]) len() int {
	return len(c.components)
}

// name returns the name of the component type.
func (c *column[T]) name() string {
	return c.compName
}

// at returns a pointer to the record in a given row. Expects the caller to have checked that the
// component is active for the entity occupying the row.
func (c *column[T]) at(row int) *T {
	assert.That(row < len(c.components), "row %d out of range", row)
	return &c.components[row]
}

// reset restores the zero value in a given row so a slot never leaks its previous occupant's data.
func (c *column[T]) reset(row int) {
	var zero T
	c.components[row] = zero
}

// getAbstract returns the record in a given row boxed as a Component. Use this only when the
// concrete type isn't known, e.g. for introspection.
func (c *column[T]) getAbstract(row int) Component {
	return c.components[row]
}
