package ecs

// Filter selects entities by their component mask.
type Filter interface {
	// Matches reports whether an entity with the given mask is selected.
	Matches(mask Mask) bool
	// required returns the bits every selected entity must have. It lets queries intersect
	// membership bitmaps before testing masks.
	required() Mask
}

type all struct{}

// All selects every live entity.
func All() Filter { return all{} }

func (all) Matches(Mask) bool { return true }
func (all) required() Mask    { return 0 }

type contains struct{ mask Mask }

// Contains selects entities that have every component of mask, and possibly more.
func Contains(mask Mask) Filter { return contains{mask: mask} }

func (f contains) Matches(mask Mask) bool { return mask.Has(f.mask) }
func (f contains) required() Mask         { return f.mask }

type exact struct{ mask Mask }

// Exact selects entities whose components are exactly mask.
func Exact(mask Mask) Filter { return exact{mask: mask} }

func (f exact) Matches(mask Mask) bool { return mask == f.mask }
func (f exact) required() Mask         { return f.mask }

type not struct{ inner Filter }

// Not inverts a filter.
func Not(inner Filter) Filter { return not{inner: inner} }

func (f not) Matches(mask Mask) bool { return !f.inner.Matches(mask) }
func (f not) required() Mask         { return 0 }

type and struct{ filters []Filter }

// And selects entities matched by every filter.
func And(filters ...Filter) Filter { return and{filters: filters} }

func (f and) Matches(mask Mask) bool {
	for _, inner := range f.filters {
		if !inner.Matches(mask) {
			return false
		}
	}
	return true
}

func (f and) required() Mask {
	var req Mask
	for _, inner := range f.filters {
		req |= inner.required()
	}
	return req
}

type or struct{ filters []Filter }

// Or selects entities matched by any filter.
func Or(filters ...Filter) Filter { return or{filters: filters} }

func (f or) Matches(mask Mask) bool {
	for _, inner := range f.filters {
		if inner.Matches(mask) {
			return true
		}
	}
	return false
}

func (f or) required() Mask {
	if len(f.filters) == 0 {
		return 0
	}
	req := f.filters[0].required()
	for _, inner := range f.filters[1:] {
		req &= inner.required()
	}
	return req
}
