package ecs

import "github.com/argus-labs/slotworld/pkg/assert"

// Query returns the handles of every live entity selected by the filter, in index order.
func (s *Storage) Query(f Filter) []EntityHandle {
	candidates := s.alive.Clone(nil)
	for _, id := range f.required().IDs() {
		if int(id) >= len(s.members) {
			return nil
		}
		candidates.And(s.members[id])
	}

	result := make([]EntityHandle, 0, candidates.Count())
	candidates.Range(func(x uint32) {
		h, ok := s.entities.HandleAt(int(x))
		assert.That(ok, "slot %d in the alive bitmap is dead", x)
		if f.Matches(s.entities.MustGet(h).mask) {
			result = append(result, h)
		}
	})
	return result
}

// Each calls fn for every live entity selected by the filter, in index order, until fn returns
// false. fn must not change the storage structurally; defer creations and removals until Each
// returns.
func (s *Storage) Each(f Filter, fn func(h EntityHandle) bool) {
	version := s.version
	for _, h := range s.Query(f) {
		if !fn(h) {
			return
		}
		assert.That(s.version == version, "storage changed structurally during iteration")
	}
}

// Count returns the number of live entities selected by the filter.
func (s *Storage) Count(f Filter) int {
	return len(s.Query(f))
}
