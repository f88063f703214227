package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"
)

// SearchParam contains parameters for a search query.
// The where clause is an expr language expression evaluated against each entity, see
// https://expr-lang.org/docs/getting-started. Components are exposed by name and the slot index and
// generation as `_index` and `_generation`.
type SearchParam struct {
	Find  []string    // List of component names to search for
	Match SearchMatch // A match type to use for the search
	Where string      // Optional expr language string to filter the results.
}

// SearchMatch is the type of match to use for the search.
type SearchMatch string

const (
	// MatchExact matches entities that have exactly the specified components.
	MatchExact SearchMatch = "exact"
	// MatchContains matches entities that contains the specified components, but may have other
	// components as well.
	MatchContains SearchMatch = "contains"
)

// validateAndGetFilter validates the search parameters and returns an expr VM program compiled
// from the where clause.
func (p *SearchParam) validateAndGetFilter() (*vm.Program, error) {
	if len(p.Find) == 0 {
		return nil, eris.New("component list cannot be empty")
	}

	if p.Match != MatchExact && p.Match != MatchContains {
		return nil, eris.Errorf("invalid `match` value: must be either '%s' or '%s'", MatchExact, MatchContains)
	}

	if len(p.Where) == 0 {
		return nil, nil //nolint:nilnil // no where clause means no program
	}

	program, err := expr.Compile(p.Where, expr.AsBool())
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse where clause")
	}
	return program, nil
}

// Search returns a map per entity matching the given parameters, in index order.
func (s *Storage) Search(params SearchParam) ([]map[string]any, error) {
	program, err := params.validateAndGetFilter()
	if err != nil {
		return nil, eris.Wrap(err, "invalid search params")
	}

	var mask Mask
	for _, name := range params.Find {
		id, err := s.components.getID(name)
		if err != nil {
			return nil, err
		}
		mask |= MaskOf(id)
	}

	var f Filter = Contains(mask)
	if params.Match == MatchExact {
		f = Exact(mask)
	}

	results := make([]map[string]any, 0)
	for _, h := range s.Query(f) {
		entityMap, err := s.toMap(h)
		if err != nil {
			return nil, err
		}

		if program == nil {
			results = append(results, entityMap)
			continue
		}

		output, err := expr.Run(program, entityMap)
		if err != nil {
			return nil, eris.Wrap(err, "failed to run filter expression")
		}
		// expr can't fully type check field access without the environment, so the result type is
		// only known here.
		isMatch, ok := output.(bool)
		if !ok {
			return nil, eris.New("invalid where clause")
		}
		if isMatch {
			results = append(results, entityMap)
		}
	}
	return results, nil
}

// toMap converts an entity to a map of its components.
func (s *Storage) toMap(h EntityHandle) (map[string]any, error) {
	comps, err := s.ComponentsOf(h)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(comps)+2)
	// Plain integers so expressions can compare them with literals.
	data["_index"] = int(h.Index)
	data["_generation"] = int(h.Generation)
	for name, comp := range comps {
		data[name] = comp
	}
	return data, nil
}
