// Package cql parses component query language expressions into ecs filters:
//
//	CONTAINS(Position, Logic) & !EXACT(Entity) | ALL()
//
// Operators apply left to right; use parentheses to group.
package cql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/rotisserie/eris"
)

var ErrSyntax = eris.New("invalid cql")

type cqlOperator int

const (
	opAnd cqlOperator = iota
	opOr
)

var operatorMap = map[string]cqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser how to turn an operator token into a cqlOperator.
func (o *cqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type cqlComponent struct {
	Name string `@Ident`
}

type cqlAll struct{}

func (a *cqlAll) Capture([]string) error {
	*a = cqlAll{}
	return nil
}

type cqlNot struct {
	SubExpression *cqlValue `"!" @@`
}

type cqlExact struct {
	Components []*cqlComponent `"EXACT" "(" (@@ ",")* @@ ")"`
}

type cqlContains struct {
	Components []*cqlComponent `"CONTAINS" "(" (@@ ",")* @@ ")"`
}

type cqlValue struct {
	All           *cqlAll      `@("ALL" "(" ")")`
	Exact         *cqlExact    `| @@`
	Contains      *cqlContains `| @@`
	Not           *cqlNot      `| @@`
	Subexpression *cqlTerm     `| "(" @@ ")"`
}

type cqlFactor struct {
	Base *cqlValue `@@`
}

type cqlOpFactor struct {
	Operator cqlOperator `@("&" | "|")`
	Factor   *cqlFactor  `@@`
}

type cqlTerm struct {
	Left  *cqlFactor     `@@`
	Right []*cqlOpFactor `@@*`
}

// Display

func (o cqlOperator) String() string {
	if o == opOr {
		return "|"
	}
	return "&"
}

func (a *cqlAll) String() string {
	return "ALL()"
}

func componentList(components []*cqlComponent) string {
	names := make([]string, 0, len(components))
	for _, comp := range components {
		names = append(names, comp.Name)
	}
	return strings.Join(names, ", ")
}

func (e *cqlExact) String() string {
	return "EXACT(" + componentList(e.Components) + ")"
}

func (e *cqlContains) String() string {
	return "CONTAINS(" + componentList(e.Components) + ")"
}

func (v *cqlValue) String() string {
	switch {
	case v.Exact != nil:
		return v.Exact.String()
	case v.Contains != nil:
		return v.Contains.String()
	case v.All != nil:
		return v.All.String()
	case v.Not != nil:
		return "!(" + v.Not.SubExpression.String() + ")"
	case v.Subexpression != nil:
		return "(" + v.Subexpression.String() + ")"
	}
	return ""
}

func (f *cqlFactor) String() string {
	return f.Base.String()
}

func (o *cqlOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *cqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalCQLParser = participle.MustBuild[cqlTerm]()

// Resolver maps a component name to its ID in the queried storage.
type Resolver func(name string) (ecs.ComponentID, error)

func maskOf(components []*cqlComponent, resolve Resolver) (ecs.Mask, error) {
	ids := make([]ecs.ComponentID, 0, len(components))
	for _, comp := range components {
		id, err := resolve(comp.Name)
		if err != nil {
			return 0, eris.Wrapf(err, "component %q", comp.Name)
		}
		ids = append(ids, id)
	}
	return ecs.MaskOf(ids...), nil
}

func valueToFilter(value *cqlValue, resolve Resolver) (ecs.Filter, error) {
	switch {
	case value.Not != nil:
		inner, err := valueToFilter(value.Not.SubExpression, resolve)
		if err != nil {
			return nil, err
		}
		return ecs.Not(inner), nil
	case value.Exact != nil:
		mask, err := maskOf(value.Exact.Components, resolve)
		if err != nil {
			return nil, err
		}
		return ecs.Exact(mask), nil
	case value.Contains != nil:
		mask, err := maskOf(value.Contains.Components, resolve)
		if err != nil {
			return nil, err
		}
		return ecs.Contains(mask), nil
	case value.All != nil:
		return ecs.All(), nil
	case value.Subexpression != nil:
		return termToFilter(value.Subexpression, resolve)
	}
	return nil, eris.Wrap(ErrSyntax, "empty value")
}

func termToFilter(term *cqlTerm, resolve Resolver) (ecs.Filter, error) {
	if term.Left == nil {
		return nil, eris.Wrap(ErrSyntax, "not enough values in expression")
	}
	acc, err := valueToFilter(term.Left.Base, resolve)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		next, err := valueToFilter(opFactor.Factor.Base, resolve)
		if err != nil {
			return nil, err
		}
		switch opFactor.Operator {
		case opAnd:
			acc = ecs.And(acc, next)
		case opOr:
			acc = ecs.Or(acc, next)
		}
	}
	return acc, nil
}

// Parse turns a cql expression into a filter, resolving component names with resolve.
func Parse(text string, resolve Resolver) (ecs.Filter, error) {
	term, err := internalCQLParser.ParseString("", text)
	if err != nil {
		return nil, eris.Wrapf(ErrSyntax, "%v", err)
	}
	return termToFilter(term, resolve)
}

// ParseFor parses a cql expression against the components registered in s.
func ParseFor(s *ecs.Storage, text string) (ecs.Filter, error) {
	return Parse(text, s.ComponentID)
}
