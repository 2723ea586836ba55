package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Union appends a UNION set operation over another query.
func Union(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.Union)
}

// UnionAll appends a UNION ALL set operation over another query.
func UnionAll(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.UnionAll)
}

// Except appends an EXCEPT set operation over another query.
func Except(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.Except)
}

// ExceptAll appends an EXCEPT ALL set operation over another query.
func ExceptAll(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.ExceptAll)
}

// Intersect appends an INTERSECT set operation over another query.
func Intersect(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.Intersect)
}

// IntersectAll appends an INTERSECT ALL set operation over another query.
func IntersectAll(queryable, other any) (*ir.Query, error) {
	return combine(queryable, other, ir.IntersectAll)
}

// combine wraps the other query whole. Its clauses, bindings, and
// parameters stay self-contained; nothing is renumbered against the outer
// query.
func combine(queryable, other any, kind ir.CombinationKind) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	oq, err := toQuery(other)
	if err != nil {
		return nil, err
	}
	return q.AppendCombination(ir.Combination{Kind: kind, Query: oq}), nil
}
