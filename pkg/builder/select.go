package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Select installs the query's projection: a binding (whole row), a field
// subset (Take or a bare field-name list on binding 0), a tuple, list, map,
// or struct constructor, or any expression. A query carries at most one
// select; a second call errors.
func Select(queryable any, binds BindList, expr any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	sel, err := buildSelect(q, binds, expr, origin())
	if err != nil {
		return nil, err
	}
	return q.SetSelect(sel)
}

// SelectMerge merges a projection into the existing select. With no select
// in place, the whole first binding is adopted as the old side first.
// SelectMerge is always legal; incompatible shapes error.
func SelectMerge(queryable any, binds BindList, expr any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	incoming, err := buildSelect(q, binds, expr, origin())
	if err != nil {
		return nil, err
	}

	old := q.Select
	if old == nil {
		old = &ir.SelectExpr{Expr: &ir.BindingRef{Binding: 0}}
	}
	merged, err := mergeSelect(q, *old, incoming)
	if err != nil {
		return nil, err
	}
	return q.ReplaceSelect(merged), nil
}

func buildSelect(q *ir.Query, binds BindList, raw any, org ir.Origin) (ir.SelectExpr, error) {
	if raw == nil {
		return ir.SelectExpr{}, &ClauseError{Clause: "select", Msg: "missing expression"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return ir.SelectExpr{}, err
	}
	e := newEscaper(kindSelect, b)

	// A bare field-name list is take shorthand on binding 0.
	if fields, ok := raw.([]string); ok {
		e.take = map[int]ir.TakeSpec{0: {Kind: ir.TakeAny, Fields: append([]string(nil), fields...)}}
		return ir.SelectExpr{Expr: &ir.BindingRef{Binding: 0}, Take: e.take, Origin: org}, nil
	}

	expr, err := e.escape(raw)
	if err != nil {
		return ir.SelectExpr{}, err
	}
	return ir.SelectExpr{
		Expr:       expr,
		Params:     e.params,
		Subqueries: e.subqueries,
		Take:       e.take,
		Origin:     org,
	}, nil
}
