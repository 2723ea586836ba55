package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Distinct replaces the distinct clause with a plain boolean.
func Distinct(queryable any, value bool) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	return q.SetDistinct(ir.DistinctExpr{Value: value, Origin: origin()}), nil
}

// DistinctOn replaces the distinct clause with an expression list
// (DISTINCT ON). Items follow the field-list shorthand; subqueries are not
// allowed.
func DistinctOn(queryable any, binds BindList, items ...any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &ClauseError{Clause: "distinct", Msg: "distinct on requires at least one expression"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindDistinct, b)
	exprs := make([]ir.Expr, len(items))
	for i, item := range items {
		expr, err := e.escape(atomOrExpr(item))
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return q.SetDistinct(ir.DistinctExpr{Value: true, Exprs: exprs, Params: e.params, Origin: origin()}), nil
}
