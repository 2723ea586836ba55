package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// GroupBy appends a group_by clause. Items are bare field names (on
// binding 0), expressions, or dynamic fragments; order is preserved.
// Subqueries are not allowed.
func GroupBy(queryable any, binds BindList, items ...any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindGroupBy, b)
	exprs := make([]ir.Expr, len(items))
	for i, item := range items {
		expr, err := e.escape(atomOrExpr(item))
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return q.AppendGroupBy(ir.QueryExpr{Exprs: exprs, Params: e.params, Origin: origin()}), nil
}
