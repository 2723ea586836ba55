package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Where appends a condition, AND-combined with the conditions before it.
// The condition is a boolean Input expression, keyword shorthand, or a
// dynamic fragment (expanded in place).
func Where(queryable any, binds BindList, cond any) (*ir.Query, error) {
	return boolean(queryable, binds, cond, kindWhere, ir.CombineAnd, origin())
}

// OrWhere appends a condition OR-combined with the conditions before it.
// The OR applies at the top combination level only; earlier combinations
// are untouched.
func OrWhere(queryable any, binds BindList, cond any) (*ir.Query, error) {
	return boolean(queryable, binds, cond, kindWhere, ir.CombineOr, origin())
}

// Having appends an aggregate condition, AND-combined.
func Having(queryable any, binds BindList, cond any) (*ir.Query, error) {
	return boolean(queryable, binds, cond, kindHaving, ir.CombineAnd, origin())
}

// OrHaving appends an aggregate condition, OR-combined.
func OrHaving(queryable any, binds BindList, cond any) (*ir.Query, error) {
	return boolean(queryable, binds, cond, kindHaving, ir.CombineOr, origin())
}

func boolean(queryable any, binds BindList, cond any, kind clauseKind, op ir.CombineOp, org ir.Origin) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, &ClauseError{Clause: kind.String(), Msg: "missing condition"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kind, b)

	var expr ir.Expr
	if kw, ok := cond.(KW); ok {
		expr, err = e.escapeKW(kw)
	} else {
		expr, err = e.escape(cond)
	}
	if err != nil {
		return nil, err
	}

	clause := ir.BooleanExpr{
		Op:         op,
		Expr:       expr,
		Params:     e.params,
		Subqueries: e.subqueries,
		Origin:     org,
	}
	if kind == kindHaving {
		return q.AppendHaving(clause), nil
	}
	return q.AppendWhere(clause), nil
}
