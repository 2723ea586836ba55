package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Limit replaces the limit clause. The expression must be integer-typed
// and must not reference query bindings: a limit cannot depend on row
// data.
func Limit(queryable any, v any) (*ir.Query, error) {
	q, expr, err := limitExpr(queryable, v, kindLimit)
	if err != nil {
		return nil, err
	}
	expr.Origin = origin()
	return q.SetLimit(expr), nil
}

// Offset replaces the offset clause, under the same rules as Limit.
func Offset(queryable any, v any) (*ir.Query, error) {
	q, expr, err := limitExpr(queryable, v, kindOffset)
	if err != nil {
		return nil, err
	}
	expr.Origin = origin()
	return q.SetOffset(expr), nil
}

// WithTies marks the limit clause as WITH TIES. The value must be boolean;
// a query without a limit cannot carry the flag.
func WithTies(queryable any, v any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if q.Limit == nil {
		return nil, &ClauseError{Clause: "limit", Msg: "with_ties requires a limit clause"}
	}
	raw := v
	if val, ok := coerce(v).(valIn); ok {
		raw = val.v
	}
	t, ok := raw.(bool)
	if !ok {
		return nil, &ClauseError{Clause: "limit", Msg: "with_ties expression must be a boolean value"}
	}
	l := *q.Limit
	l.WithTies = t
	return q.SetLimit(l), nil
}

func limitExpr(queryable any, v any, kind clauseKind) (*ir.Query, ir.LimitExpr, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, ir.LimitExpr{}, err
	}
	e := newEscaper(kind, &Bindings{query: q})

	var expr ir.Expr
	if val, ok := coerce(v).(valIn); ok {
		expr, err = e.escapeVal(val.v, ir.ScalarType{Name: ir.TypeInteger})
	} else {
		expr, err = e.escape(v)
	}
	if err != nil {
		return nil, ir.LimitExpr{}, err
	}
	if referencesBinding(expr) {
		return nil, ir.LimitExpr{}, &ClauseError{Clause: kind.String(), Msg: "expression must not reference query bindings"}
	}
	return q, ir.LimitExpr{Expr: expr, Params: e.params}, nil
}

// referencesBinding reports whether any node of the escaped expression
// touches a declared binding.
func referencesBinding(expr ir.Expr) bool {
	switch v := expr.(type) {
	case *ir.BindingRef:
		return true
	case *ir.Op:
		for _, arg := range v.Args {
			if referencesBinding(arg) {
				return true
			}
		}
	case *ir.Tuple:
		for _, el := range v.Elems {
			if referencesBinding(el) {
				return true
			}
		}
	case *ir.List:
		for _, el := range v.Elems {
			if referencesBinding(el) {
				return true
			}
		}
	case *ir.Fragment:
		for _, p := range v.Parts {
			if p.Expr != nil && referencesBinding(p.Expr) {
				return true
			}
		}
	}
	return false
}
