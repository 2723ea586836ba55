package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// WindowDef describes one named window: partition expressions, ordering,
// and an optional frame fragment.
type WindowDef struct {
	PartitionBy []any
	OrderBy     []any
	Frame       Input
}

// Window defines a named window on the query. Window definitions share one
// namespace per query; redefining a name errors. Subqueries are not
// permitted inside window definitions.
func Window(queryable any, binds BindList, name string, def WindowDef) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &ClauseError{Clause: "windows", Msg: "window name must not be empty"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindWindow, b)

	partition := make([]ir.Expr, 0, len(def.PartitionBy))
	for _, item := range def.PartitionBy {
		expr, err := e.escape(atomOrExpr(item))
		if err != nil {
			return nil, err
		}
		partition = append(partition, expr)
	}

	order, err := orderItems(e, def.OrderBy)
	if err != nil {
		return nil, err
	}

	var frame *ir.Fragment
	if def.Frame != nil {
		fr, ok := def.Frame.(fragIn)
		if !ok {
			return nil, &ClauseError{Clause: "windows", Msg: "window frame must be a fragment"}
		}
		expr, err := e.escape(fr)
		if err != nil {
			return nil, err
		}
		frame = expr.(*ir.Fragment)
	}

	w := &ir.WindowExpr{
		PartitionBy: partition,
		OrderBy:     order,
		Frame:       frame,
		Params:      e.params,
		Origin:      origin(),
	}
	return q.PutWindow(name, w)
}
