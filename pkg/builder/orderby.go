package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Ord pairs an order direction with an expression.
type Ord struct {
	Dir  ir.Direction
	Expr any
}

// Asc orders ascending.
func Asc(expr any) Ord { return Ord{Dir: ir.Asc, Expr: expr} }

// Desc orders descending.
func Desc(expr any) Ord { return Ord{Dir: ir.Desc, Expr: expr} }

// AscNullsFirst orders ascending with nulls first.
func AscNullsFirst(expr any) Ord { return Ord{Dir: ir.AscNullsFirst, Expr: expr} }

// AscNullsLast orders ascending with nulls last.
func AscNullsLast(expr any) Ord { return Ord{Dir: ir.AscNullsLast, Expr: expr} }

// DescNullsFirst orders descending with nulls first.
func DescNullsFirst(expr any) Ord { return Ord{Dir: ir.DescNullsFirst, Expr: expr} }

// DescNullsLast orders descending with nulls last.
func DescNullsLast(expr any) Ord { return Ord{Dir: ir.DescNullsLast, Expr: expr} }

// TaggedOrd carries a late-bound direction tag, validated when the clause
// is built.
type TaggedOrd struct {
	Tag  any
	Expr any
}

// OrdTag orders by expr under an interpolated direction tag. The tag must
// resolve to one of the recognized direction names at build time.
func OrdTag(tag, expr any) TaggedOrd { return TaggedOrd{Tag: tag, Expr: expr} }

// OrderBy appends an order_by clause. Items are bare field names (on
// binding 0), expressions, direction-wrapped expressions, tagged runtime
// directions, or dynamic fragments. Subqueries are not allowed.
func OrderBy(queryable any, binds BindList, items ...any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindOrderBy, b)
	parsed, err := orderItems(e, items)
	if err != nil {
		return nil, err
	}
	return q.AppendOrderBy(ir.OrderByExpr{Items: parsed, Params: e.params, Origin: origin()}), nil
}

// orderItems escapes a list of order items; shared with window
// definitions.
func orderItems(e *escaper, items []any) ([]ir.OrderByItem, error) {
	out := make([]ir.OrderByItem, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case Ord:
			expr, err := e.escape(atomOrExpr(v.Expr))
			if err != nil {
				return nil, err
			}
			out = append(out, ir.OrderByItem{Dir: v.Dir, Expr: expr})
		case TaggedOrd:
			dir, err := resolveDirection(v.Tag)
			if err != nil {
				return nil, err
			}
			expr, err := e.escape(atomOrExpr(v.Expr))
			if err != nil {
				return nil, err
			}
			out = append(out, ir.OrderByItem{Dir: dir, Expr: expr})
		default:
			expr, err := e.escape(atomOrExpr(item))
			if err != nil {
				return nil, err
			}
			out = append(out, ir.OrderByItem{Dir: ir.Asc, Expr: expr})
		}
	}
	return out, nil
}

// resolveDirection validates a late-bound direction tag.
func resolveDirection(tag any) (ir.Direction, error) {
	switch t := tag.(type) {
	case ir.Direction:
		return t, nil
	case string:
		if dir, ok := ir.ParseDirection(t); ok {
			return dir, nil
		}
	}
	return 0, &BadDirectionError{Value: tag}
}

// atomOrExpr treats a bare string as a field of binding 0, the shorthand
// shared by order_by, group_by, distinct, and window partitions.
func atomOrExpr(v any) any {
	if field, ok := v.(string); ok {
		return atomIn{field: field}
	}
	return v
}
