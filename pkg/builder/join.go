package builder

import (
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/leapstack-labs/querykit/pkg/schema"
)

// AssocRef traverses an association declared on a binding's schema, for use
// as a join source.
type AssocRef struct {
	bind  BindSel
	field string
}

// Assoc references the association field of a declared binding.
func Assoc(bind BindSel, field string) AssocRef {
	return AssocRef{bind: bind, field: field}
}

// JoinOpts describes one join.
type JoinOpts struct {
	// Qual is the join qualifier; the zero value is an inner join.
	Qual ir.JoinQual
	// Binds names the query's existing bindings for the ON expression.
	Binds BindList
	// Name is the call-site name of the join's new binding. Empty means
	// unnamed; the wildcard "_" is also accepted.
	Name string
	// Source is a table name, schema, query (joined as a subquery), raw
	// fragment, or association traversal.
	Source any
	// On is the join condition: Input expression, keyword shorthand, or
	// dynamic fragment. When omitted on a non-cross, non-association join
	// it defaults to true and a diagnostic warning is logged.
	On any

	As     string
	Prefix string
	Hints  []string
}

// Join appends a join to the query. The join's source gets the next binding
// index; the binding count of an opaque incoming query is computed by
// inspecting its current binding list, so joins compose with queries built
// elsewhere.
func Join(queryable any, o JoinOpts) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if !o.Qual.Valid() {
		return nil, &ClauseError{Clause: "join", Msg: "invalid join qualifier"}
	}

	j := ir.JoinExpr{
		Qual:   o.Qual,
		As:     o.As,
		Prefix: o.Prefix,
		Hints:  o.Hints,
		Origin: origin(),
	}

	preBinds, err := newBindings(q, o.Binds)
	if err != nil {
		return nil, err
	}

	assocJoin := false
	switch src := o.Source.(type) {
	case string:
		j.Source = &ir.TableSource{Table: src}
	case schema.Metadata:
		prefix := src.Prefix()
		if o.Prefix != "" {
			prefix = o.Prefix
		}
		j.Source = &ir.SchemaSource{Source: src.SourceName(), Schema: src.SourceName(), Prefix: prefix}
	case *ir.Query:
		j.Source = &ir.SubquerySource{Sub: &ir.SubqueryExpr{Query: src}}
	case AssocRef:
		ix, rerr := preBinds.resolve(src.bind)
		if rerr != nil {
			return nil, rerr
		}
		j.Source = &ir.AssocSource{Binding: ix, Field: src.field}
		assocJoin = true
	case Input:
		switch in := src.(type) {
		case subqIn:
			j.Source = &ir.SubquerySource{Sub: &ir.SubqueryExpr{Query: in.q}}
		case fragIn:
			// Fragment sources may reference existing bindings (lateral).
			e := newEscaper(kindFrom, preBinds)
			expr, ferr := e.escape(in)
			if ferr != nil {
				return nil, ferr
			}
			j.Source = &ir.FragmentSource{Frag: expr.(*ir.Fragment)}
			j.Params = e.params
		default:
			return nil, &ClauseError{Clause: "join", Msg: "expected a table name, schema, query, fragment, or association"}
		}
	default:
		return nil, &ClauseError{Clause: "join", Msg: "expected a table name, schema, query, fragment, or association"}
	}

	on, err := joinOn(q, o, assocJoin, j.Source)
	if err != nil {
		return nil, err
	}
	j.On = on

	nq, _, err := q.AppendJoin(j)
	return nq, err
}

// joinOn escapes the ON condition against the binding list extended with
// the join's own binding.
func joinOn(q *ir.Query, o JoinOpts, assocJoin bool, src ir.JoinSource) (*ir.BooleanExpr, error) {
	cross := o.Qual == ir.JoinCross || o.Qual == ir.JoinCrossLateral
	if o.On == nil {
		if cross || assocJoin {
			return nil, nil
		}
		// Historical affordance: a missing ON defaults to true rather than
		// erroring, but it is almost always unintended.
		logger.Warn("join without an on condition defaults to true",
			"qual", o.Qual.String(),
			"source", joinSourceName(src))
		return &ir.BooleanExpr{Op: ir.CombineAnd, Expr: &ir.Literal{Value: true}}, nil
	}
	if cross {
		return nil, &ClauseError{Clause: "join", Msg: "cross joins do not accept an on condition"}
	}

	b, err := newJoinBindings(q, o.Binds, o.Name)
	if err != nil {
		return nil, err
	}

	e := newEscaper(kindOn, b)
	e.kwBinding = q.BindingCount()
	var expr ir.Expr
	if kw, ok := o.On.(KW); ok {
		expr, err = e.escapeKW(kw)
	} else {
		expr, err = e.escape(o.On)
	}
	if err != nil {
		return nil, err
	}
	return &ir.BooleanExpr{
		Op:         ir.CombineAnd,
		Expr:       expr,
		Params:     e.params,
		Subqueries: e.subqueries,
	}, nil
}

// newJoinBindings builds a binding list that also resolves the join's
// yet-to-be-appended binding, pinned to the next index regardless of how
// many existing bindings the call site named.
func newJoinBindings(q *ir.Query, names BindList, joinName string) (*Bindings, error) {
	b, err := newBindings(q, names)
	if err != nil {
		return nil, err
	}
	if joinName == "" || joinName == Wildcard {
		return b, nil
	}
	for _, name := range names {
		if name == joinName {
			return nil, &DuplicateBindingError{Name: joinName}
		}
	}
	b.pinned = map[string]int{joinName: q.BindingCount()}
	return b, nil
}

func joinSourceName(src ir.JoinSource) string {
	switch s := src.(type) {
	case *ir.TableSource:
		return s.Table
	case *ir.SchemaSource:
		return s.Source
	case *ir.SubquerySource:
		return "subquery"
	case *ir.FragmentSource:
		return "fragment"
	}
	return "source"
}
