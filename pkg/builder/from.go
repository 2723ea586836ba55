package builder

import (
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/leapstack-labs/querykit/pkg/schema"
)

// FromOpts carries the optional parts of a from clause.
type FromOpts struct {
	As     string
	Prefix string
	Hints  []string
}

// From starts a query from a source: a table name, a schema, a subquery, or
// a raw fragment. Passing an existing query returns it unchanged (options
// cannot be re-applied to a built query). The source becomes binding 0.
func From(source any, opts ...FromOpts) (*ir.Query, error) {
	var o FromOpts
	if len(opts) > 0 {
		o = opts[0]
	}

	if q, ok := source.(*ir.Query); ok {
		if len(opts) > 0 {
			return nil, &ClauseError{Clause: "from", Msg: "options cannot be applied to an existing query"}
		}
		return q, nil
	}

	f := ir.FromExpr{As: o.As, Prefix: o.Prefix, Hints: o.Hints, Origin: origin()}

	switch src := source.(type) {
	case string:
		f.Source = &ir.TableSource{Table: src}

	case schema.Metadata:
		f.Source = &ir.SchemaSource{Source: src.SourceName(), Schema: src.SourceName(), Prefix: src.Prefix()}
		if o.Prefix != "" {
			f.Source.(*ir.SchemaSource).Prefix = o.Prefix
		}

	case Input:
		switch in := src.(type) {
		case subqIn:
			f.Source = &ir.SubquerySource{Sub: &ir.SubqueryExpr{Query: in.q}}
		case fragIn:
			e := newEscaper(kindFrom, &Bindings{query: &ir.Query{}})
			expr, err := e.escape(in)
			if err != nil {
				return nil, err
			}
			f.Source = &ir.FragmentSource{Frag: expr.(*ir.Fragment)}
			f.Params = e.params
		default:
			return nil, &ClauseError{Clause: "from", Msg: "expected a table name, schema, subquery, or fragment"}
		}

	default:
		return nil, &ClauseError{Clause: "from", Msg: "expected a table name, schema, subquery, or fragment"}
	}

	return (&ir.Query{}).SetFrom(f)
}
