package builder

import (
	"github.com/leapstack-labs/querykit/pkg/ir"
)

// Dynamic is a deferred fragment of query logic, built independent of any
// query and spliced into a where/having/join-on/order_by/group_by clause
// (or into another Dynamic) later. A Dynamic is immutable and may be
// expanded at any number of splice sites, including concurrently; each
// expansion rewrites its internal parameter indices to fit the site.
type Dynamic struct {
	binds BindList
	input any
}

// NewDynamic captures a binding list and a raw expression (an Input tree or
// keyword shorthand). Escaping runs per splice site, against the concrete
// query spliced into, with the fragment's own zero-based parameter counter.
func NewDynamic(binds BindList, expr any) *Dynamic {
	return &Dynamic{binds: append(BindList(nil), binds...), input: expr}
}

// expand escapes the fragment against the splice site's query with a local
// accumulator, then rewrites every placeholder onto the site's running
// parameter list and re-attaches subqueries at fresh indices.
func (d *Dynamic) expand(e *escaper) (ir.Expr, error) {
	localBinds, err := newBindings(e.binds.query, d.binds)
	if err != nil {
		return nil, err
	}
	local := &escaper{kind: e.kind, binds: localBinds, dynamic: true, kwBinding: e.kwBinding}

	var expr ir.Expr
	if kw, ok := d.input.(KW); ok {
		expr, err = local.escapeKW(kw)
	} else {
		expr, err = local.escape(d.input)
	}
	if err != nil {
		return nil, err
	}
	out, err := rewriteSplice(expr, local, e)
	if err != nil {
		return nil, err
	}
	if err := spliceTakes(local, e); err != nil {
		return nil, err
	}
	return out, nil
}

// spliceTakes carries field-subset metadata collected inside the fragment
// over to the splice site, merging with any subset the site already holds
// for the same binding. Binding indices resolve against the site's query
// on both sides, so they transfer unchanged.
func spliceTakes(local, outer *escaper) error {
	merged, err := mergeTakes(outer.take, local.take)
	if err != nil {
		return err
	}
	outer.take = merged
	return nil
}

// rewriteSplice walks an expanded fragment expression. Placeholders whose
// captured value is itself a Dynamic recurse; genuine parameters move to
// the splice site's list under their new index. Subqueries introduced by
// the fragment are re-checked against the splice site's clause rules, since
// the call site never saw them directly.
func rewriteSplice(expr ir.Expr, local, outer *escaper) (ir.Expr, error) {
	switch v := expr.(type) {
	case *ir.Literal, *ir.BindingRef:
		return expr, nil

	case *ir.Param:
		captured := local.params[v.Ix]
		if nested, ok := captured.Value.(*Dynamic); ok {
			return nested.expand(outer)
		}
		ix := len(outer.params)
		outer.params = append(outer.params, captured)
		return &ir.Param{Ix: ix, Type: captured.Type}, nil

	case *ir.Subquery:
		if !outer.kind.allowsSubquery() {
			return nil, &SubqueryError{Clause: outer.kind.String()}
		}
		ix := len(outer.subqueries)
		outer.subqueries = append(outer.subqueries, local.subqueries[v.Ix])
		return &ir.Subquery{Ix: ix}, nil

	case *ir.Op:
		args, err := rewriteAll(v.Args, local, outer)
		if err != nil {
			return nil, err
		}
		return &ir.Op{Name: v.Name, Args: args}, nil

	case *ir.Tuple:
		elems, err := rewriteAll(v.Elems, local, outer)
		if err != nil {
			return nil, err
		}
		return &ir.Tuple{Elems: elems}, nil

	case *ir.List:
		elems, err := rewriteAll(v.Elems, local, outer)
		if err != nil {
			return nil, err
		}
		return &ir.List{Elems: elems}, nil

	case *ir.MapExpr:
		fields, err := rewriteKVs(v.Fields, local, outer)
		if err != nil {
			return nil, err
		}
		return &ir.MapExpr{Fields: fields}, nil

	case *ir.StructExpr:
		fields, err := rewriteKVs(v.Fields, local, outer)
		if err != nil {
			return nil, err
		}
		return &ir.StructExpr{Schema: v.Schema, Fields: fields}, nil

	case *ir.Fragment:
		parts := make([]ir.FragmentPart, len(v.Parts))
		for i, p := range v.Parts {
			if p.Expr == nil {
				parts[i] = p
				continue
			}
			rewritten, err := rewriteSplice(p.Expr, local, outer)
			if err != nil {
				return nil, err
			}
			parts[i] = ir.FragmentPart{Expr: rewritten}
		}
		return &ir.Fragment{Parts: parts}, nil
	}
	return expr, nil
}

func rewriteAll(exprs []ir.Expr, local, outer *escaper) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(exprs))
	for i, ex := range exprs {
		rewritten, err := rewriteSplice(ex, local, outer)
		if err != nil {
			return nil, err
		}
		out[i] = rewritten
	}
	return out, nil
}

func rewriteKVs(kvs []ir.KV, local, outer *escaper) ([]ir.KV, error) {
	out := make([]ir.KV, len(kvs))
	for i, kv := range kvs {
		rewritten, err := rewriteSplice(kv.Value, local, outer)
		if err != nil {
			return nil, err
		}
		out[i] = ir.KV{Key: kv.Key, Value: rewritten}
	}
	return out, nil
}
