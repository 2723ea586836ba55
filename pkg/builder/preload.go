package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// ---------- Preload Items ----------

// preKey marks a runtime-interpolated association name. It must resolve to
// a string when the preload is applied.
type preKey struct {
	value any
}

// Key wraps a runtime value used where an association name is expected.
func Key(v any) any { return preKey{value: v} }

// plainPre is a plain preload with optional nested preloads.
type plainPre struct {
	key      any
	children []any
}

// P nests preloads under an association loaded in its own query.
func P(name any, children ...any) any { return plainPre{key: name, children: children} }

// joinPre ties a preload to an already-joined binding.
type joinPre struct {
	key      any
	bind     any
	children []any
}

// PJoin preloads an association through a join binding already present on
// the query. The binding is a selector (Bind or Alias) or a dynamic
// fragment resolving to exactly one binding. Join preloads may nest only
// under other join preloads or at top level.
func PJoin(name any, bind any, children ...any) any {
	return joinPre{key: name, bind: bind, children: children}
}

// ---------- Builder ----------

// Preload records associations to load alongside the query's rows. Items
// are association names, runtime keys, or nested P/PJoin trees.
func Preload(queryable any, binds BindList, items ...any) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &ClauseError{Clause: "preload", Msg: "missing preload items"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}

	p := &preloader{binds: b, forest: q.Assocs}
	entries, err := p.collect(items, -1, "")
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		q = q.AppendPreloads(entries...)
	}
	if len(p.forest.Nodes) != len(q.Assocs.Nodes) {
		q = q.WithAssocs(p.forest)
	}
	return q, nil
}

type preloader struct {
	binds  *Bindings
	forest ir.AssocForest
}

// collect walks one level of preload items. parentIx is the enclosing join
// node's arena index, or -1 when there is none; plainParent names the
// enclosing plain node, if any. Returned entries are the level's plain
// preloads; join preloads go straight into the forest.
func (p *preloader) collect(items []any, parentIx int, plainParent string) ([]ir.PreloadEntry, error) {
	var entries []ir.PreloadEntry
	for _, item := range items {
		switch v := item.(type) {
		case string, preKey:
			field, err := resolvePreloadKey(v)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ir.PreloadEntry{Field: field})

		case plainPre:
			field, err := resolvePreloadKey(v.key)
			if err != nil {
				return nil, err
			}
			children, err := p.collect(v.children, -1, field)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ir.PreloadEntry{Field: field, Children: children})

		case joinPre:
			field, err := resolvePreloadKey(v.key)
			if err != nil {
				return nil, err
			}
			if plainParent != "" {
				return nil, &PreloadParentError{Assoc: field, Parent: plainParent}
			}
			binding, err := p.resolveJoinBinding(field, v.bind)
			if err != nil {
				return nil, err
			}
			forest, ix := p.forest.Add(field, binding, parentIx)
			p.forest = forest
			nested, err := p.collect(v.children, ix, "")
			if err != nil {
				return nil, err
			}
			p.forest.Nodes[ix].Preloads = nested

		default:
			return nil, &ClauseError{Clause: "preload", Msg: "preload items must be association names or P/PJoin trees"}
		}
	}
	return entries, nil
}

func resolvePreloadKey(item any) (string, error) {
	switch v := item.(type) {
	case string:
		return v, nil
	case preKey:
		if s, ok := v.value.(string); ok {
			return s, nil
		}
		return "", &BadPreloadKeyError{Value: v.value}
	}
	return "", &BadPreloadKeyError{Value: item}
}

// resolveJoinBinding maps a PJoin binding argument to a positional index.
// A dynamic fragment must expand to a single bare binding reference.
func (p *preloader) resolveJoinBinding(assoc string, bind any) (int, error) {
	switch v := bind.(type) {
	case BindSel:
		return p.binds.resolve(v)
	case *Dynamic:
		e := newEscaper(kindOn, p.binds)
		expr, err := v.expand(e)
		if err != nil {
			return 0, err
		}
		if ref, ok := expr.(*ir.BindingRef); ok && ref.Field == "" {
			return ref.Binding, nil
		}
		return 0, &PreloadBindingError{Assoc: assoc, Count: countBindings(expr)}
	}
	return 0, &ClauseError{Clause: "preload", Msg: "join preload binding must be a binding selector or dynamic fragment"}
}

// countBindings counts distinct binding references in an expression, for
// diagnostics when a dynamic preload binding resolves to the wrong shape.
func countBindings(expr ir.Expr) int {
	seen := map[int]struct{}{}
	var walk func(ir.Expr)
	walk = func(e ir.Expr) {
		switch v := e.(type) {
		case *ir.BindingRef:
			seen[v.Binding] = struct{}{}
		case *ir.Op:
			for _, a := range v.Args {
				walk(a)
			}
		case *ir.Tuple:
			for _, el := range v.Elems {
				walk(el)
			}
		case *ir.List:
			for _, el := range v.Elems {
				walk(el)
			}
		case *ir.Fragment:
			for _, part := range v.Parts {
				if part.Expr != nil {
					walk(part.Expr)
				}
			}
		}
	}
	walk(expr)
	return len(seen)
}
