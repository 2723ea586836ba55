package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Bindings resolves symbolic binding names used by a clause to positional
// indices. Positional names come from the call site and cover the query's
// sources left to right; named aliases resolve through the query's alias
// table. The wildcard "_" declares a position but never resolves by name.
type Bindings struct {
	names []string
	// pinned maps names to fixed indices outside the positional list, used
	// for a join's own binding before the join is appended.
	pinned map[string]int
	query  *ir.Query
}

// newBindings validates a call-site binding list against a query. The list
// may be shorter than the query's sources (trailing sources stay unnamed)
// but never longer.
func newBindings(q *ir.Query, names BindList) (*Bindings, error) {
	if n := q.BindingCount(); len(names) > n {
		return nil, &BindingCountError{Given: len(names), Have: n}
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == Wildcard {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, &DuplicateBindingError{Name: name}
		}
		seen[name] = struct{}{}
	}
	return &Bindings{names: names, query: q}, nil
}

// resolve maps a binding selector to its positional index.
func (b *Bindings) resolve(sel BindSel) (int, error) {
	if sel.alias {
		if ix, ok := b.query.AliasIndex(sel.name); ok {
			return ix, nil
		}
		return 0, &UnknownBindingError{Name: sel.name, Alias: true}
	}
	if sel.name != Wildcard {
		for ix, name := range b.names {
			if name == sel.name {
				return ix, nil
			}
		}
		if ix, ok := b.pinned[sel.name]; ok {
			return ix, nil
		}
	}
	return 0, &UnknownBindingError{Name: sel.name}
}
