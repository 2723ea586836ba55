package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// Lock sets a row-locking clause from a bare keyword, such as
// "FOR UPDATE". The keyword is emitted verbatim.
func Lock(queryable any, keyword string) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if keyword == "" {
		return nil, &ClauseError{Clause: "lock", Msg: "missing lock keyword"}
	}
	return q.SetLock(ir.LockExpr{Keyword: keyword, Origin: origin()}), nil
}

// LockFrag sets a row-locking clause from a fragment, for lock forms that
// reference bindings, such as "FOR UPDATE OF ?".
func LockFrag(queryable any, binds BindList, frag Input) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	fr, ok := frag.(fragIn)
	if !ok {
		return nil, &ClauseError{Clause: "lock", Msg: "lock expression must be a fragment"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindLock, b)
	expr, err := e.escape(fr)
	if err != nil {
		return nil, err
	}
	return q.SetLock(ir.LockExpr{Frag: expr.(*ir.Fragment), Params: e.params, Origin: origin()}), nil
}
