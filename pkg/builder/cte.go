package builder

import (
	"fmt"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// CTEOpts carries per-CTE options.
type CTEOpts struct {
	Materialized ir.Materialized
}

// WithCTE attaches a named common table expression. The name is a string
// or an interpolated value resolving to one at apply time. The body is a
// queryable or a fragment. Re-attaching an existing name replaces the body
// but keeps the name's position, so recursive definitions can reference
// themselves before being finalized.
func WithCTE(queryable any, name any, body any, opts ...CTEOpts) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	resolved, err := cteName(name)
	if err != nil {
		return nil, err
	}

	cte := &ir.CTE{Name: resolved}
	for _, opt := range opts {
		cte.Materialized = opt.Materialized
	}

	switch v := body.(type) {
	case fragIn:
		e := newEscaper(kindCTE, &Bindings{query: q})
		expr, err := e.escape(v)
		if err != nil {
			return nil, err
		}
		cte.Frag = expr.(*ir.Fragment)
		cte.Params = e.params
	default:
		bq, err := toQuery(body)
		if err != nil {
			return nil, &ClauseError{Clause: "cte", Msg: fmt.Sprintf("body for %q must be a queryable or a fragment", resolved)}
		}
		cte.Query = bq
	}
	return q.PutCTE(cte), nil
}

// WithRecursive marks the query's CTE set as recursive.
func WithRecursive(queryable any, recursive bool) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	return q.SetRecursive(recursive), nil
}

// cteName accepts a literal name or an interpolated value, which must turn
// out to be a string.
func cteName(name any) (string, error) {
	switch v := name.(type) {
	case string:
		if v == "" {
			return "", &ClauseError{Clause: "cte", Msg: "name must not be empty"}
		}
		return v, nil
	case valIn:
		if s, ok := v.v.(string); ok && s != "" {
			return s, nil
		}
		return "", &ClauseError{Clause: "cte", Msg: fmt.Sprintf("interpolated name must be a non-empty string, got: %v", v.v)}
	}
	return "", &ClauseError{Clause: "cte", Msg: fmt.Sprintf("name must be a string, got: %T", name)}
}
