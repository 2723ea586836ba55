package builder

import (
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/querykit/pkg/ir"
)

// Comment attaches a comment emitted alongside the query. Comments are
// rendered inside block-comment delimiters, so the closing sequence is
// rejected.
func Comment(queryable any, text string) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if strings.Contains(text, "*/") {
		return nil, &ClauseError{Clause: "comment", Msg: "comment must not contain the */ sequence"}
	}
	return q.AppendComment(text), nil
}

// TraceComment attaches a comment carrying a fresh request identifier, for
// correlating emitted queries with application logs.
func TraceComment(queryable any) (*ir.Query, string, error) {
	id := uuid.NewString()
	q, err := Comment(queryable, "request_id:"+id)
	if err != nil {
		return nil, "", err
	}
	return q, id, nil
}
