package builder

import (
	"log/slog"
	"runtime"

	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/leapstack-labs/querykit/pkg/schema"
)

// logger receives builder diagnostics (currently only the default join ON
// warning). Discarded unless SetLogger is called; set it during program
// initialization, before queries are built concurrently.
var logger = slog.New(slog.DiscardHandler)

// SetLogger installs the logger used for builder diagnostics.
func SetLogger(l *slog.Logger) {
	logger = l
}

// toQuery normalizes a queryable to a Query. Queries pass through; table
// names and schemas become a fresh query with that source as binding 0.
// Every clause builder coerces through here before applying its clause.
func toQuery(queryable any) (*ir.Query, error) {
	switch v := queryable.(type) {
	case *ir.Query:
		return v, nil
	case string, schema.Metadata:
		return From(v)
	}
	return nil, &ClauseError{Clause: "from", Msg: "expected a query, table name, or schema"}
}

// origin records the file/line of the builder's caller for diagnostics.
func origin() ir.Origin {
	if _, file, line, ok := runtime.Caller(2); ok {
		return ir.Origin{File: file, Line: line}
	}
	return ir.Origin{}
}
