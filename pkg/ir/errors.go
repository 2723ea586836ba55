package ir

import (
	"errors"
	"fmt"
)

// ErrOnlyOneSelect is returned when a second plain select is applied to a
// query that already has one.
var ErrOnlyOneSelect = errors.New("only one select expression is allowed in query")

// DuplicateAliasError reports a named alias that collides with one already
// registered on the query.
type DuplicateAliasError struct {
	Name string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("alias %q already exists", e.Name)
}

// DuplicateWindowError reports a window name applied twice.
type DuplicateWindowError struct {
	Name string
}

func (e *DuplicateWindowError) Error() string {
	return fmt.Sprintf("window with name %q is already defined", e.Name)
}
