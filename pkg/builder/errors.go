package builder

import (
	"fmt"
)

// UnknownBindingError reports a reference to a binding that was never
// declared at the call site or registered as an alias.
type UnknownBindingError struct {
	Name  string
	Alias bool
}

func (e *UnknownBindingError) Error() string {
	if e.Alias {
		return fmt.Sprintf("could not find named binding %q in query", e.Name)
	}
	return fmt.Sprintf("unbound variable %q in query", e.Name)
}

// DuplicateBindingError reports the same symbolic name declared twice in
// one binding list.
type DuplicateBindingError struct {
	Name string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("variable %q is bound twice", e.Name)
}

// BindingCountError reports a binding list longer than the query's declared
// sources.
type BindingCountError struct {
	Given int
	Have  int
}

func (e *BindingCountError) Error() string {
	return fmt.Sprintf("query has %d bindings but %d were given", e.Have, e.Given)
}

// NilComparisonError reports a bare nil used in an equality or keyword
// shorthand.
type NilComparisonError struct {
	Context string
}

func (e *NilComparisonError) Error() string {
	return fmt.Sprintf("nil given for %s; comparison with nil is forbidden as it is unsafe, use IsNil instead", e.Context)
}

// SubqueryError reports a subquery escaped inside a clause that forbids
// them, directly or through a spliced dynamic fragment.
type SubqueryError struct {
	Clause string
}

func (e *SubqueryError) Error() string {
	return fmt.Sprintf("subqueries are not allowed in %s expressions", e.Clause)
}

// ClauseError reports a malformed clause shape.
type ClauseError struct {
	Clause string
	Msg    string
}

func (e *ClauseError) Error() string {
	return fmt.Sprintf("malformed %s clause: %s", e.Clause, e.Msg)
}

// MergeError reports two select expressions with incompatible shapes.
type MergeError struct {
	OldShape string
	NewShape string
	Query    string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot select_merge %s into %s in query: %s", e.NewShape, e.OldShape, e.Query)
}

// TakeKindError reports field-subset projections of disagreeing kinds
// requested for the same binding.
type TakeKindError struct {
	Binding int
	Old     string
	New     string
}

func (e *TakeKindError) Error() string {
	return fmt.Sprintf("cannot select_merge because binding %d is being projected as %s in one select and as %s in another", e.Binding, e.Old, e.New)
}

// BadDirectionError reports an interpolated order direction that is not a
// recognized direction tag. Raised at runtime resolution.
type BadDirectionError struct {
	Value any
}

func (e *BadDirectionError) Error() string {
	return fmt.Sprintf("expected a direction tag (asc, desc, asc_nulls_first, asc_nulls_last, desc_nulls_first, desc_nulls_last), got: %v", e.Value)
}

// BadPreloadKeyError reports an interpolated preload key that is not a
// string. Raised at runtime resolution.
type BadPreloadKeyError struct {
	Value any
}

func (e *BadPreloadKeyError) Error() string {
	return fmt.Sprintf("expected a string association name in preload, got: %v", e.Value)
}

// PreloadBindingError reports a preload join fragment that resolved to
// zero or multiple bindings instead of exactly one.
type PreloadBindingError struct {
	Assoc string
	Count int
}

func (e *PreloadBindingError) Error() string {
	return fmt.Sprintf("preload join for %q must resolve to exactly one binding, resolved to %d", e.Assoc, e.Count)
}

// PreloadParentError reports a join-based preload nested under a plain
// preload node.
type PreloadParentError struct {
	Assoc  string
	Parent string
}

func (e *PreloadParentError) Error() string {
	return fmt.Sprintf("cannot preload join association %q because parent preload %q is not a join association", e.Assoc, e.Parent)
}
