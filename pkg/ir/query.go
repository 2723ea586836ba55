package ir

// Query is the aggregate a builder accumulates clauses into and the value
// handed to the executor once finalized.
//
// Binding indices are dense, zero-based, and assigned in declaration order:
// the from source is binding 0 and each join takes the next index. Aliases
// maps symbolic names to those indices; every alias is unique.
type Query struct {
	From  *FromExpr
	Joins []JoinExpr

	Aliases map[string]int

	Wheres   []BooleanExpr
	Havings  []BooleanExpr
	GroupBys []QueryExpr
	OrderBys []OrderByExpr
	Distinct *DistinctExpr

	Select *SelectExpr

	Limit  *LimitExpr
	Offset *LimitExpr
	Lock   *LockExpr

	Preloads []PreloadEntry
	Assocs   AssocForest

	Updates      []UpdateExpr
	Combinations []Combination
	With         *WithExpr
	Windows      *Keystore[*WindowExpr]

	Comments []string
}

// BindingCount returns the number of declared data sources: the from source
// plus one per join. Known only at evaluation time for queries that were
// passed around as opaque values, which is why callers go through this
// method instead of a stored count.
func (q *Query) BindingCount() int {
	if q == nil {
		return 0
	}
	n := len(q.Joins)
	if q.From != nil {
		n++
	}
	return n
}

// AliasIndex resolves a named alias to its binding index.
func (q *Query) AliasIndex(name string) (int, bool) {
	ix, ok := q.Aliases[name]
	return ix, ok
}

// clone returns a shallow copy. Slices and maps stay shared; every apply
// method replaces them through clip-append or explicit copies, never in
// place.
func (q *Query) clone() *Query {
	nq := *q
	return &nq
}

// clip reslices s to full capacity so a subsequent append always allocates
// instead of writing into a backing array shared with another Query.
func clip[T any](s []T) []T {
	return s[:len(s):len(s)]
}
