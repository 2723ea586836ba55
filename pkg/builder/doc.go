// Package builder turns raw, user-supplied expressions into the query IR.
//
// It contains:
//   - The input expression language (Input constructors: Field, Val, Eq, ...)
//   - The shared escaping primitive (expression walk, parameter indexing)
//   - The binding resolver (positional names and named aliases)
//   - One builder per clause kind (where, select, join, order_by, ...)
//   - The dynamic-fragment compositor (build separately, splice later)
//   - The select-merge resolver
//
// Every builder is pure: it takes a *ir.Query and returns a new one, or an
// error that leaves the input query untouched. Independent queries can be
// built concurrently without coordination.
//
// Two entry paths feed every builder: typed Input trees (the early-bound
// path) and plain runtime values (the late-bound path). Both funnel into
// the same escape function and produce identical IR.
package builder
