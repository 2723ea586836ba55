// Package ir defines the query intermediate representation shared by the
// builder and by downstream executors.
//
// This package contains:
//   - Expression nodes (Expr and its implementations)
//   - Clause wrappers (BooleanExpr, SelectExpr, JoinExpr, ...)
//   - The Query aggregate and its apply contract
//   - Parameter type tags (ParamType)
//
// The Golden Rule: pkg/ir imports ONLY the standard library.
// All other packages depend on ir, not the reverse.
//
// Every value in this package is treated as immutable once constructed.
// The apply methods on Query return a fresh Query and never modify the
// receiver; a failed apply leaves the original query usable.
package ir
