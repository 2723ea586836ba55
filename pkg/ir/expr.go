package ir

// ---------- Expression Nodes ----------

// Expr is the marker interface for escaped expression nodes.
// It is sealed to this package so that executors can type-switch
// exhaustively over the node kinds.
type Expr interface {
	exprNode() // Marker method to distinguish expressions
}

// Literal is a compile-time-resolvable value embedded directly in the IR.
// It consumes no parameter slot.
type Literal struct {
	Value any
}

func (*Literal) exprNode() {}

// Param is a placeholder for a runtime-interpolated value. Ix is zero-based
// within the owning clause's parameter list.
type Param struct {
	Ix   int
	Type ParamType
}

func (*Param) exprNode() {}

// BindingRef references a declared data source by positional index.
// Field is empty when the whole row is referenced.
type BindingRef struct {
	Binding int
	Field   string
}

func (*BindingRef) exprNode() {}

// Op is a named operator applied to ordered operands
// (comparisons, boolean connectives, aggregates, arithmetic).
type Op struct {
	Name string
	Args []Expr
}

func (*Op) exprNode() {}

// Operator names used by the builder. Executors may support more.
const (
	OpEq     = "=="
	OpNeq    = "!="
	OpLt     = "<"
	OpLte    = "<="
	OpGt     = ">"
	OpGte    = ">="
	OpAnd    = "and"
	OpOr     = "or"
	OpNot    = "not"
	OpIn     = "in"
	OpIsNil  = "is_nil"
	OpLike   = "like"
	OpILike  = "ilike"
	OpExists = "exists"
	OpCount  = "count"
	OpSum    = "sum"
	OpAvg    = "avg"
	OpMin    = "min"
	OpMax    = "max"
	OpOver   = "over"
)

// Tuple is an ordered fixed-arity grouping of expressions.
type Tuple struct {
	Elems []Expr
}

func (*Tuple) exprNode() {}

// List is an ordered variable-length collection of expressions.
type List struct {
	Elems []Expr
}

func (*List) exprNode() {}

// KV is one field of a MapExpr or StructExpr. Order is significant.
type KV struct {
	Key   string
	Value Expr
}

// MapExpr is a map-literal projection with insertion-ordered fields.
type MapExpr struct {
	Fields []KV
}

func (*MapExpr) exprNode() {}

// StructExpr is a struct-literal projection. Schema names the metadata
// source the struct is shaped after; it is informational and used in
// diagnostics.
type StructExpr struct {
	Schema string
	Fields []KV
}

func (*StructExpr) exprNode() {}

// Subquery references a nested query by index into the owning clause's
// subquery list. Subqueries are numbered independently of parameters.
type Subquery struct {
	Ix int
}

func (*Subquery) exprNode() {}

// SubqueryExpr is the clause-level record a Subquery node points at.
type SubqueryExpr struct {
	Query *Query
}

// FragmentPart is one segment of a Fragment: either literal text
// (Expr nil) or an embedded escaped expression (Text empty).
type FragmentPart struct {
	Text string
	Expr Expr
}

// Fragment is a raw-escape expression interleaving literal text with
// embedded sub-expressions. Embedded expressions contribute to the owning
// clause's parameter list in left-to-right order.
type Fragment struct {
	Parts []FragmentPart
}

func (*Fragment) exprNode() {}
