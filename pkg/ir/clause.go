package ir

// ---------- Clause Wrappers ----------
//
// A clause wrapper couples an escaped expression with its own zero-based
// parameter list, any attached subqueries, and the provenance of the call
// site that built it. Clauses are immutable value objects; rebuilding a
// clause replaces it wholesale.

// CombineOp relates a boolean clause to the clause before it.
type CombineOp int

// Combine operators for wheres/havings.
const (
	CombineAnd CombineOp = iota
	CombineOr
)

// String returns "and" or "or".
func (c CombineOp) String() string {
	if c == CombineOr {
		return "or"
	}
	return "and"
}

// BooleanExpr is a where/having/join-on condition. Op states how the
// condition combines with the preceding one in the clause list.
type BooleanExpr struct {
	Op         CombineOp
	Expr       Expr
	Params     []TaggedValue
	Subqueries []*SubqueryExpr
	Origin     Origin
}

// QueryExpr is a generic expression-list clause (group_by).
type QueryExpr struct {
	Exprs  []Expr
	Params []TaggedValue
	Origin Origin
}

// OrderByItem pairs a direction with an expression.
type OrderByItem struct {
	Dir  Direction
	Expr Expr
}

// OrderByExpr is one order_by clause; items keep call order.
type OrderByExpr struct {
	Items  []OrderByItem
	Params []TaggedValue
	Origin Origin
}

// DistinctExpr is a distinct clause: either a plain boolean or a list of
// expressions (DISTINCT ON).
type DistinctExpr struct {
	Value  bool
	Exprs  []Expr
	Params []TaggedValue
	Origin Origin
}

// TakeKind classifies a field-subset projection.
type TakeKind int

// Take kinds. TakeAny merges with either of the other two.
const (
	TakeAny TakeKind = iota
	TakeMap
	TakeStruct
)

// String returns the take kind's name.
func (k TakeKind) String() string {
	switch k {
	case TakeMap:
		return "map"
	case TakeStruct:
		return "struct"
	}
	return "any"
}

// TakeSpec is the field subset requested for one binding.
type TakeSpec struct {
	Kind   TakeKind
	Fields []string
}

// SelectExpr is the single projection clause of a query. Take maps binding
// index to the field subset requested for that binding.
type SelectExpr struct {
	Expr       Expr
	Params     []TaggedValue
	Subqueries []*SubqueryExpr
	Take       map[int]TakeSpec
	Origin     Origin
}

// ---------- Sources and Joins ----------

// JoinSource is a data source: a table name, a schema-backed source, a
// subquery, a fragment, an interpolated query, or an association traversal.
type JoinSource interface {
	joinSource() // Marker method - seals interface to this package
}

// TableSource names a table directly.
type TableSource struct {
	Table string
}

func (*TableSource) joinSource() {}

// SchemaSource references a source through schema metadata. Source is the
// resolved table name, Schema the metadata name, Prefix an optional
// namespace override.
type SchemaSource struct {
	Source string
	Schema string
	Prefix string
}

func (*SchemaSource) joinSource() {}

// SubquerySource uses a nested query as the source.
type SubquerySource struct {
	Sub *SubqueryExpr
}

func (*SubquerySource) joinSource() {}

// FragmentSource uses a raw fragment as the source. Its parameters live on
// the owning FromExpr or JoinExpr.
type FragmentSource struct {
	Frag *Fragment
}

func (*FragmentSource) joinSource() {}

// AssocSource traverses an association Field declared on Binding's schema.
type AssocSource struct {
	Binding int
	Field   string
}

func (*AssocSource) joinSource() {}

// FromExpr is the first data source of a query (binding index 0).
type FromExpr struct {
	Source JoinSource
	As     string
	Prefix string
	Hints  []string
	Params []TaggedValue
	Origin Origin
}

// JoinExpr is one join. Its binding index is its position in Query.Joins
// plus one. Params carries fragment-source parameters; the ON condition
// keeps its own list.
type JoinExpr struct {
	Qual   JoinQual
	Source JoinSource
	On     *BooleanExpr
	As     string
	Prefix string
	Hints  []string
	Params []TaggedValue
	Origin Origin
}

// ---------- Remaining Clauses ----------

// LimitExpr is a limit or offset clause. WithTies only applies to limit.
type LimitExpr struct {
	Expr     Expr
	Params   []TaggedValue
	WithTies bool
	Origin   Origin
}

// LockExpr is a row-locking clause: a bare keyword or a fragment.
type LockExpr struct {
	Keyword string
	Frag    *Fragment
	Params  []TaggedValue
	Origin  Origin
}

// UpdateKind is the kind of one update operation.
type UpdateKind int

// Update operation kinds.
const (
	UpdateSet UpdateKind = iota
	UpdateInc
	UpdatePush
	UpdatePull
)

// String returns the update kind's keyword.
func (k UpdateKind) String() string {
	switch k {
	case UpdateInc:
		return "inc"
	case UpdatePush:
		return "push"
	case UpdatePull:
		return "pull"
	}
	return "set"
}

// UpdateOp is one update operation over a keyword list of fields.
type UpdateOp struct {
	Kind   UpdateKind
	Fields []KV
}

// UpdateExpr is one update clause.
type UpdateExpr struct {
	Ops    []UpdateOp
	Params []TaggedValue
	Origin Origin
}

// Combination wraps another full query under a set operation.
type Combination struct {
	Kind  CombinationKind
	Query *Query
}

// Materialized is the tri-state CTE materialization hint.
type Materialized int

// Materialization hints.
const (
	MaterializedDefault Materialized = iota
	MaterializedYes
	MaterializedNo
)

// CTE is one named common table expression. Exactly one of Query and Frag
// is set.
type CTE struct {
	Name         string
	Query        *Query
	Frag         *Fragment
	Params       []TaggedValue
	Materialized Materialized
}

// WithExpr is the ordered, keyed CTE set of a query.
type WithExpr struct {
	Recursive bool
	CTEs      *Keystore[*CTE]
}

// WindowExpr is one named window definition.
type WindowExpr struct {
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *Fragment
	Params      []TaggedValue
	Origin      Origin
}
