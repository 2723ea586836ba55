package builder

import "github.com/leapstack-labs/querykit/pkg/ir"

// ---------- Input Expression Language ----------
//
// Input trees are what clause builders accept before escaping. A bare Go
// value in an operand position is an early-bound literal; Val marks a
// late-bound parameter. In field-list clauses (group_by, order_by,
// distinct, window partitions) a bare string is a field of binding 0.

// Input is a raw expression node accepted by clause builders.
type Input interface {
	inputNode() // Marker method - seals interface to this package
}

// BindSel selects a binding: positionally by call-site name, or through a
// registered query alias.
type BindSel struct {
	name  string
	alias bool
}

// Bind selects a binding by its call-site positional name.
func Bind(name string) BindSel { return BindSel{name: name} }

// Alias selects a binding through the query's named-alias table.
func Alias(name string) BindSel { return BindSel{name: name, alias: true} }

// BindList is the ordered list of call-site binding names. The wildcard "_"
// declares a position without a resolvable name.
type BindList []string

// Wildcard is the unresolvable placeholder binding name.
const Wildcard = "_"

// Binds builds a BindList.
func Binds(names ...string) BindList { return names }

// Pair is one ordered key/value entry of a KW list or map constructor.
type Pair struct {
	Key   string
	Value any
}

// KW is keyword-list shorthand: ordered field/value pairs. In where/having
// it AND-combines equality comparisons; values are late-bound parameters.
type KW []Pair

func (KW) inputNode() {}

type litIn struct{ v any }

func (litIn) inputNode() {}

// Lit embeds an early-bound literal directly in the IR. It consumes no
// parameter slot.
func Lit(v any) Input { return litIn{v: v} }

type valIn struct{ v any }

func (valIn) inputNode() {}

// Val marks a late-bound, runtime-interpolated value. It becomes a
// parameter placeholder with the next positional index.
func Val(v any) Input { return valIn{v: v} }

type colIn struct {
	bind  BindSel
	field string
}

func (colIn) inputNode() {}

// Field references a field of a declared binding.
func Field(bind BindSel, field string) Input { return colIn{bind: bind, field: field} }

type rowIn struct{ bind BindSel }

func (rowIn) inputNode() {}

// Row references a binding's whole row.
func Row(bind BindSel) Input { return rowIn{bind: bind} }

type opIn struct {
	name string
	args []any
}

func (opIn) inputNode() {}

// Eq compares two operands for equality. Comparing against a bare nil is
// rejected; use IsNil.
func Eq(x, y any) Input { return opIn{name: ir.OpEq, args: []any{x, y}} }

// Neq compares two operands for inequality.
func Neq(x, y any) Input { return opIn{name: ir.OpNeq, args: []any{x, y}} }

// Lt is the < comparison.
func Lt(x, y any) Input { return opIn{name: ir.OpLt, args: []any{x, y}} }

// Lte is the <= comparison.
func Lte(x, y any) Input { return opIn{name: ir.OpLte, args: []any{x, y}} }

// Gt is the > comparison.
func Gt(x, y any) Input { return opIn{name: ir.OpGt, args: []any{x, y}} }

// Gte is the >= comparison.
func Gte(x, y any) Input { return opIn{name: ir.OpGte, args: []any{x, y}} }

// And combines conditions conjunctively.
func And(conds ...any) Input { return opIn{name: ir.OpAnd, args: conds} }

// Or combines conditions disjunctively.
func Or(conds ...any) Input { return opIn{name: ir.OpOr, args: conds} }

// Not negates a condition.
func Not(x any) Input { return opIn{name: ir.OpNot, args: []any{x}} }

// In tests membership of x in list. The right-hand side may be a literal
// list, an interpolated slice, or a subquery.
func In(x, list any) Input { return opIn{name: ir.OpIn, args: []any{x, list}} }

// IsNil tests a value for null. This is the only supported null test;
// Eq(x, nil) is rejected.
func IsNil(x any) Input { return opIn{name: ir.OpIsNil, args: []any{x}} }

// Like is the LIKE pattern match.
func Like(x, pattern any) Input { return opIn{name: ir.OpLike, args: []any{x, pattern}} }

// ILike is the case-insensitive LIKE pattern match.
func ILike(x, pattern any) Input { return opIn{name: ir.OpILike, args: []any{x, pattern}} }

// Count aggregates a count; with no argument it counts rows.
func Count(args ...any) Input { return opIn{name: ir.OpCount, args: args} }

// Sum aggregates a sum.
func Sum(x any) Input { return opIn{name: ir.OpSum, args: []any{x}} }

// Avg aggregates an average.
func Avg(x any) Input { return opIn{name: ir.OpAvg, args: []any{x}} }

// Min aggregates a minimum.
func Min(x any) Input { return opIn{name: ir.OpMin, args: []any{x}} }

// Max aggregates a maximum.
func Max(x any) Input { return opIn{name: ir.OpMax, args: []any{x}} }

// Over applies a window function over a named window declared on the query.
func Over(fn Input, window string) Input {
	return opIn{name: ir.OpOver, args: []any{fn, Lit(window)}}
}

type fragIn struct {
	format string
	args   []any
}

func (fragIn) inputNode() {}

// Frag is a raw fragment. Each "?" in format is replaced by the
// corresponding argument, escaped in left-to-right order.
func Frag(format string, args ...any) Input { return fragIn{format: format, args: args} }

type subqIn struct{ q *ir.Query }

func (subqIn) inputNode() {}

// Subquery embeds a full query as a nested subquery. Clauses that forbid
// subqueries reject it, including when it arrives through a spliced
// dynamic fragment.
func Subquery(q *ir.Query) Input { return subqIn{q: q} }

// Exists tests a subquery for non-emptiness.
func Exists(q *ir.Query) Input { return opIn{name: ir.OpExists, args: []any{Subquery(q)}} }

type tupleIn struct{ elems []any }

func (tupleIn) inputNode() {}

// TupleOf groups expressions into a fixed-arity tuple.
func TupleOf(elems ...any) Input { return tupleIn{elems: elems} }

type listIn struct{ elems []any }

func (listIn) inputNode() {}

// ListOf groups expressions into a list.
func ListOf(elems ...any) Input { return listIn{elems: elems} }

type mapIn struct{ pairs []Pair }

func (mapIn) inputNode() {}

// MapOf builds a map-literal projection with ordered fields.
func MapOf(pairs ...Pair) Input { return mapIn{pairs: pairs} }

type structIn struct {
	schema string
	pairs  []Pair
}

func (structIn) inputNode() {}

// StructOf builds a struct-literal projection shaped after the named
// schema.
func StructOf(schema string, pairs ...Pair) Input { return structIn{schema: schema, pairs: pairs} }

type takeIn struct {
	bind   BindSel
	kind   ir.TakeKind
	fields []string
}

func (takeIn) inputNode() {}

// Take projects a field subset of a binding.
func Take(bind BindSel, fields ...string) Input {
	return takeIn{bind: bind, kind: ir.TakeAny, fields: fields}
}

// TakeMap projects a field subset of a binding as a map.
func TakeMap(bind BindSel, fields ...string) Input {
	return takeIn{bind: bind, kind: ir.TakeMap, fields: fields}
}

// TakeStruct projects a field subset of a binding as a struct.
func TakeStruct(bind BindSel, fields ...string) Input {
	return takeIn{bind: bind, kind: ir.TakeStruct, fields: fields}
}

type dynIn struct{ d *Dynamic }

func (dynIn) inputNode() {}

// atomIn is a bare field name targeting binding 0, produced by the
// field-list clause shorthand.
type atomIn struct{ field string }

func (atomIn) inputNode() {}
