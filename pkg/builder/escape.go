package builder

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// ---------- Clause Kinds ----------

type clauseKind int

const (
	kindWhere clauseKind = iota
	kindHaving
	kindOn
	kindSelect
	kindGroupBy
	kindOrderBy
	kindDistinct
	kindWindow
	kindLimit
	kindOffset
	kindUpdate
	kindCTE
	kindLock
	kindFrom
)

var clauseNames = map[clauseKind]string{
	kindWhere:    "where",
	kindHaving:   "having",
	kindOn:       "join on",
	kindSelect:   "select",
	kindGroupBy:  "group_by",
	kindOrderBy:  "order_by",
	kindDistinct: "distinct",
	kindWindow:   "window",
	kindLimit:    "limit",
	kindOffset:   "offset",
	kindUpdate:   "update",
	kindCTE:      "cte",
	kindLock:     "lock",
	kindFrom:     "from",
}

func (k clauseKind) String() string { return clauseNames[k] }

// allowsSubquery reports whether the clause kind accepts nested subqueries.
// group_by/order_by/distinct/window/update forbid them as policy carried
// over from the source model. from/cte/lock/limit/offset forbid them
// because their clause records carry no subquery list, so an escaped
// marker would resolve to nothing. Both sets are enforced here and again
// after dynamic expansion.
func (k clauseKind) allowsSubquery() bool {
	switch k {
	case kindWhere, kindHaving, kindOn, kindSelect:
		return true
	}
	return false
}

// ---------- Escaper ----------

// escaper walks one clause's raw expression, classifying every node as
// literal, binding reference, or parameter, and accumulating the clause's
// ordered parameter and subquery lists.
type escaper struct {
	kind  clauseKind
	binds *Bindings

	// dynamic marks escaping inside a dynamic fragment build: nested
	// dynamics are captured as parameter values instead of being expanded.
	dynamic bool

	// kwBinding is the binding targeted by non-nested keyword-shorthand
	// pairs. Zero except in join ON clauses, where the shorthand
	// constrains the joined binding.
	kwBinding int

	params     []ir.TaggedValue
	subqueries []*ir.SubqueryExpr
	take       map[int]ir.TakeSpec
}

func newEscaper(kind clauseKind, binds *Bindings) *escaper {
	return &escaper{kind: kind, binds: binds}
}

// coerce normalizes a raw argument to an Input node. Inputs pass through,
// dynamics get their wrapper, everything else is an early-bound literal.
func coerce(v any) Input {
	switch t := v.(type) {
	case Input:
		return t
	case *Dynamic:
		return dynIn{d: t}
	default:
		return litIn{v: v}
	}
}

func (e *escaper) escape(raw any) (ir.Expr, error) {
	switch v := coerce(raw).(type) {
	case litIn:
		return &ir.Literal{Value: v.v}, nil

	case valIn:
		return e.escapeVal(v.v, ir.AnyType{})

	case colIn:
		ix, err := e.binds.resolve(v.bind)
		if err != nil {
			return nil, err
		}
		return &ir.BindingRef{Binding: ix, Field: v.field}, nil

	case rowIn:
		ix, err := e.binds.resolve(v.bind)
		if err != nil {
			return nil, err
		}
		return &ir.BindingRef{Binding: ix}, nil

	case atomIn:
		return &ir.BindingRef{Binding: 0, Field: v.field}, nil

	case opIn:
		return e.escapeOp(v)

	case fragIn:
		return e.escapeFragment(v)

	case subqIn:
		return e.escapeSubquery(v.q)

	case tupleIn:
		elems, err := e.escapeAll(v.elems)
		if err != nil {
			return nil, err
		}
		return &ir.Tuple{Elems: elems}, nil

	case listIn:
		elems, err := e.escapeAll(v.elems)
		if err != nil {
			return nil, err
		}
		return &ir.List{Elems: elems}, nil

	case mapIn:
		fields, err := e.escapePairs(v.pairs)
		if err != nil {
			return nil, err
		}
		return &ir.MapExpr{Fields: fields}, nil

	case structIn:
		fields, err := e.escapePairs(v.pairs)
		if err != nil {
			return nil, err
		}
		return &ir.StructExpr{Schema: v.schema, Fields: fields}, nil

	case takeIn:
		return e.escapeTake(v)

	case dynIn:
		return e.escapeVal(v.d, ir.AnyType{})

	case KW:
		return nil, &ClauseError{Clause: e.kind.String(), Msg: "keyword list is not valid in expression position"}
	}
	return nil, &ClauseError{Clause: e.kind.String(), Msg: fmt.Sprintf("unrecognized expression %v", raw)}
}

// escapeVal appends a parameter with the next positional index, or expands
// a dynamic fragment in place when escaping clause content directly.
func (e *escaper) escapeVal(v any, hint ir.ParamType) (ir.Expr, error) {
	if d, ok := v.(*Dynamic); ok {
		if e.dynamic {
			ix := len(e.params)
			e.params = append(e.params, ir.TaggedValue{Value: d, Type: ir.AnyType{}})
			return &ir.Param{Ix: ix, Type: ir.AnyType{}}, nil
		}
		return d.expand(e)
	}
	ix := len(e.params)
	e.params = append(e.params, ir.TaggedValue{Value: v, Type: hint})
	return &ir.Param{Ix: ix, Type: hint}, nil
}

func (e *escaper) escapeSubquery(q *ir.Query) (ir.Expr, error) {
	if !e.kind.allowsSubquery() {
		return nil, &SubqueryError{Clause: e.kind.String()}
	}
	ix := len(e.subqueries)
	e.subqueries = append(e.subqueries, &ir.SubqueryExpr{Query: q})
	return &ir.Subquery{Ix: ix}, nil
}

func (e *escaper) escapeAll(args []any) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(args))
	for i, arg := range args {
		expr, err := e.escape(arg)
		if err != nil {
			return nil, err
		}
		out[i] = expr
	}
	return out, nil
}

func (e *escaper) escapePairs(pairs []Pair) ([]ir.KV, error) {
	out := make([]ir.KV, len(pairs))
	for i, p := range pairs {
		expr, err := e.escape(p.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ir.KV{Key: p.Key, Value: expr}
	}
	return out, nil
}

func (e *escaper) escapeTake(v takeIn) (ir.Expr, error) {
	if e.kind != kindSelect {
		return nil, &ClauseError{Clause: e.kind.String(), Msg: "field subsets are only valid in select"}
	}
	ix, err := e.binds.resolve(v.bind)
	if err != nil {
		return nil, err
	}
	if e.take == nil {
		e.take = map[int]ir.TakeSpec{}
	}
	if old, ok := e.take[ix]; ok {
		merged, err := mergeTake(ix, old, ir.TakeSpec{Kind: v.kind, Fields: v.fields})
		if err != nil {
			return nil, err
		}
		e.take[ix] = merged
	} else {
		e.take[ix] = ir.TakeSpec{Kind: v.kind, Fields: append([]string(nil), v.fields...)}
	}
	return &ir.BindingRef{Binding: ix}, nil
}

// ---------- Operators ----------

var comparisonOps = map[string]bool{
	ir.OpEq:  true,
	ir.OpNeq: true,
	ir.OpLt:  true,
	ir.OpLte: true,
	ir.OpGt:  true,
	ir.OpGte: true,
}

func (e *escaper) escapeOp(v opIn) (ir.Expr, error) {
	switch {
	case comparisonOps[v.name]:
		return e.escapeComparison(v)
	case v.name == ir.OpIn:
		return e.escapeIn(v)
	}
	args, err := e.escapeAll(v.args)
	if err != nil {
		return nil, err
	}
	return &ir.Op{Name: v.name, Args: args}, nil
}

// escapeComparison types each late-bound side after the field referenced on
// the other side, and rejects bare nil operands.
func (e *escaper) escapeComparison(v opIn) (ir.Expr, error) {
	left, right := v.args[0], v.args[1]
	if isRawNil(left) || isRawNil(right) {
		return nil, &NilComparisonError{Context: describeOperand(left, right)}
	}
	leftExpr, err := e.escapeOperand(left, e.hintFor(right))
	if err != nil {
		return nil, err
	}
	rightExpr, err := e.escapeOperand(right, e.hintFor(left))
	if err != nil {
		return nil, err
	}
	return &ir.Op{Name: v.name, Args: []ir.Expr{leftExpr, rightExpr}}, nil
}

// escapeIn types the right-hand side as a member list of the left-hand
// field.
func (e *escaper) escapeIn(v opIn) (ir.Expr, error) {
	left, right := v.args[0], v.args[1]
	if isRawNil(right) {
		return nil, &NilComparisonError{Context: describeOperand(left, right)}
	}
	leftExpr, err := e.escape(left)
	if err != nil {
		return nil, err
	}
	hint := ir.ParamType(ir.AnyType{})
	if ft, ok := e.fieldHint(left); ok {
		hint = ir.ElemOf{Elem: ft}
	}
	rightExpr, err := e.escapeOperand(right, hint)
	if err != nil {
		return nil, err
	}
	return &ir.Op{Name: ir.OpIn, Args: []ir.Expr{leftExpr, rightExpr}}, nil
}

// escapeOperand escapes one operand, applying hint if the operand is a
// late-bound value.
func (e *escaper) escapeOperand(arg any, hint ir.ParamType) (ir.Expr, error) {
	if v, ok := coerce(arg).(valIn); ok {
		return e.escapeVal(v.v, hint)
	}
	return e.escape(arg)
}

// hintFor derives the parameter type implied by the opposite operand of a
// comparison.
func (e *escaper) hintFor(arg any) ir.ParamType {
	if ft, ok := e.fieldHint(arg); ok {
		return ft
	}
	return ir.AnyType{}
}

func (e *escaper) fieldHint(arg any) (ir.ParamType, bool) {
	col, ok := coerce(arg).(colIn)
	if !ok {
		return nil, false
	}
	ix, err := e.binds.resolve(col.bind)
	if err != nil {
		return nil, false
	}
	return ir.FieldType{Binding: ix, Field: col.field}, true
}

func isRawNil(arg any) bool {
	switch v := coerce(arg).(type) {
	case litIn:
		return v.v == nil
	case valIn:
		return v.v == nil
	}
	return false
}

func describeOperand(left, right any) string {
	for _, side := range []any{left, right} {
		if col, ok := coerce(side).(colIn); ok {
			return fmt.Sprintf("field %q", col.field)
		}
	}
	return "comparison"
}

// ---------- Fragments ----------

// escapeFragment interleaves the format's literal segments with the escaped
// arguments. Each "?" consumes one argument, left to right, all feeding the
// same parameter list.
func (e *escaper) escapeFragment(v fragIn) (ir.Expr, error) {
	segments := strings.Split(v.format, "?")
	if len(segments)-1 != len(v.args) {
		return nil, &ClauseError{
			Clause: e.kind.String(),
			Msg:    fmt.Sprintf("fragment %q expects %d arguments, got %d", v.format, len(segments)-1, len(v.args)),
		}
	}
	parts := make([]ir.FragmentPart, 0, 2*len(segments)-1)
	for i, seg := range segments {
		if seg != "" {
			parts = append(parts, ir.FragmentPart{Text: seg})
		}
		if i < len(v.args) {
			expr, err := e.escape(v.args[i])
			if err != nil {
				return nil, err
			}
			parts = append(parts, ir.FragmentPart{Expr: expr})
		}
	}
	return &ir.Fragment{Parts: parts}, nil
}

// ---------- Keyword Shorthand ----------

// escapeKW turns keyword shorthand into AND-combined equality comparisons.
// A pair whose value is itself a KW targets the binding named by the key
// (where(p: [id: 5])); any other pair targets a field of the clause's
// default binding: the joined binding in an ON clause, binding 0 elsewhere.
// Values become late-bound parameters; nil values are rejected.
func (e *escaper) escapeKW(kw KW) (ir.Expr, error) {
	if len(kw) == 0 {
		return nil, &ClauseError{Clause: e.kind.String(), Msg: "empty keyword list"}
	}
	var root ir.Expr
	for _, pair := range kw {
		var cond ir.Expr
		var err error
		if nested, ok := pair.Value.(KW); ok {
			ix, rerr := e.binds.resolve(Bind(pair.Key))
			if rerr != nil {
				return nil, rerr
			}
			cond, err = e.escapeFieldKW(ix, nested)
		} else {
			cond, err = e.escapeFieldPair(e.kwBinding, pair)
		}
		if err != nil {
			return nil, err
		}
		root = andCombine(root, cond)
	}
	return root, nil
}

// escapeFieldKW AND-combines field/value pairs against one binding.
func (e *escaper) escapeFieldKW(binding int, kw KW) (ir.Expr, error) {
	if len(kw) == 0 {
		return nil, &ClauseError{Clause: e.kind.String(), Msg: "empty keyword list"}
	}
	var root ir.Expr
	for _, pair := range kw {
		cond, err := e.escapeFieldPair(binding, pair)
		if err != nil {
			return nil, err
		}
		root = andCombine(root, cond)
	}
	return root, nil
}

func (e *escaper) escapeFieldPair(binding int, pair Pair) (ir.Expr, error) {
	if pair.Value == nil {
		return nil, &NilComparisonError{Context: fmt.Sprintf("field %q", pair.Key)}
	}
	left := &ir.BindingRef{Binding: binding, Field: pair.Key}
	right, err := e.escapeOperand(asValue(pair.Value), ir.FieldType{Binding: binding, Field: pair.Key})
	if err != nil {
		return nil, err
	}
	return &ir.Op{Name: ir.OpEq, Args: []ir.Expr{left, right}}, nil
}

func andCombine(root, cond ir.Expr) ir.Expr {
	if root == nil {
		return cond
	}
	return &ir.Op{Name: ir.OpAnd, Args: []ir.Expr{root, cond}}
}

// asValue treats bare keyword-shorthand values as late-bound parameters,
// leaving explicit Input nodes alone.
func asValue(v any) any {
	switch v.(type) {
	case Input, *Dynamic:
		return v
	default:
		return Val(v)
	}
}
