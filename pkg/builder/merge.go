package builder

import (
	"reflect"

	"github.com/leapstack-labs/querykit/pkg/format"
	"github.com/leapstack-labs/querykit/pkg/ir"
)

// ---------- Select-Merge Resolver ----------

type selShape int

const (
	shapeSource selShape = iota
	shapeStruct
	shapeMap
	shapeTuple
	shapeList
	shapeOpaque
)

func classify(expr ir.Expr) selShape {
	switch expr.(type) {
	case *ir.BindingRef:
		return shapeSource
	case *ir.StructExpr:
		return shapeStruct
	case *ir.MapExpr:
		return shapeMap
	case *ir.Tuple:
		return shapeTuple
	case *ir.List:
		return shapeList
	}
	return shapeOpaque
}

func shapeName(s selShape) string {
	switch s {
	case shapeSource:
		return "source"
	case shapeStruct:
		return "struct"
	case shapeMap:
		return "map"
	case shapeTuple:
		return "tuple"
	case shapeList:
		return "list"
	}
	return "expression"
}

// mergeSelect reconciles an existing select with a select_merge expression.
func mergeSelect(q *ir.Query, old, incoming ir.SelectExpr) (ir.SelectExpr, error) {
	take, err := mergeTakes(old.Take, incoming.Take)
	if err != nil {
		return ir.SelectExpr{}, err
	}

	// Identical parameter-free expressions collapse to one.
	if len(old.Params) == 0 && len(incoming.Params) == 0 && reflect.DeepEqual(old.Expr, incoming.Expr) {
		merged := old
		merged.Take = take
		merged.Subqueries = old.Subqueries
		merged.Origin = incoming.Origin
		return merged, nil
	}

	oldShape, newShape := classify(old.Expr), classify(incoming.Expr)

	// Same-source references stay a plain source reference.
	if oldShape == shapeSource && newShape == shapeSource {
		oldRef, newRef := old.Expr.(*ir.BindingRef), incoming.Expr.(*ir.BindingRef)
		if oldRef.Binding == newRef.Binding && oldRef.Field == "" && newRef.Field == "" {
			merged := old
			merged.Take = take
			merged.Origin = incoming.Origin
			return merged, nil
		}
	}

	// Incoming expression joins the old clause's parameter and subquery
	// lists, so its indices shift past them.
	shifted := shiftExpr(incoming.Expr, len(old.Params), len(old.Subqueries))
	params := append(append([]ir.TaggedValue(nil), old.Params...), incoming.Params...)
	subqueries := append(append([]*ir.SubqueryExpr(nil), old.Subqueries...), incoming.Subqueries...)

	merged := ir.SelectExpr{Params: params, Subqueries: subqueries, Take: take, Origin: incoming.Origin}

	switch {
	case oldShape == shapeStruct && newShape == shapeMap && len(old.Params) == 0:
		oldStruct := old.Expr.(*ir.StructExpr)
		merged.Expr = &ir.StructExpr{
			Schema: oldStruct.Schema,
			Fields: mergeFields(oldStruct.Fields, shifted.(*ir.MapExpr).Fields),
		}
		return merged, nil

	case oldShape == shapeMap && newShape == shapeMap:
		oldMap := old.Expr.(*ir.MapExpr)
		newMap := shifted.(*ir.MapExpr)
		// An empty map on either side is absorbed.
		if len(oldMap.Fields) == 0 {
			merged.Expr = newMap
			return merged, nil
		}
		if len(newMap.Fields) == 0 {
			merged.Expr = oldMap
			return merged, nil
		}
		merged.Expr = &ir.MapExpr{Fields: mergeFields(oldMap.Fields, newMap.Fields)}
		return merged, nil

	case mergeableShape(oldShape) && (newShape == shapeMap || newShape == shapeStruct):
		// Shapes that cannot be reconciled statically defer to a runtime
		// merge node.
		merged.Expr = &ir.Op{Name: "merge", Args: []ir.Expr{old.Expr, shifted}}
		return merged, nil
	}

	return ir.SelectExpr{}, &MergeError{
		OldShape: shapeName(oldShape),
		NewShape: shapeName(newShape),
		Query:    format.Format(q),
	}
}

func mergeableShape(s selShape) bool {
	switch s {
	case shapeSource, shapeStruct, shapeMap, shapeOpaque:
		return true
	}
	return false
}

// mergeFields keyword-merges two ordered field lists: existing keys keep
// their position with the new value winning, new keys append in order.
func mergeFields(old, new []ir.KV) []ir.KV {
	out := append([]ir.KV(nil), old...)
	for _, kv := range new {
		replaced := false
		for i := range out {
			if out[i].Key == kv.Key {
				out[i] = kv
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, kv)
		}
	}
	return out
}

// mergeTakes merges field-subset metadata per binding: field sets union,
// disagreeing kinds error.
func mergeTakes(old, new map[int]ir.TakeSpec) (map[int]ir.TakeSpec, error) {
	if len(old) == 0 && len(new) == 0 {
		return nil, nil
	}
	out := make(map[int]ir.TakeSpec, len(old)+len(new))
	for ix, spec := range old {
		out[ix] = spec
	}
	for ix, spec := range new {
		existing, ok := out[ix]
		if !ok {
			out[ix] = spec
			continue
		}
		merged, err := mergeTake(ix, existing, spec)
		if err != nil {
			return nil, err
		}
		out[ix] = merged
	}
	return out, nil
}

// mergeTake merges two subsets requested for one binding.
func mergeTake(binding int, old, new ir.TakeSpec) (ir.TakeSpec, error) {
	kind := old.Kind
	switch {
	case old.Kind == ir.TakeAny:
		kind = new.Kind
	case new.Kind == ir.TakeAny || new.Kind == old.Kind:
		// keep old kind
	default:
		return ir.TakeSpec{}, &TakeKindError{Binding: binding, Old: old.Kind.String(), New: new.Kind.String()}
	}

	fields := append([]string(nil), old.Fields...)
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		seen[f] = struct{}{}
	}
	for _, f := range new.Fields {
		if _, ok := seen[f]; !ok {
			fields = append(fields, f)
			seen[f] = struct{}{}
		}
	}
	return ir.TakeSpec{Kind: kind, Fields: fields}, nil
}

// shiftExpr rewrites parameter and subquery indices by fixed offsets,
// leaving everything else untouched.
func shiftExpr(expr ir.Expr, paramOff, subOff int) ir.Expr {
	if paramOff == 0 && subOff == 0 {
		return expr
	}
	switch v := expr.(type) {
	case *ir.Param:
		return &ir.Param{Ix: v.Ix + paramOff, Type: v.Type}
	case *ir.Subquery:
		return &ir.Subquery{Ix: v.Ix + subOff}
	case *ir.Op:
		return &ir.Op{Name: v.Name, Args: shiftAll(v.Args, paramOff, subOff)}
	case *ir.Tuple:
		return &ir.Tuple{Elems: shiftAll(v.Elems, paramOff, subOff)}
	case *ir.List:
		return &ir.List{Elems: shiftAll(v.Elems, paramOff, subOff)}
	case *ir.MapExpr:
		return &ir.MapExpr{Fields: shiftKVs(v.Fields, paramOff, subOff)}
	case *ir.StructExpr:
		return &ir.StructExpr{Schema: v.Schema, Fields: shiftKVs(v.Fields, paramOff, subOff)}
	case *ir.Fragment:
		parts := make([]ir.FragmentPart, len(v.Parts))
		for i, p := range v.Parts {
			if p.Expr != nil {
				p = ir.FragmentPart{Text: p.Text, Expr: shiftExpr(p.Expr, paramOff, subOff)}
			}
			parts[i] = p
		}
		return &ir.Fragment{Parts: parts}
	}
	return expr
}

func shiftAll(exprs []ir.Expr, paramOff, subOff int) []ir.Expr {
	out := make([]ir.Expr, len(exprs))
	for i, ex := range exprs {
		out[i] = shiftExpr(ex, paramOff, subOff)
	}
	return out
}

func shiftKVs(kvs []ir.KV, paramOff, subOff int) []ir.KV {
	out := make([]ir.KV, len(kvs))
	for i, kv := range kvs {
		out[i] = ir.KV{Key: kv.Key, Value: shiftExpr(kv.Value, paramOff, subOff)}
	}
	return out
}
