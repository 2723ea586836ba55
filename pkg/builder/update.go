package builder

import (
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/querykit/pkg/ir"
)

// ---------- Update Operations ----------

// UpdateArg is one update operation, built with Set/Inc/Push/Pull.
type UpdateArg struct {
	kind   ir.UpdateKind
	fields KW
}

// Set assigns each field its paired value.
func Set(fields KW) UpdateArg { return UpdateArg{kind: ir.UpdateSet, fields: fields} }

// Inc increments each numeric field by its paired value.
func Inc(fields KW) UpdateArg { return UpdateArg{kind: ir.UpdateInc, fields: fields} }

// Push appends each paired value to an array field.
func Push(fields KW) UpdateArg { return UpdateArg{kind: ir.UpdatePush, fields: fields} }

// Pull removes each paired value from an array field.
func Pull(fields KW) UpdateArg { return UpdateArg{kind: ir.UpdatePull, fields: fields} }

// Update appends an update clause. Each operation's field values are
// parameters typed against the field on binding 0; push and pull values
// are typed as elements of the array field. Subqueries are not permitted.
func Update(queryable any, binds BindList, ops ...UpdateArg) (*ir.Query, error) {
	q, err := toQuery(queryable)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, &ClauseError{Clause: "update", Msg: "missing update operations"}
	}
	b, err := newBindings(q, binds)
	if err != nil {
		return nil, err
	}
	e := newEscaper(kindUpdate, b)

	clause := ir.UpdateExpr{Origin: origin()}
	for _, op := range ops {
		if len(op.fields) == 0 {
			return nil, &ClauseError{Clause: "update", Msg: op.kind.String() + " requires at least one field"}
		}
		fields := make([]ir.KV, 0, len(op.fields))
		for _, pair := range op.fields {
			hint := updateHint(op.kind, pair.Key)
			expr, err := e.escapeOperand(asValue(pair.Value), hint)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ir.KV{Key: pair.Key, Value: expr})
		}
		clause.Ops = append(clause.Ops, ir.UpdateOp{Kind: op.kind, Fields: fields})
	}
	clause.Params = e.params
	return q.AppendUpdate(clause), nil
}

func updateHint(kind ir.UpdateKind, field string) ir.ParamType {
	ft := ir.FieldType{Binding: 0, Field: field}
	if kind == ir.UpdatePush || kind == ir.UpdatePull {
		return ir.ElemOf{Elem: ft}
	}
	return ft
}

// ---------- Runtime Update Decoding ----------

// UpdateRuntime builds an update clause from a runtime keyword map, such
// as decoded user input. Keys choose the operation kind; values are maps
// of field to value. Unknown keys error.
func UpdateRuntime(queryable any, binds BindList, raw map[string]any) (*ir.Query, error) {
	var decoded struct {
		Set  map[string]any `mapstructure:"set"`
		Inc  map[string]any `mapstructure:"inc"`
		Push map[string]any `mapstructure:"push"`
		Pull map[string]any `mapstructure:"pull"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decoded,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ClauseError{Clause: "update", Msg: err.Error()}
	}

	var ops []UpdateArg
	for _, part := range []struct {
		kind   ir.UpdateKind
		fields map[string]any
	}{
		{ir.UpdateSet, decoded.Set},
		{ir.UpdateInc, decoded.Inc},
		{ir.UpdatePush, decoded.Push},
		{ir.UpdatePull, decoded.Pull},
	} {
		if len(part.fields) == 0 {
			continue
		}
		ops = append(ops, UpdateArg{kind: part.kind, fields: kwFromMap(part.fields)})
	}
	if len(ops) == 0 {
		return nil, &ClauseError{Clause: "update", Msg: "missing update operations"}
	}
	return Update(queryable, binds, ops...)
}

// kwFromMap orders a runtime map's fields by key so decoded updates build
// deterministic parameter lists.
func kwFromMap(m map[string]any) KW {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kw := make(KW, 0, len(keys))
	for _, k := range keys {
		kw = append(kw, Pair{Key: k, Value: m[k]})
	}
	return kw
}
