package ir

// ---------- Parameter Types ----------

// ParamType tags the expected type of an interpolated parameter. The tag is
// resolved against schema metadata by the executor, not by the core.
type ParamType interface {
	paramType() // Marker method - seals interface to this package
}

// AnyType places no constraint on the parameter value.
type AnyType struct{}

func (AnyType) paramType() {}

// ScalarType names a concrete scalar type (e.g., "integer", "boolean").
type ScalarType struct {
	Name string
}

func (ScalarType) paramType() {}

// Scalar type names the builder assigns.
const (
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeString  = "string"
)

// FieldType defers typing to the declared type of Binding's Field,
// looked up through schema metadata at execution time.
type FieldType struct {
	Binding int
	Field   string
}

func (FieldType) paramType() {}

// ArrayType declares an array-typed field.
type ArrayType struct {
	Elem ParamType
}

func (ArrayType) paramType() {}

// ElemOf types a parameter as a member of an array-typed field rather than
// as the field's own type. Used by update push/pull and by IN right-hand
// sides.
type ElemOf struct {
	Elem ParamType
}

func (ElemOf) paramType() {}

// TaggedValue is one entry in a clause's ordered parameter list.
type TaggedValue struct {
	Value any
	Type  ParamType
}

// Origin records where a clause was built, for diagnostics.
type Origin struct {
	File string
	Line int
}

// ---------- Directions ----------

// Direction orders an order_by or distinct item.
type Direction int

// Direction tags, matching the recognized interpolated direction names.
const (
	Asc Direction = iota
	AscNullsFirst
	AscNullsLast
	Desc
	DescNullsFirst
	DescNullsLast
)

var directionNames = map[Direction]string{
	Asc:            "asc",
	AscNullsFirst:  "asc_nulls_first",
	AscNullsLast:   "asc_nulls_last",
	Desc:           "desc",
	DescNullsFirst: "desc_nulls_first",
	DescNullsLast:  "desc_nulls_last",
}

// String returns the direction's tag name.
func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "asc"
}

// ParseDirection resolves an interpolated direction tag. The boolean reports
// whether the tag is recognized.
func ParseDirection(tag string) (Direction, bool) {
	for d, s := range directionNames {
		if s == tag {
			return d, true
		}
	}
	return Asc, false
}

// Reverse returns the opposite direction, preserving the nulls placement.
func (d Direction) Reverse() Direction {
	switch d {
	case Asc:
		return Desc
	case AscNullsFirst:
		return DescNullsLast
	case AscNullsLast:
		return DescNullsFirst
	case Desc:
		return Asc
	case DescNullsFirst:
		return AscNullsLast
	case DescNullsLast:
		return AscNullsFirst
	}
	return Desc
}

// ---------- Join Qualifiers ----------

// JoinQual is the kind of a join.
type JoinQual int

// Join qualifier values, including the lateral variants.
const (
	JoinInner JoinQual = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
	JoinInnerLateral
	JoinLeftLateral
	JoinCrossLateral
)

var joinQualNames = map[JoinQual]string{
	JoinInner:        "inner",
	JoinLeft:         "left",
	JoinRight:        "right",
	JoinFull:         "full",
	JoinCross:        "cross",
	JoinInnerLateral: "inner_lateral",
	JoinLeftLateral:  "left_lateral",
	JoinCrossLateral: "cross_lateral",
}

// String returns the qualifier's name.
func (j JoinQual) String() string {
	if s, ok := joinQualNames[j]; ok {
		return s
	}
	return "inner"
}

// Valid reports whether j is a recognized qualifier.
func (j JoinQual) Valid() bool {
	_, ok := joinQualNames[j]
	return ok
}

// Lateral reports whether j is one of the lateral variants.
func (j JoinQual) Lateral() bool {
	return j == JoinInnerLateral || j == JoinLeftLateral || j == JoinCrossLateral
}

// ---------- Combinations ----------

// CombinationKind is the kind of a set operation between whole queries.
type CombinationKind int

// Combination kinds, in the adapter's execution vocabulary.
const (
	Union CombinationKind = iota
	UnionAll
	Except
	ExceptAll
	Intersect
	IntersectAll
)

var combinationNames = map[CombinationKind]string{
	Union:        "union",
	UnionAll:     "union_all",
	Except:       "except",
	ExceptAll:    "except_all",
	Intersect:    "intersect",
	IntersectAll: "intersect_all",
}

// String returns the combination kind's name.
func (c CombinationKind) String() string {
	if s, ok := combinationNames[c]; ok {
		return s
	}
	return "union"
}
