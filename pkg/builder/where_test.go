package builder_test

import (
	"testing"

	"github.com/leapstack-labs/querykit/pkg/builder"
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Keyword Shorthand ----------

func TestWhereKeywordShorthand(t *testing.T) {
	q, err := builder.Where("posts", nil, builder.KW{
		{Key: "public", Value: true},
		{Key: "title", Value: "hello"},
	})
	require.NoError(t, err)
	require.Len(t, q.Wheres, 1)

	w := q.Wheres[0]
	assert.Equal(t, ir.CombineAnd, w.Op)

	// public == ^0 and title == ^1, one parameter per pair.
	require.Len(t, w.Params, 2)
	assert.Equal(t, true, w.Params[0].Value)
	assert.Equal(t, "hello", w.Params[1].Value)
	assert.Equal(t, ir.FieldType{Binding: 0, Field: "public"}, w.Params[0].Type)
	assert.Equal(t, ir.FieldType{Binding: 0, Field: "title"}, w.Params[1].Type)

	and := w.Expr.(*ir.Op)
	require.Equal(t, ir.OpAnd, and.Name)
	left := and.Args[0].(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "public"}, left.Args[0])
	assert.Equal(t, &ir.Param{Ix: 0, Type: ir.FieldType{Binding: 0, Field: "public"}}, left.Args[1])
}

func TestWhereBindingKeyedShorthand(t *testing.T) {
	base, err := builder.From("posts")
	require.NoError(t, err)
	base, err = builder.Join(base, builder.JoinOpts{Source: "comments", On: builder.KW{{Key: "post_id", Value: 1}}})
	require.NoError(t, err)

	// where(c: [approved: true]) targets the named binding, not binding 0.
	q, err := builder.Where(base, builder.Binds("p", "c"), builder.KW{
		{Key: "c", Value: builder.KW{{Key: "approved", Value: true}}},
	})
	require.NoError(t, err)

	eq := q.Wheres[0].Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 1, Field: "approved"}, eq.Args[0])
	require.Len(t, q.Wheres[0].Params, 1)
	assert.Equal(t, ir.FieldType{Binding: 1, Field: "approved"}, q.Wheres[0].Params[0].Type)
}

func TestWhereBindingKeyedShorthandUnknownBinding(t *testing.T) {
	_, err := builder.Where("posts", builder.Binds("p"), builder.KW{
		{Key: "c", Value: builder.KW{{Key: "approved", Value: true}}},
	})
	var unknown *builder.UnknownBindingError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "c", unknown.Name)
}

func TestWhereNilShorthandRejected(t *testing.T) {
	_, err := builder.Where("posts", nil, builder.KW{{Key: "title", Value: nil}})
	var nilErr *builder.NilComparisonError
	require.ErrorAs(t, err, &nilErr)
	assert.Contains(t, err.Error(), "IsNil")
}

// ---------- Expressions ----------

func TestWhereExpression(t *testing.T) {
	q, err := builder.Where("posts", builder.Binds("p"), builder.Gt(
		builder.Field(builder.Bind("p"), "visits"),
		builder.Val(100),
	))
	require.NoError(t, err)

	w := q.Wheres[0]
	gt := w.Expr.(*ir.Op)
	assert.Equal(t, ir.OpGt, gt.Name)
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "visits"}, gt.Args[0])
	// The late-bound side is typed after the field on the other side.
	assert.Equal(t, &ir.Param{Ix: 0, Type: ir.FieldType{Binding: 0, Field: "visits"}}, gt.Args[1])
	require.Len(t, w.Params, 1)
	assert.Equal(t, 100, w.Params[0].Value)
}

func TestWhereLiteralConsumesNoParameter(t *testing.T) {
	q, err := builder.Where("posts", builder.Binds("p"), builder.Eq(
		builder.Field(builder.Bind("p"), "visits"),
		builder.Lit(0),
	))
	require.NoError(t, err)

	assert.Empty(t, q.Wheres[0].Params)
	eq := q.Wheres[0].Expr.(*ir.Op)
	assert.Equal(t, &ir.Literal{Value: 0}, eq.Args[1])
}

func TestWhereNilComparisonRejected(t *testing.T) {
	_, err := builder.Where("posts", builder.Binds("p"), builder.Eq(
		builder.Field(builder.Bind("p"), "title"),
		nil,
	))
	var nilErr *builder.NilComparisonError
	require.ErrorAs(t, err, &nilErr)
	assert.Contains(t, err.Error(), `"title"`)

	// IsNil is the supported null test.
	q, err := builder.Where("posts", builder.Binds("p"),
		builder.IsNil(builder.Field(builder.Bind("p"), "title")))
	require.NoError(t, err)
	assert.Equal(t, ir.OpIsNil, q.Wheres[0].Expr.(*ir.Op).Name)
}

func TestWhereInTypesElements(t *testing.T) {
	q, err := builder.Where("posts", builder.Binds("p"), builder.In(
		builder.Field(builder.Bind("p"), "id"),
		builder.Val([]int{1, 2, 3}),
	))
	require.NoError(t, err)

	require.Len(t, q.Wheres[0].Params, 1)
	assert.Equal(t,
		ir.ElemOf{Elem: ir.FieldType{Binding: 0, Field: "id"}},
		q.Wheres[0].Params[0].Type)
}

func TestWhereFragment(t *testing.T) {
	q, err := builder.Where("posts", builder.Binds("p"), builder.Frag(
		"lower(?) = ?",
		builder.Field(builder.Bind("p"), "title"),
		builder.Val("hello"),
	))
	require.NoError(t, err)

	frag := q.Wheres[0].Expr.(*ir.Fragment)
	require.Len(t, frag.Parts, 4)
	assert.Equal(t, "lower(", frag.Parts[0].Text)
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "title"}, frag.Parts[1].Expr)
	assert.Equal(t, ") = ", frag.Parts[2].Text)
	assert.Equal(t, &ir.Param{Ix: 0, Type: ir.AnyType{}}, frag.Parts[3].Expr)
}

func TestWhereFragmentArgumentCountMismatch(t *testing.T) {
	_, err := builder.Where("posts", nil, builder.Frag("? = ?", builder.Val(1)))
	var clause *builder.ClauseError
	require.ErrorAs(t, err, &clause)
	assert.Contains(t, err.Error(), "expects 2 arguments, got 1")
}

func TestWhereSubqueryAllowed(t *testing.T) {
	inner, err := builder.Select("comments", nil, []string{"post_id"})
	require.NoError(t, err)

	q, err := builder.Where("posts", builder.Binds("p"), builder.In(
		builder.Field(builder.Bind("p"), "id"),
		builder.Subquery(inner),
	))
	require.NoError(t, err)

	w := q.Wheres[0]
	require.Len(t, w.Subqueries, 1)
	in := w.Expr.(*ir.Op)
	assert.Equal(t, &ir.Subquery{Ix: 0}, in.Args[1])
}

// ---------- Combination and Chaining ----------

func TestWhereChainsCombineOps(t *testing.T) {
	q, err := builder.Where("posts", nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)
	q, err = builder.OrWhere(q, nil, builder.KW{{Key: "visits", Value: 0}})
	require.NoError(t, err)
	q, err = builder.Where(q, nil, builder.KW{{Key: "title", Value: "x"}})
	require.NoError(t, err)

	require.Len(t, q.Wheres, 3)
	assert.Equal(t, ir.CombineAnd, q.Wheres[0].Op)
	assert.Equal(t, ir.CombineOr, q.Wheres[1].Op)
	assert.Equal(t, ir.CombineAnd, q.Wheres[2].Op)

	// Each clause numbers its parameters from zero.
	for _, w := range q.Wheres {
		require.Len(t, w.Params, 1)
		assert.Equal(t, 0, mustParam(t, w.Expr).Ix)
	}
}

func TestHavingAppendsSeparately(t *testing.T) {
	q, err := builder.Where("posts", nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)
	q, err = builder.Having(q, builder.Binds("p"), builder.Gt(builder.Count(), builder.Val(10)))
	require.NoError(t, err)
	q, err = builder.OrHaving(q, builder.Binds("p"), builder.Gt(builder.Sum(builder.Field(builder.Bind("p"), "visits")), builder.Val(100)))
	require.NoError(t, err)

	assert.Len(t, q.Wheres, 1)
	require.Len(t, q.Havings, 2)
	assert.Equal(t, ir.CombineAnd, q.Havings[0].Op)
	assert.Equal(t, ir.CombineOr, q.Havings[1].Op)
}

// ---------- Binding Validation ----------

func TestWhereTooManyBindings(t *testing.T) {
	_, err := builder.Where("posts", builder.Binds("p", "c"), builder.KW{{Key: "public", Value: true}})
	var count *builder.BindingCountError
	require.ErrorAs(t, err, &count)
	assert.Equal(t, 2, count.Given)
	assert.Equal(t, 1, count.Have)
}

func TestWhereDuplicateBindingNames(t *testing.T) {
	base, err := builder.From("posts")
	require.NoError(t, err)
	base, err = builder.Join(base, builder.JoinOpts{Source: "comments", On: builder.Lit(true)})
	require.NoError(t, err)

	_, err = builder.Where(base, builder.Binds("p", "p"), builder.KW{{Key: "public", Value: true}})
	var dup *builder.DuplicateBindingError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "p", dup.Name)
}

func TestWhereWildcardSkipsPositions(t *testing.T) {
	base, err := builder.From("posts")
	require.NoError(t, err)
	base, err = builder.Join(base, builder.JoinOpts{Source: "comments", On: builder.Lit(true)})
	require.NoError(t, err)

	q, err := builder.Where(base, builder.Binds("_", "c"), builder.Eq(
		builder.Field(builder.Bind("c"), "approved"),
		builder.Val(true),
	))
	require.NoError(t, err)
	eq := q.Wheres[0].Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 1, Field: "approved"}, eq.Args[0])

	// The wildcard itself never resolves.
	_, err = builder.Where(base, builder.Binds("_", "c"), builder.Eq(
		builder.Field(builder.Bind("_"), "public"),
		builder.Val(true),
	))
	var unknown *builder.UnknownBindingError
	require.ErrorAs(t, err, &unknown)
}

func TestWhereAliasResolution(t *testing.T) {
	base, err := builder.From("posts", builder.FromOpts{As: "post"})
	require.NoError(t, err)

	q, err := builder.Where(base, nil, builder.Eq(
		builder.Field(builder.Alias("post"), "public"),
		builder.Val(true),
	))
	require.NoError(t, err)
	eq := q.Wheres[0].Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "public"}, eq.Args[0])

	_, err = builder.Where(base, nil, builder.Eq(
		builder.Field(builder.Alias("missing"), "public"),
		builder.Val(true),
	))
	var unknown *builder.UnknownBindingError
	require.ErrorAs(t, err, &unknown)
	assert.True(t, unknown.Alias)
}

// ---------- Error Isolation ----------

func TestFailedClauseLeavesQueryUnaffected(t *testing.T) {
	q, err := builder.Where("posts", nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)

	_, err = builder.Where(q, nil, builder.KW{{Key: "title", Value: nil}})
	require.Error(t, err)

	assert.Len(t, q.Wheres, 1)
	require.Len(t, q.Wheres[0].Params, 1)
	assert.Equal(t, true, q.Wheres[0].Params[0].Value)
}

func mustParam(t *testing.T, expr ir.Expr) *ir.Param {
	t.Helper()
	op, ok := expr.(*ir.Op)
	require.True(t, ok)
	for _, arg := range op.Args {
		if p, ok := arg.(*ir.Param); ok {
			return p
		}
		if nested, ok := arg.(*ir.Op); ok {
			for _, a := range nested.Args {
				if p, ok := a.(*ir.Param); ok {
					return p
				}
			}
		}
	}
	t.Fatal("no parameter found in expression")
	return nil
}
