package builder_test

import (
	"log/slog"
	"testing"

	"github.com/leapstack-labs/querykit/internal/testutil"
	"github.com/leapstack-labs/querykit/pkg/builder"
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAssignsNextBinding(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)

	q, err = builder.Join(q, builder.JoinOpts{
		Binds:  builder.Binds("p"),
		Name:   "c",
		Source: "comments",
		On: builder.Eq(
			builder.Field(builder.Bind("c"), "post_id"),
			builder.Field(builder.Bind("p"), "id"),
		),
	})
	require.NoError(t, err)

	require.Len(t, q.Joins, 1)
	assert.Equal(t, ir.JoinInner, q.Joins[0].Qual)
	on := q.Joins[0].On.Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 1, Field: "post_id"}, on.Args[0])
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "id"}, on.Args[1])
}

func TestJoinNameResolvesBeforeAppend(t *testing.T) {
	// The call site names only the join's own binding; the new index is
	// still the binding count, not a position in the short list.
	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Source: "comments",
		On:     builder.Lit(true),
	})
	require.NoError(t, err)

	q, err = builder.Join(q, builder.JoinOpts{
		Name:   "a",
		Source: "authors",
		On: builder.Eq(
			builder.Field(builder.Bind("a"), "id"),
			builder.Lit(1),
		),
	})
	require.NoError(t, err)

	on := q.Joins[1].On.Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 2, Field: "id"}, on.Args[0])
}

func TestJoinKeywordOn(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Qual:   ir.JoinLeft,
		Name:   "c",
		Source: "comments",
		On:     builder.KW{{Key: "c", Value: builder.KW{{Key: "approved", Value: true}}}},
	})
	require.NoError(t, err)

	on := q.Joins[0].On
	eq := on.Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 1, Field: "approved"}, eq.Args[0])
	require.Len(t, on.Params, 1)
	assert.Equal(t, true, on.Params[0].Value)
}

func TestJoinKeywordOnTargetsJoinedBinding(t *testing.T) {
	// A non-nested pair constrains the join's own binding, not binding 0.
	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Source: "comments",
		On:     builder.KW{{Key: "approved", Value: true}},
	})
	require.NoError(t, err)

	on := q.Joins[0].On
	eq := on.Expr.(*ir.Op)
	assert.Equal(t, &ir.BindingRef{Binding: 1, Field: "approved"}, eq.Args[0])
	require.Len(t, on.Params, 1)
	assert.Equal(t, ir.FieldType{Binding: 1, Field: "approved"}, on.Params[0].Type)
}

func TestJoinFragmentSourceRejectsSubquery(t *testing.T) {
	// FragmentSource parameters live on the join record, which has no
	// subquery list to attach to.
	inner, err := builder.From("comments")
	require.NoError(t, err)
	q, err := builder.From("posts")
	require.NoError(t, err)

	_, err = builder.Join(q, builder.JoinOpts{
		Source: builder.Frag("(select * from (?))", builder.Subquery(inner)),
		On:     builder.Lit(true),
	})
	var sub *builder.SubqueryError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "from", sub.Clause)
}

func TestJoinWithoutOnDefaultsToTrueAndWarns(t *testing.T) {
	log, rec := testutil.CaptureLogger()
	builder.SetLogger(log)
	defer builder.SetLogger(slog.New(slog.DiscardHandler))

	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{Source: "comments"})
	require.NoError(t, err)

	require.NotNil(t, q.Joins[0].On)
	assert.Equal(t, &ir.Literal{Value: true}, q.Joins[0].On.Expr)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "defaults to true")
}

func TestCrossJoinTakesNoOn(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)

	q2, err := builder.Join(q, builder.JoinOpts{Qual: ir.JoinCross, Source: "comments"})
	require.NoError(t, err)
	assert.Nil(t, q2.Joins[0].On)

	_, err = builder.Join(q, builder.JoinOpts{
		Qual:   ir.JoinCross,
		Source: "comments",
		On:     builder.Lit(true),
	})
	var clause *builder.ClauseError
	require.ErrorAs(t, err, &clause)
	assert.Contains(t, err.Error(), "cross joins")
}

func TestJoinInvalidQualifier(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)

	_, err = builder.Join(q, builder.JoinOpts{Qual: ir.JoinQual(99), Source: "comments"})
	var clause *builder.ClauseError
	require.ErrorAs(t, err, &clause)
	assert.Contains(t, err.Error(), "invalid join qualifier")
}

func TestJoinSchemaSource(t *testing.T) {
	q, err := builder.From(testutil.Posts())
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Qual:   ir.JoinLeft,
		Source: testutil.Authors(),
		On:     builder.Lit(true),
	})
	require.NoError(t, err)

	src := q.Joins[0].Source.(*ir.SchemaSource)
	assert.Equal(t, "authors", src.Source)
	assert.Equal(t, "accounts", src.Prefix)
}

func TestJoinSubquerySource(t *testing.T) {
	inner, err := builder.From("comments")
	require.NoError(t, err)

	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{Source: inner, On: builder.Lit(true)})
	require.NoError(t, err)

	src := q.Joins[0].Source.(*ir.SubquerySource)
	assert.Same(t, inner, src.Sub.Query)
}

func TestJoinAssocSource(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Binds:  builder.Binds("p"),
		Source: builder.Assoc(builder.Bind("p"), "comments"),
	})
	require.NoError(t, err)

	src := q.Joins[0].Source.(*ir.AssocSource)
	assert.Equal(t, 0, src.Binding)
	assert.Equal(t, "comments", src.Field)
	// Association joins derive their condition; none is defaulted.
	assert.Nil(t, q.Joins[0].On)
}

func TestJoinLateralFragmentSeesBindings(t *testing.T) {
	// The omitted ON warning lands in the test log rather than vanishing.
	builder.SetLogger(testutil.NewTestLogger(t))
	defer builder.SetLogger(slog.New(slog.DiscardHandler))

	q, err := builder.From("posts")
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{
		Qual:   ir.JoinLeftLateral,
		Binds:  builder.Binds("p"),
		Source: builder.Frag("jsonb_array_elements(?)", builder.Field(builder.Bind("p"), "tags")),
	})
	require.NoError(t, err)

	src := q.Joins[0].Source.(*ir.FragmentSource)
	assert.Equal(t, &ir.BindingRef{Binding: 0, Field: "tags"}, src.Frag.Parts[1].Expr)
}

func TestJoinAliasRegistered(t *testing.T) {
	q, err := builder.From("posts", builder.FromOpts{As: "post"})
	require.NoError(t, err)
	q, err = builder.Join(q, builder.JoinOpts{Source: "comments", As: "comment", On: builder.Lit(true)})
	require.NoError(t, err)

	ix, ok := q.AliasIndex("comment")
	require.True(t, ok)
	assert.Equal(t, 1, ix)

	_, err = builder.Join(q, builder.JoinOpts{Source: "authors", As: "post", On: builder.Lit(true)})
	var dup *ir.DuplicateAliasError
	require.ErrorAs(t, err, &dup)
}
