package format_test

import (
	"testing"

	"github.com/leapstack-labs/querykit/pkg/builder"
	"github.com/leapstack-labs/querykit/pkg/format"
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFormatJoinedQuery(t *testing.T) {
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
	q, err = builder.Where(q, nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)
	q, err = builder.OrderBy(q, nil, builder.Desc("id"))
	require.NoError(t, err)
	q, err = builder.Limit(q, builder.Val(10))
	require.NoError(t, err)
	q, err = builder.Select(q, nil, []string{"id", "title"})
	require.NoError(t, err)

	golden(t).Assert(t, "joined", []byte(format.Format(q)))
}

func TestFormatSubqueryMerge(t *testing.T) {
	sub, err := builder.Select("comments", nil, []string{"post_id"})
	require.NoError(t, err)

	q, err := builder.From("posts", builder.FromOpts{As: "p"})
	require.NoError(t, err)
	q, err = builder.Where(q, nil, builder.In(
		builder.Field(builder.Alias("p"), "id"),
		builder.Subquery(sub),
	))
	require.NoError(t, err)
	q, err = builder.SelectMerge(q, nil, builder.MapOf(
		builder.Pair{Key: "title", Value: builder.Field(builder.Alias("p"), "title")},
	))
	require.NoError(t, err)

	golden(t).Assert(t, "subquery_merge", []byte(format.Format(q)))
}

func TestFormatFullClauses(t *testing.T) {
	q, err := builder.WithCTE("posts", "tree", builder.Frag("select 1"))
	require.NoError(t, err)
	q, err = builder.GroupBy(q, nil, "author_id")
	require.NoError(t, err)
	q, err = builder.Having(q, nil, builder.Gt(builder.Count(), builder.Val(1)))
	require.NoError(t, err)
	q, err = builder.Window(q, nil, "w", builder.WindowDef{PartitionBy: []any{"author_id"}})
	require.NoError(t, err)
	q, err = builder.Distinct(q, true)
	require.NoError(t, err)
	q, err = builder.Update(q, nil, builder.Set(builder.KW{{Key: "title", Value: "x"}}))
	require.NoError(t, err)
	q, err = builder.Comment(q, "app:blog")
	require.NoError(t, err)

	golden(t).Assert(t, "full_clauses", []byte(format.Format(q)))
}

func TestFormatIsDeterministic(t *testing.T) {
	q, err := builder.Where("posts", nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)

	first := format.Format(q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, format.Format(q))
	}
}

func TestFormatNilQuery(t *testing.T) {
	assert.Equal(t, "#query<>", format.Format(nil))
}

func TestFormatExpr(t *testing.T) {
	expr := &ir.Op{Name: ir.OpAnd, Args: []ir.Expr{
		&ir.Op{Name: ir.OpEq, Args: []ir.Expr{
			&ir.BindingRef{Binding: 0, Field: "public"},
			&ir.Param{Ix: 0},
		}},
		&ir.Op{Name: ir.OpIsNil, Args: []ir.Expr{
			&ir.BindingRef{Binding: 1, Field: "deleted_at"},
		}},
	}}

	assert.Equal(t, "b0.public == ^0 and is_nil(b1.deleted_at)", format.FormatExpr(expr))
}
