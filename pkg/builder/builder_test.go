package builder_test

import (
	"testing"

	"github.com/leapstack-labs/querykit/internal/testutil"
	"github.com/leapstack-labs/querykit/pkg/builder"
	"github.com/leapstack-labs/querykit/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// ---------- From ----------

func TestFromTable(t *testing.T) {
	q, err := builder.From("posts")
	require.NoError(t, err)

	src := q.From.Source.(*ir.TableSource)
	assert.Equal(t, "posts", src.Table)
	assert.Equal(t, 1, q.BindingCount())
}

func TestFromSchema(t *testing.T) {
	q, err := builder.From(testutil.Authors())
	require.NoError(t, err)

	src := q.From.Source.(*ir.SchemaSource)
	assert.Equal(t, "authors", src.Source)
	assert.Equal(t, "accounts", src.Prefix)
}

func TestFromQueryPassthrough(t *testing.T) {
	base, err := builder.From("posts")
	require.NoError(t, err)

	q, err := builder.From(base)
	require.NoError(t, err)
	assert.Same(t, base, q)

	_, err = builder.From(base, builder.FromOpts{As: "p"})
	var clause *builder.ClauseError
	require.ErrorAs(t, err, &clause)
}

func TestFromSubquery(t *testing.T) {
	inner, err := builder.Select("comments", nil, []string{"post_id"})
	require.NoError(t, err)

	q, err := builder.From(builder.Subquery(inner))
	require.NoError(t, err)
	src := q.From.Source.(*ir.SubquerySource)
	assert.Same(t, inner, src.Sub.Query)
}

func TestFromFragment(t *testing.T) {
	q, err := builder.From(builder.Frag("generate_series(1, ?)", builder.Val(10)))
	require.NoError(t, err)

	require.IsType(t, &ir.FragmentSource{}, q.From.Source)
	require.Len(t, q.From.Params, 1)
	assert.Equal(t, 10, q.From.Params[0].Value)
}

func TestFromFragmentRejectsSubquery(t *testing.T) {
	// FromExpr carries parameters but no subquery list; accepting one
	// would leave a dangling marker in the fragment.
	inner, err := builder.From("comments")
	require.NoError(t, err)

	_, err = builder.From(builder.Frag("(select * from (?))", builder.Subquery(inner)))
	var sub *builder.SubqueryError
	require.ErrorAs(t, err, &sub)
	assert.Equal(t, "from", sub.Clause)
}

func TestFromOpts(t *testing.T) {
	q, err := builder.From("posts", builder.FromOpts{As: "p", Prefix: "blog", Hints: []string{"USE INDEX (i)"}})
	require.NoError(t, err)

	assert.Equal(t, "p", q.From.As)
	assert.Equal(t, "blog", q.From.Prefix)
	assert.Equal(t, []string{"USE INDEX (i)"}, q.From.Hints)

	ix, ok := q.AliasIndex("p")
	require.True(t, ok)
	assert.Equal(t, 0, ix)
}

func TestToQueryRejectsUnknownValues(t *testing.T) {
	_, err := builder.Where(42, nil, builder.KW{{Key: "a", Value: 1}})
	var clause *builder.ClauseError
	require.ErrorAs(t, err, &clause)
}

// ---------- Concurrency ----------

// A query value is immutable, so many goroutines may extend the same base
// concurrently, each getting an independent result.
func TestConcurrentBuildsFromSharedBase(t *testing.T) {
	base, err := builder.Where("posts", nil, builder.KW{{Key: "public", Value: true}})
	require.NoError(t, err)

	frag := builder.NewDynamic(builder.Binds("p"), builder.Gt(
		builder.Field(builder.Bind("p"), "visits"),
		builder.Val(10),
	))

	var g errgroup.Group
	results := make([]*ir.Query, 50)
	for i := range results {
		g.Go(func() error {
			q, err := builder.Where(base, builder.Binds("p"), frag)
			if err != nil {
				return err
			}
			q, err = builder.OrderBy(q, nil, builder.Desc("id"))
			if err != nil {
				return err
			}
			results[i] = q
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, base.Wheres, 1)
	assert.Empty(t, base.OrderBys)
	for _, q := range results {
		require.Len(t, q.Wheres, 2)
		require.Len(t, q.OrderBys, 1)
		assert.Equal(t, 10, q.Wheres[1].Params[0].Value)
	}
}
