package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/testutil"
	"github.com/vk/nodegridgo/internal/tree"
)

func TestBuild_RerouteElision(t *testing.T) {
	ctx := context.Background()

	t.Run("single reroute", func(t *testing.T) {
		a, r, b := testutil.NewSum("A"), testutil.NewReroute("R"), testutil.NewSum("B", "in")
		g := testutil.NewGraph(t, "g", []node.Node{a, r, b}, "A.out -> R.in", "R.out -> B.in")

		tr := tree.Build(ctx, g)
		assert.Equal(t, map[string][]string{"A": {"B"}}, tr.Adjacency())
		assert.Same(t, a.Output("out"), tr.Provenance(b.Input("in")))
		assert.Equal(t, []string{"A"}, testutil.IDs(tr.Previous(b)))
		assert.Equal(t, []string{"A", "B"}, testutil.IDs(tr.Nodes()))
		assert.Equal(t, -1, tr.Index(r))
		assert.Nil(t, tr.Provenance(r.Input("in")), "reroute sockets are dropped")
		assert.Nil(t, tr.Owner(r.Output("out")))
		assert.Equal(t, node.Node(a), tr.Owner(a.Output("out")))
	})

	t.Run("chain of reroutes in any order", func(t *testing.T) {
		for name, order := range map[string][]string{
			"upstream first":   {"A", "R1", "R2", "B"},
			"downstream first": {"R2", "A", "R1", "B"},
		} {
			t.Run(name, func(t *testing.T) {
				byID := map[string]node.Node{
					"A":  testutil.NewSum("A"),
					"R1": testutil.NewReroute("R1"),
					"R2": testutil.NewReroute("R2"),
					"B":  testutil.NewSum("B", "in"),
				}
				var nodes []node.Node
				for _, id := range order {
					nodes = append(nodes, byID[id])
				}
				g := testutil.NewGraph(t, "g", nodes, "A.out -> R1.in", "R1.out -> R2.in", "R2.out -> B.in")

				tr := tree.Build(ctx, g)
				assert.Equal(t, map[string][]string{"A": {"B"}}, tr.Adjacency())
				b := byID["B"].(*testutil.SumNode)
				assert.Same(t, byID["A"].Outputs()[0], tr.Provenance(b.Input("in")))
				assert.Equal(t, 2, tr.Len())
			})
		}
	})

	t.Run("fan out through a reroute", func(t *testing.T) {
		a, r := testutil.NewSum("A"), testutil.NewReroute("R")
		b, c := testutil.NewSum("B", "in"), testutil.NewSum("C", "x", "y")
		g := testutil.NewGraph(t, "g", []node.Node{a, r, b, c},
			"A.out -> R.in", "R.out -> B.in", "R.out -> C.y")

		tr := tree.Build(ctx, g)
		assert.Equal(t, map[string][]string{"A": {"B", "C"}}, tr.Adjacency())
		assert.Same(t, a.Output("out"), tr.Provenance(c.Input("y")))
		assert.Nil(t, tr.Provenance(c.Input("x")))
	})

	t.Run("unconnected reroute drops provenance", func(t *testing.T) {
		r, b := testutil.NewReroute("R"), testutil.NewSum("B", "in")
		g := testutil.NewGraph(t, "g", []node.Node{r, b}, "R.out -> B.in")

		tr := tree.Build(ctx, g)
		assert.Empty(t, tr.Adjacency())
		assert.Nil(t, tr.Provenance(b.Input("in")))
		assert.Empty(t, tr.Previous(b))
	})

	t.Run("loop of reroutes has no source", func(t *testing.T) {
		r1, r2, b := testutil.NewReroute("R1"), testutil.NewReroute("R2"), testutil.NewSum("B", "in")
		g := testutil.NewGraph(t, "g", []node.Node{r1, r2, b},
			"R1.out -> R2.in", "R2.out -> R1.in", "R2.out -> B.in")

		tr := tree.Build(ctx, g)
		assert.Empty(t, tr.Adjacency())
		assert.Nil(t, tr.Provenance(b.Input("in")))
	})
}

func TestBuild_MutedLinks(t *testing.T) {
	a, b, c := testutil.NewSum("A"), testutil.NewSum("B", "in"), testutil.NewSum("C", "in")
	g := testutil.NewGraph(t, "g", []node.Node{a, b, c}, "A.out -> B.in", "A.out -> C.in")
	require.NoError(t, g.SetMuted("C", "in", true))

	tr := tree.Build(context.Background(), g)
	assert.Equal(t, map[string][]string{"A": {"B"}}, tr.Adjacency())
	assert.Nil(t, tr.Provenance(c.Input("in")))
}

func TestBuild_NeighbourOrder(t *testing.T) {
	// Links are added in reverse; neighbours still come back in node order.
	a, b, c, d := testutil.NewSum("A"), testutil.NewSum("B"), testutil.NewSum("C"), testutil.NewSum("D", "x", "y", "z")
	g := testutil.NewGraph(t, "g", []node.Node{a, b, c, d}, "C.out -> D.z", "B.out -> D.y", "A.out -> D.x")

	tr := tree.Build(context.Background(), g)
	assert.Equal(t, []string{"A", "B", "C"}, testutil.IDs(tr.Previous(d)))
	assert.Equal(t, []string{"D"}, testutil.IDs(tr.Next(a)))
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	a, b := testutil.NewSum("A"), testutil.NewSum("B", "in")
	g := testutil.NewGraph(t, "g", []node.Node{a, b}, "A.out -> B.in")
	other := testutil.NewGraph(t, "other", []node.Node{testutil.NewSum("X")})

	c := tree.NewCache()
	tr := c.GetOrBuild(ctx, g)
	assert.Same(t, tr, c.GetOrBuild(ctx, g), "wrapper is cached by id")
	c.GetOrBuild(ctx, other)
	assert.Equal(t, 2, c.Len())

	// Content changes are invisible until the caller invalidates.
	require.True(t, g.Disconnect("B", "in"))
	assert.Equal(t, map[string][]string{"A": {"B"}}, c.GetOrBuild(ctx, g).Adjacency())

	c.Invalidate("g")
	_, ok := c.Get("g")
	assert.False(t, ok)
	rebuilt := c.GetOrBuild(ctx, g)
	assert.NotSame(t, tr, rebuilt)
	assert.Empty(t, rebuilt.Adjacency())

	plan, err := rebuilt.Plan(ctx, nil)
	require.NoError(t, err)
	assert.True(t, c.ResetPlan("g"))
	again, err := rebuilt.Plan(ctx, nil)
	require.NoError(t, err)
	assert.NotSame(t, plan, again, "reset drops the memoized plan")
	assert.Same(t, rebuilt, c.GetOrBuild(ctx, g), "reset keeps the wrapper")
	assert.False(t, c.ResetPlan("missing"))

	c.InvalidateAll()
	assert.Zero(t, c.Len())
}

func TestCache_WalkLimit(t *testing.T) {
	ctx := context.Background()
	a, b, cc := testutil.NewSum("A"), testutil.NewSum("B", "in"), testutil.NewSum("C", "in")
	g := testutil.NewGraph(t, "g", []node.Node{a, b, cc}, "A.out -> B.in", "B.out -> C.in")

	tr := tree.NewCache(tree.WithWalkLimit(2)).GetOrBuild(ctx, g)
	_, err := tr.Plan(ctx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 visited nodes")
}
