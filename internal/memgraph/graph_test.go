package memgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/memgraph"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/testutil"
	"github.com/vk/nodegridgo/modules/frame"
)

func TestGraph_AddAndRemove(t *testing.T) {
	g := memgraph.New("g")
	a, b := testutil.NewSum("A"), testutil.NewSum("B", "in")
	require.NoError(t, g.Add(a, b))
	assert.ErrorIs(t, g.Add(testutil.NewSum("A")), memgraph.ErrDuplicateNode)
	assert.Equal(t, []string{"A", "B"}, testutil.IDs(g.Nodes()))

	require.NoError(t, g.Connect("A", "out", "B", "in"))
	require.Len(t, g.Links(), 1)

	assert.True(t, g.Remove("A"))
	assert.False(t, g.Remove("A"))
	assert.Empty(t, g.Links(), "links touching a removed node go with it")
	_, ok := g.Node("A")
	assert.False(t, ok)
}

func TestGraph_Connect(t *testing.T) {
	g := testutil.NewGraph(t, "g", []node.Node{testutil.NewSum("A"), testutil.NewSum("B"), testutil.NewSum("C", "in")}, "A.out -> C.in")

	require.NoError(t, g.Connect("B", "out", "C", "in"))
	links := g.Links()
	require.Len(t, links, 1, "an input has at most one incoming link")
	assert.Equal(t, "B", links[0].FromNode.ID())

	assert.ErrorIs(t, g.Connect("X", "out", "C", "in"), memgraph.ErrNodeNotFound)
	assert.ErrorIs(t, g.Connect("A", "in", "C", "in"), memgraph.ErrSocketNotFound, "A has no output named in")
	assert.ErrorIs(t, g.Connect("A", "out", "C", "out"), memgraph.ErrSocketNotFound, "outputs cannot be link targets")

	require.NoError(t, g.SetMuted("C", "in", true))
	assert.True(t, g.Links()[0].Muted)
	require.NoError(t, g.SetMuted("C", "in", false))
	assert.False(t, g.Links()[0].Muted)

	assert.True(t, g.Disconnect("C", "in"))
	assert.False(t, g.Disconnect("C", "in"))
	assert.ErrorIs(t, g.SetMuted("C", "in", true), memgraph.ErrSocketNotFound)
}

func TestGraph_Animated(t *testing.T) {
	f := frame.New("F", frame.Settings{Step: 1})
	g := testutil.NewGraph(t, "g", []node.Node{testutil.NewSum("A"), f})
	assert.Equal(t, []string{"F"}, testutil.IDs(g.Animated()))
}
