package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/memgraph"
	"github.com/vk/nodegridgo/internal/node"
)

// NewGraph builds a memgraph from nodes and links written as
// "from.socket -> to.socket".
func NewGraph(t *testing.T, id string, nodes []node.Node, links ...string) *memgraph.Graph {
	t.Helper()
	g := memgraph.New(id)
	require.NoError(t, g.Add(nodes...))
	for _, l := range links {
		Connect(t, g, l)
	}
	return g
}

// Connect adds one "from.socket -> to.socket" link to g.
func Connect(t *testing.T, g *memgraph.Graph, link string) {
	t.Helper()
	from, to, ok := strings.Cut(link, "->")
	require.True(t, ok, "link %q must look like a.out -> b.in", link)
	fromNode, fromSocket := splitRef(t, from)
	toNode, toSocket := splitRef(t, to)
	require.NoError(t, g.Connect(fromNode, fromSocket, toNode, toSocket), "connecting %s", link)
}

func splitRef(t *testing.T, ref string) (string, string) {
	t.Helper()
	n, s, ok := strings.Cut(strings.TrimSpace(ref), ".")
	require.True(t, ok, fmt.Sprintf("socket reference %q must look like node.socket", ref))
	return n, s
}

// IDs maps nodes to their IDs.
func IDs(nodes []node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}
