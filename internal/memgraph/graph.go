// Package memgraph is a mutable in-memory host graph. It is what the CLI
// loads graph files into and what tests build graphs with; the engine only
// sees it through tree.Source.
package memgraph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/tree"
)

var (
	ErrDuplicateNode  = errors.New("duplicate node")
	ErrNodeNotFound   = errors.New("node not found")
	ErrSocketNotFound = errors.New("socket not found")
)

// Graph is a set of nodes and links identified by a stable ID. Every input
// socket has at most one incoming link; Connect replaces an existing one.
type Graph struct {
	id    string
	nodes []node.Node
	byID  map[string]node.Node
	links []tree.Link
}

var _ tree.Source = (*Graph)(nil)

// New returns an empty graph.
func New(id string) *Graph {
	return &Graph{id: id, byID: make(map[string]node.Node)}
}

func (g *Graph) ID() string { return g.id }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []node.Node { return slices.Clone(g.nodes) }

// Links returns the links in insertion order.
func (g *Graph) Links() []tree.Link { return slices.Clone(g.links) }

// Node looks a node up by ID.
func (g *Graph) Node(id string) (node.Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Animated returns the animated nodes in insertion order.
func (g *Graph) Animated() []node.Node {
	var out []node.Node
	for _, n := range g.nodes {
		if n.Animated() {
			out = append(out, n)
		}
	}
	return out
}

// Add appends nodes. IDs must be unique within the graph.
func (g *Graph) Add(nodes ...node.Node) error {
	for _, n := range nodes {
		if _, exists := g.byID[n.ID()]; exists {
			return fmt.Errorf("adding %q to graph %q: %w", n.ID(), g.id, ErrDuplicateNode)
		}
		g.byID[n.ID()] = n
		g.nodes = append(g.nodes, n)
	}
	return nil
}

// Remove deletes a node and every link touching it.
func (g *Graph) Remove(id string) bool {
	n, ok := g.byID[id]
	if !ok {
		return false
	}
	delete(g.byID, id)
	g.nodes = slices.DeleteFunc(g.nodes, func(m node.Node) bool { return m == n })
	g.links = slices.DeleteFunc(g.links, func(l tree.Link) bool { return l.FromNode == n || l.ToNode == n })
	return true
}

// Connect links output fromSocket of node from to input toSocket of node
// to, replacing any link already feeding that input.
func (g *Graph) Connect(from, fromSocket, to, toSocket string) error {
	fn, out, err := g.socket(from, fromSocket, node.DirectionOutput)
	if err != nil {
		return err
	}
	tn, in, err := g.socket(to, toSocket, node.DirectionInput)
	if err != nil {
		return err
	}
	g.links = slices.DeleteFunc(g.links, func(l tree.Link) bool { return l.ToSocket == in })
	g.links = append(g.links, tree.Link{FromNode: fn, FromSocket: out, ToNode: tn, ToSocket: in})
	return nil
}

// Disconnect removes the link feeding an input and reports whether there
// was one.
func (g *Graph) Disconnect(to, toSocket string) bool {
	_, in, err := g.socket(to, toSocket, node.DirectionInput)
	if err != nil {
		return false
	}
	before := len(g.links)
	g.links = slices.DeleteFunc(g.links, func(l tree.Link) bool { return l.ToSocket == in })
	return len(g.links) != before
}

// SetMuted mutes or unmutes the link feeding an input.
func (g *Graph) SetMuted(to, toSocket string, muted bool) error {
	_, in, err := g.socket(to, toSocket, node.DirectionInput)
	if err != nil {
		return err
	}
	for i := range g.links {
		if g.links[i].ToSocket == in {
			g.links[i].Muted = muted
			return nil
		}
	}
	return fmt.Errorf("no link into %s.%s: %w", to, toSocket, ErrSocketNotFound)
}

func (g *Graph) socket(id, socket string, dir node.Direction) (node.Node, *node.Socket, error) {
	n, ok := g.byID[id]
	if !ok {
		return nil, nil, fmt.Errorf("%q in graph %q: %w", id, g.id, ErrNodeNotFound)
	}
	sockets := n.Inputs()
	if dir == node.DirectionOutput {
		sockets = n.Outputs()
	}
	for _, s := range sockets {
		if s.Identifier == socket {
			return n, s, nil
		}
	}
	return nil, nil, fmt.Errorf("%s socket %s.%s: %w", dir, id, socket, ErrSocketNotFound)
}
