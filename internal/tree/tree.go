package tree

import (
	"context"
	"slices"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/scheduler"
	"github.com/vk/nodegridgo/internal/walk"
)

// Link is a directed connection from an output socket to an input socket.
type Link struct {
	FromNode   node.Node
	FromSocket *node.Socket
	ToNode     node.Node
	ToSocket   *node.Socket
	// Muted links stay in the host graph but are not evaluated.
	Muted bool
}

// Source describes a host graph at the moment a Tree is built.
type Source interface {
	// ID identifies the graph across edits.
	ID() string
	// Nodes lists every node in a stable order. This order is the
	// tie-break of every plan.
	Nodes() []node.Node
	Links() []Link
}

// Option tunes Build.
type Option func(*Tree)

// WithWalkLimit caps the number of nodes any walk over the tree may visit.
func WithWalkLimit(limit int) Option {
	return func(t *Tree) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// Tree is the cached adjacency view of one graph. Reroutes never appear in
// it.
type Tree struct {
	id    string
	nodes []node.Node
	index map[node.Node]int
	next  map[node.Node][]node.Node
	prev  map[node.Node][]node.Node
	prov  map[*node.Socket]*node.Socket
	owner map[*node.Socket]node.Node
	limit int

	memo *planMemo
	// walked is set by the first successful Walk; until then a walk covers
	// the whole tree.
	walked bool
	// failed holds nodes whose Compute failed during earlier walks.
	failed []node.Node
}

var _ scheduler.Topology = (*Tree)(nil)

// Build constructs the adjacency view of src.
func Build(ctx context.Context, src Source, opts ...Option) *Tree {
	logger := ctxlog.FromContext(ctx)

	b := newBuilder(src)
	b.addLinks(src.Links())
	elided := b.elideReroutes()

	t := &Tree{
		id:    src.ID(),
		index: make(map[node.Node]int),
		next:  make(map[node.Node][]node.Node),
		prev:  make(map[node.Node][]node.Node),
		prov:  b.prov,
		owner: b.owner,
		limit: walk.DefaultLimit,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, n := range b.order {
		if n.PassThrough() {
			continue
		}
		t.index[n] = len(t.nodes)
		t.nodes = append(t.nodes, n)
	}
	for n, set := range b.from {
		t.prev[n] = t.ordered(set)
	}
	for n, set := range b.to {
		t.next[n] = t.ordered(set)
	}

	logger.Debug("Tree built.", "tree_id", t.id, "nodes", len(t.nodes), "reroutes_elided", elided, "provenance", len(t.prov))
	return t
}

func (t *Tree) ordered(set map[node.Node]struct{}) []node.Node {
	out := make([]node.Node, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b node.Node) int { return t.index[a] - t.index[b] })
	return out
}

// ID is the identifier of the source graph.
func (t *Tree) ID() string { return t.id }

// Nodes lists every non-reroute node in source order.
func (t *Tree) Nodes() []node.Node { return t.nodes }

// Len reports the number of non-reroute nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Index is the position of n in Nodes, or -1.
func (t *Tree) Index(n node.Node) int {
	if i, ok := t.index[n]; ok {
		return i
	}
	return -1
}

// Next returns the direct downstream neighbours of n in source order. The
// slice must not be modified.
func (t *Tree) Next(n node.Node) []node.Node { return t.next[n] }

// Previous returns the direct upstream neighbours of n in source order. The
// slice must not be modified.
func (t *Tree) Previous(n node.Node) []node.Node { return t.prev[n] }

// Provenance returns the output socket feeding input socket in, after
// reroute elision, or nil.
func (t *Tree) Provenance(in *node.Socket) *node.Socket { return t.prov[in] }

// Owner returns the node owning an output socket that feeds some input.
func (t *Tree) Owner(out *node.Socket) node.Node { return t.owner[out] }

// Adjacency returns the forward adjacency keyed by node ID. Nodes without
// downstream neighbours are omitted.
func (t *Tree) Adjacency() map[string][]string {
	out := make(map[string][]string, len(t.next))
	for n, next := range t.next {
		if len(next) == 0 {
			continue
		}
		ids := make([]string, len(next))
		for i, m := range next {
			ids[i] = m.ID()
		}
		out[n.ID()] = ids
	}
	return out
}
