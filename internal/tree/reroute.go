package tree

import "github.com/vk/nodegridgo/internal/node"

type nodeSet = map[node.Node]struct{}

// builder holds the mutable maps a Tree is built from.
type builder struct {
	order []node.Node
	known nodeSet
	// from maps a node to its upstream neighbours, to to its downstream ones.
	from map[node.Node]nodeSet
	to   map[node.Node]nodeSet
	// prov maps an input socket to the output socket feeding it.
	prov map[*node.Socket]*node.Socket
	// owner maps a linked output socket to its node.
	owner map[*node.Socket]node.Node
	// consumers is the inverse of prov.
	consumers map[*node.Socket][]*node.Socket
	reroutes  []node.Node
}

func newBuilder(src Source) *builder {
	b := &builder{
		order:     src.Nodes(),
		known:     make(nodeSet),
		from:      make(map[node.Node]nodeSet),
		to:        make(map[node.Node]nodeSet),
		prov:      make(map[*node.Socket]*node.Socket),
		owner:     make(map[*node.Socket]node.Node),
		consumers: make(map[*node.Socket][]*node.Socket),
	}
	for _, n := range b.order {
		b.known[n] = struct{}{}
		if n.PassThrough() {
			b.reroutes = append(b.reroutes, n)
		}
	}
	return b
}

func (b *builder) addLinks(links []Link) {
	for _, l := range links {
		if l.Muted {
			continue
		}
		if _, ok := b.known[l.FromNode]; !ok {
			continue
		}
		if _, ok := b.known[l.ToNode]; !ok {
			continue
		}
		b.connect(l.FromNode, l.ToNode)
		b.prov[l.ToSocket] = l.FromSocket
		b.owner[l.FromSocket] = l.FromNode
		b.consumers[l.FromSocket] = append(b.consumers[l.FromSocket], l.ToSocket)
	}
}

func (b *builder) connect(from, to node.Node) {
	if b.to[from] == nil {
		b.to[from] = make(nodeSet)
	}
	b.to[from][to] = struct{}{}
	if b.from[to] == nil {
		b.from[to] = make(nodeSet)
	}
	b.from[to][from] = struct{}{}
}

// elideReroutes splices every reroute out of the adjacency maps in source
// order and returns how many were removed.
func (b *builder) elideReroutes() int {
	for _, r := range b.reroutes {
		ups, downs := b.from[r], b.to[r]
		for up := range ups {
			delete(b.to[up], r)
			for down := range downs {
				if down != r && up != r {
					b.connect(up, down)
				}
			}
		}
		for down := range downs {
			delete(b.from[down], r)
		}
		delete(b.from, r)
		delete(b.to, r)

		src := b.source(r)
		for _, out := range r.Outputs() {
			for _, in := range b.consumers[out] {
				if src == nil {
					delete(b.prov, in)
					continue
				}
				b.prov[in] = src
				b.consumers[src] = append(b.consumers[src], in)
			}
			delete(b.consumers, out)
		}
	}

	// Reroute sockets are only needed while chasing.
	for _, r := range b.reroutes {
		for _, in := range r.Inputs() {
			delete(b.prov, in)
		}
		for _, out := range r.Outputs() {
			delete(b.owner, out)
		}
	}
	return len(b.reroutes)
}

// source follows a reroute's input upstream through any chain of reroutes
// and returns the first real output socket, or nil if the chain is
// unconnected. A chain longer than the number of reroutes is a loop of
// reroutes and has no source.
func (b *builder) source(r node.Node) *node.Socket {
	for range len(b.reroutes) {
		inputs := r.Inputs()
		if len(inputs) == 0 {
			return nil
		}
		src := b.prov[inputs[0]]
		if src == nil {
			return nil
		}
		owner := b.owner[src]
		if owner == nil || !owner.PassThrough() {
			return src
		}
		r = owner
	}
	return nil
}
