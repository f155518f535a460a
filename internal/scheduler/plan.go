package scheduler

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/walk"
)

// Topology is the graph view a plan is computed from. Next and Previous
// must return neighbours in original order.
type Topology interface {
	walk.Graph[node.Node]
	// Nodes lists every schedulable node in original order.
	Nodes() []node.Node
	// Index is the position of n in Nodes, or -1 if n is not schedulable.
	Index(n node.Node) int
	// Provenance is the output socket feeding input socket in, or nil.
	Provenance(in *node.Socket) *node.Socket
	// Owner is the node an output socket belongs to, or nil.
	Owner(out *node.Socket) node.Node
}

// Step is one entry of a plan: a node and, for each of its inputs in
// declared order, the upstream output socket feeding it (nil if unlinked).
type Step struct {
	Node     node.Node
	Upstream []*node.Socket
}

// Plan is an ordered list of steps. It is immutable once computed and can
// be executed any number of times.
type Plan struct {
	steps  []Step
	owners map[*node.Socket]node.Node
}

// Steps returns the plan in evaluation order.
func (p *Plan) Steps() []Step { return p.steps }

// Len reports the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

// Nodes returns the planned nodes in evaluation order.
func (p *Plan) Nodes() []node.Node {
	out := make([]node.Node, len(p.steps))
	for i, st := range p.steps {
		out[i] = st.Node
	}
	return out
}

// Owner returns the node owning an upstream socket referenced by the plan.
func (p *Plan) Owner(s *node.Socket) node.Node { return p.owners[s] }

// Execute yields the steps in order, lazily. Before yielding a step it
// checks the nodes owning its upstream sockets; if any of them is not up to
// date the step's node is marked skipped and the step is not yielded. The
// check runs after the caller finished the previous step, so a failure
// recorded by the caller is seen by everything downstream of it.
func (p *Plan) Execute() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, st := range p.steps {
			if p.blocked(st) {
				st.Node.Status().MarkSkipped()
				continue
			}
			if !yield(st) {
				return
			}
		}
	}
}

func (p *Plan) blocked(st Step) bool {
	for _, up := range st.Upstream {
		if up == nil {
			continue
		}
		if owner := p.owners[up]; owner != nil && !owner.Status().UpToDate() {
			return true
		}
	}
	return false
}

// Compute builds the plan for the nodes downstream of changed. A nil
// changed slice plans the whole tree. Changed nodes that the topology does
// not schedule (reroutes, removed nodes) are ignored.
func Compute(ctx context.Context, topo Topology, changed []node.Node, opts ...walk.Option) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	start := changed
	if start == nil {
		start = topo.Nodes()
	}
	start = slices.DeleteFunc(slices.Clone(start), func(n node.Node) bool {
		return topo.Index(n) < 0
	})
	slices.SortStableFunc(start, func(a, b node.Node) int {
		return topo.Index(a) - topo.Index(b)
	})

	reachable, err := walk.Collect(walk.BFS(topo, start, walk.Forward, opts...))
	if err != nil {
		return nil, fmt.Errorf("collecting downstream nodes: %w", err)
	}
	slices.SortFunc(reachable, func(a, b node.Node) int {
		return topo.Index(a) - topo.Index(b)
	})

	sub := newRestricted(topo, reachable)
	ordered, err := walk.Collect(walk.SortedWalk[node.Node](sub, reachable, opts...))
	if err != nil {
		return nil, fmt.Errorf("ordering %d reachable nodes: %w", len(reachable), err)
	}

	p := &Plan{
		steps:  make([]Step, 0, len(ordered)),
		owners: make(map[*node.Socket]node.Node),
	}
	for _, n := range ordered {
		inputs := n.Inputs()
		st := Step{Node: n, Upstream: make([]*node.Socket, len(inputs))}
		for i, in := range inputs {
			up := topo.Provenance(in)
			st.Upstream[i] = up
			if up != nil {
				p.owners[up] = topo.Owner(up)
			}
		}
		p.steps = append(p.steps, st)
	}

	logger.Debug("Plan computed.", "changed", len(start), "reachable", len(reachable), "steps", len(p.steps))
	return p, nil
}

// restricted hides every edge with an endpoint outside the reachable set.
type restricted struct {
	topo Topology
	in   map[node.Node]struct{}
}

func newRestricted(topo Topology, nodes []node.Node) restricted {
	in := make(map[node.Node]struct{}, len(nodes))
	for _, n := range nodes {
		in[n] = struct{}{}
	}
	return restricted{topo: topo, in: in}
}

func (r restricted) Next(n node.Node) []node.Node     { return r.filter(r.topo.Next(n)) }
func (r restricted) Previous(n node.Node) []node.Node { return r.filter(r.topo.Previous(n)) }

func (r restricted) filter(nodes []node.Node) []node.Node {
	out := make([]node.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := r.in[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
