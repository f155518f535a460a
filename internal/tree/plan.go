package tree

import (
	"context"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/scheduler"
	"github.com/vk/nodegridgo/internal/walk"
)

// planMemo is a single-entry memo keyed by the changed set.
type planMemo struct {
	key  string
	plan *scheduler.Plan
}

// Plan returns the evaluation plan for changed, nil meaning the whole tree.
// The last successful plan is memoized: asking again for the same changed
// set returns the identical *scheduler.Plan. Errors are not memoized.
func (t *Tree) Plan(ctx context.Context, changed []node.Node) (*scheduler.Plan, error) {
	key := t.planKey(changed)
	if t.memo != nil && t.memo.key == key {
		return t.memo.plan, nil
	}
	plan, err := scheduler.Compute(ctx, t, changed, walk.WithLimit(t.limit))
	if err != nil {
		return nil, err
	}
	t.memo = &planMemo{key: key, plan: plan}
	return plan, nil
}

// ResetPlan drops the memoized plan and keeps the adjacency.
func (t *Tree) ResetPlan() {
	t.memo = nil
}

// planKey identifies a changed set independent of order and duplicates.
// Nodes the tree does not schedule do not affect planning and are left out.
func (t *Tree) planKey(changed []node.Node) string {
	if changed == nil {
		return "*"
	}
	idx := make([]int, 0, len(changed))
	for _, n := range changed {
		if i := t.Index(n); i >= 0 {
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	var sb strings.Builder
	for i, v := range idx {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Pass is one prepared evaluation pass: the plan it follows and the lazy
// sequence of steps that still have to run.
type Pass struct {
	Plan  *scheduler.Plan
	Steps iter.Seq[scheduler.Step]
}

// Walk prepares one evaluation pass. The first walk of a Tree covers every
// node; later walks cover the nodes downstream of changed plus the nodes
// that failed during earlier walks, so an error is retried until it clears.
//
// Steps behaves like scheduler.Plan.Execute. After each yielded step
// returns, a node whose status carries an error is remembered for the next
// walk.
func (t *Tree) Walk(ctx context.Context, changed []node.Node) (*Pass, error) {
	var targets []node.Node
	if t.walked {
		targets = make([]node.Node, 0, len(changed)+len(t.failed))
		targets = append(targets, changed...)
		targets = append(targets, t.failed...)
	}

	// Only the first walk covers the whole tree, even when it fails, so a
	// cycle does not block edits elsewhere.
	t.walked = true
	plan, err := t.Plan(ctx, targets)
	if err != nil {
		return nil, err
	}
	t.failed = t.failed[:0]

	steps := func(yield func(scheduler.Step) bool) {
		for st := range plan.Execute() {
			if !yield(st) {
				return
			}
			if st.Node.Status().Err() != nil {
				t.failed = append(t.failed, st.Node)
			}
		}
	}
	return &Pass{Plan: plan, Steps: steps}, nil
}

// Failed returns the nodes that will be retried by the next Walk.
func (t *Tree) Failed() []node.Node { return slices.Clone(t.failed) }
