package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/walk"
)

// Outcome is what happened to one planned node during a pass.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeFailed
	// OutcomeSkipped marks a node that was not computed because something
	// it consumes is outdated.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the explicit per-node outcome collected by the driver loop.
type Result struct {
	NodeID   string
	Kind     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// NodeState is a snapshot of one node's status after a pass.
type NodeState struct {
	NodeID   string
	Kind     string
	UpToDate bool
	Error    string
	Duration time.Duration
}

// Report describes one evaluation pass of one tree.
type Report struct {
	RunID  string
	TreeID string
	// Trigger is the normalized event kind that caused the pass.
	Trigger string
	Started time.Time
	Elapsed time.Duration
	// Results are in evaluation order.
	Results []Result
	// Nodes covers every node of the tree in original order.
	Nodes []NodeState
	// CumulativeTimes maps a node ID to the time spent producing its
	// outputs, upstream included. Outdated nodes are absent.
	CumulativeTimes map[string]time.Duration
}

// Counts tallies Results by outcome.
func (r *Report) Counts() (done, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeDone:
			done++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			skipped++
		}
	}
	return done, failed, skipped
}

// Errors maps the ID of every node carrying an error to its message.
func (r *Report) Errors() map[string]string {
	out := make(map[string]string)
	for _, n := range r.Nodes {
		if n.Error != "" {
			out[n.NodeID] = n.Error
		}
	}
	return out
}

// Snapshot captures the status of nodes in the given order.
func Snapshot(nodes []node.Node) []NodeState {
	out := make([]NodeState, len(nodes))
	for i, n := range nodes {
		st := n.Status()
		out[i] = NodeState{
			NodeID:   n.ID(),
			Kind:     n.Kind(),
			UpToDate: st.UpToDate(),
			Error:    st.ErrorMessage(),
			Duration: st.Duration(),
		}
	}
	return out
}

// CumulativeTimes walks upstream from sinks in dependency order and sums,
// for every up-to-date node, its own duration plus the cumulative time of
// the nodes feeding it. A node fed by more than one node instead sums the
// durations of its whole upstream closure, so a shared ancestor is counted
// once.
func CumulativeTimes(g walk.Graph[node.Node], sinks []node.Node, opts ...walk.Option) (map[string]time.Duration, error) {
	cum := make(map[string]time.Duration)
	for n, err := range walk.SortedWalk(g, sinks, opts...) {
		if err != nil {
			return nil, fmt.Errorf("summing update times: %w", err)
		}
		if !n.Status().UpToDate() {
			continue
		}
		prev := g.Previous(n)
		if len(prev) > 1 {
			var total time.Duration
			for up, err := range walk.SortedWalk(g, []node.Node{n}, opts...) {
				if err != nil {
					return nil, fmt.Errorf("summing update times of %q: %w", n.ID(), err)
				}
				if up.Status().UpToDate() {
					total += up.Status().Duration()
				}
			}
			cum[n.ID()] = total
			continue
		}
		total := n.Status().Duration()
		for _, up := range prev {
			total += cum[up.ID()]
		}
		cum[n.ID()] = total
	}
	return cum, nil
}

// Presenter receives one Report per non-animation pass.
type Presenter interface {
	Present(ctx context.Context, r *Report) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, r *Report) error

func (f PresenterFunc) Present(ctx context.Context, r *Report) error { return f(ctx, r) }

// Multi fans a report out to every presenter, in order. All presenters run
// even when one fails; the errors are joined.
type Multi []Presenter

func (m Multi) Present(ctx context.Context, r *Report) error {
	var errs []error
	for _, p := range m {
		if err := p.Present(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPresenter writes a summary line per pass and a warning per failed
// node through the context logger.
type LogPresenter struct{}

func (LogPresenter) Present(ctx context.Context, r *Report) error {
	logger := ctxlog.FromContext(ctx)
	done, failed, skipped := r.Counts()
	logger.Info("Evaluation finished.",
		"trigger", r.Trigger,
		"done", done,
		"failed", failed,
		"skipped", skipped,
		"elapsed", r.Elapsed,
	)
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			logger.Warn("Node failed.", "node_id", res.NodeID, "kind", res.Kind, "error", res.Err)
		}
	}
	return nil
}
