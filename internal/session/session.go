// Package session owns everything one engine instance keeps between
// evaluations: the tree cache, the event classifier, the executor and the
// host graphs it evaluates. It is the explicit replacement for process-wide
// state and the entry point a host drives.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/events"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/vk/nodegridgo/internal/tree"
)

// ErrUnknownGraph is returned for a graph ID that was never attached.
var ErrUnknownGraph = errors.New("unknown graph")

// Graph is a host graph a session can evaluate.
type Graph interface {
	tree.Source
	// Node looks a node up by ID.
	Node(id string) (node.Node, bool)
	// Animated lists the nodes that depend on the current frame.
	Animated() []node.Node
}

// Option configures a Session.
type Option func(*Session)

// WithTreeOptions are applied to every tree the session builds.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(s *Session) { s.treeOpts = append(s.treeOpts, opts...) }
}

// WithClassifierOptions are passed to the session's event classifier.
func WithClassifierOptions(opts ...events.Option) Option {
	return func(s *Session) { s.classifierOpts = append(s.classifierOpts, opts...) }
}

// Session is not safe for concurrent use; a host serialises its calls.
type Session struct {
	exec       *executor.Executor
	cache      *tree.Cache
	classifier *events.Classifier
	graphs     map[string]Graph

	frame   int
	playing bool

	treeOpts       []tree.Option
	classifierOpts []events.Option
}

// New returns a session evaluating with exec.
func New(exec *executor.Executor, opts ...Option) *Session {
	s := &Session{
		exec:   exec,
		graphs: make(map[string]Graph),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = tree.NewCache(s.treeOpts...)
	s.classifier = events.NewClassifier(s.classifierOpts...)
	return s
}

// Attach registers a host graph. Attaching a graph under an ID that is
// already known replaces it and drops its cached tree.
func (s *Session) Attach(g Graph) {
	if _, ok := s.graphs[g.ID()]; ok {
		s.cache.Invalidate(g.ID())
	}
	s.graphs[g.ID()] = g
}

// Detach forgets a host graph and its cached tree.
func (s *Session) Detach(id string) {
	delete(s.graphs, id)
	s.cache.Invalidate(id)
}

// Graph returns an attached graph.
func (s *Session) Graph(id string) (Graph, bool) {
	g, ok := s.graphs[id]
	return g, ok
}

// Tree returns the cached tree of a graph without building one.
func (s *Session) Tree(id string) (*tree.Tree, bool) {
	return s.cache.Get(id)
}

// Frame returns the current animation frame and whether playback is on.
func (s *Session) Frame() (int, bool) { return s.frame, s.playing }

// InvalidateGraph drops the cached tree of one graph. Its next evaluation
// rebuilds the adjacency and covers the whole graph.
func (s *Session) InvalidateGraph(id string) { s.cache.Invalidate(id) }

// InvalidateAll drops every cached tree.
func (s *Session) InvalidateAll() { s.cache.InvalidateAll() }

// ResetPlan drops only the memoized plan of a graph's tree and reports
// whether the tree was cached.
func (s *Session) ResetPlan(id string) bool { return s.cache.ResetPlan(id) }

// Update evaluates the nodes of graph id downstream of changed. kind is
// recorded in the report.
func (s *Session) Update(ctx context.Context, id string, changed []node.Node, kind string) (*report.Report, error) {
	return s.run(ctx, id, executor.Trigger{Kind: kind, Changed: changed})
}

// SetFrame moves the animation to frame and evaluates the animated nodes
// of graph id. While playing, the report is not pushed to the presenter.
// The plan stays memoized across frames.
func (s *Session) SetFrame(ctx context.Context, id string, frame int, playing bool) (*report.Report, error) {
	s.frame, s.playing = frame, playing
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGraph, id)
	}
	return s.run(ctx, id, executor.Trigger{
		Kind:             string(events.KindFrameChange),
		Changed:          g.Animated(),
		AnimationPlaying: playing,
	})
}

// Record feeds one raw host event for graph id to the classifier. When the
// event closes a wave, the normalized event is handled and the report of
// the resulting pass is returned; otherwise both results are nil.
func (s *Session) Record(ctx context.Context, id string, kind events.RawKind, subject string) (*report.Report, error) {
	norm, err := s.classifier.Record(ctx, kind, subject)
	if err != nil {
		return nil, fmt.Errorf("classifying %s event: %w", kind, err)
	}
	if norm == nil {
		return nil, nil
	}
	return s.Handle(ctx, id, *norm)
}

// Handle routes a normalized event. Topology edits drop the graph's tree,
// undo drops every tree, property edits keep the tree and evaluate the
// subjects, frame changes evaluate the animated nodes.
func (s *Session) Handle(ctx context.Context, id string, ev events.Normalized) (*report.Report, error) {
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGraph, id)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Handling event.", "graph_id", id, "kind", string(ev.Kind), "subjects", ev.Subjects)

	switch ev.Kind {
	case events.KindUndo:
		s.cache.InvalidateAll()
		return s.Update(ctx, id, nil, string(ev.Kind))
	case events.KindTreeUpdate, events.KindNodesAdded, events.KindNodesCopied, events.KindNodesRemoved, events.KindLinksChanged:
		s.cache.Invalidate(id)
		return s.Update(ctx, id, s.resolve(ctx, g, ev.Subjects), string(ev.Kind))
	case events.KindPropertyUpdate:
		return s.Update(ctx, id, s.resolve(ctx, g, ev.Subjects), string(ev.Kind))
	case events.KindFrameChange:
		frame := s.frame
		if len(ev.Subjects) > 0 {
			if f, err := strconv.Atoi(ev.Subjects[len(ev.Subjects)-1]); err == nil {
				frame = f
			}
		}
		return s.SetFrame(ctx, id, frame, s.playing)
	default:
		return nil, fmt.Errorf("no handler for event kind %q", ev.Kind)
	}
}

// resolve maps subjects to nodes of g. Subjects that are not node IDs of g,
// such as removed nodes, are skipped.
func (s *Session) resolve(ctx context.Context, g Graph, subjects []string) []node.Node {
	out := make([]node.Node, 0, len(subjects))
	for _, id := range subjects {
		n, ok := g.Node(id)
		if !ok {
			ctxlog.FromContext(ctx).Debug("Event subject is not a node, ignoring.", "subject", id)
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *Session) run(ctx context.Context, id string, trig executor.Trigger) (*report.Report, error) {
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGraph, id)
	}
	tr := s.cache.GetOrBuild(ctx, g)
	return s.exec.Run(node.WithFrame(ctx, s.frame), tr, trig)
}
