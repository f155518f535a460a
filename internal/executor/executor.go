// Package executor drives one evaluation pass over a tree: it pulls values
// along links, converts them when socket types differ, computes every
// planned node with panic recovery, writes status back onto the nodes and
// pushes a report to the presentation layer.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/nodegridgo/internal/conversion"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/vk/nodegridgo/internal/tree"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("nodegrid.executor")
	meter  = otel.Meter("nodegrid.executor")
)

// Trigger describes why a pass runs.
type Trigger struct {
	// Kind is the normalized event kind, recorded in the report.
	Kind string
	// Changed are the nodes whose inputs or settings changed. On the first
	// pass over a tree it is ignored and everything runs.
	Changed []node.Node
	// AnimationPlaying suppresses the presenter push for playback ticks.
	AnimationPlaying bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithPresenter sets where reports are pushed.
func WithPresenter(p report.Presenter) Option {
	return func(e *Executor) { e.presenter = p }
}

// WithConversions replaces the default conversion registry.
func WithConversions(r *conversion.Registry) Option {
	return func(e *Executor) {
		if r != nil {
			e.conversions = r
		}
	}
}

// Executor runs passes. It holds no per-tree state and may be shared by
// every tree of a session; like the rest of the engine it is not safe for
// concurrent use.
type Executor struct {
	presenter   report.Presenter
	conversions *conversion.Registry
	now         func() time.Time

	metrics metrics
}

// New returns an Executor with the default conversion registry and no
// presenter.
func New(opts ...Option) *Executor {
	e := &Executor{
		conversions: conversion.NewRegistry(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates tr once. It returns an error only when no plan could be
// built (a dependency cycle or the walk limit); node failures are recorded
// on the nodes and in the report instead.
func (e *Executor) Run(ctx context.Context, tr *tree.Tree, trig Trigger) (*report.Report, error) {
	e.metrics.init(ctx)
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "tree_id", tr.ID(), "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "nodegrid.Pass",
		trace.WithAttributes(
			attribute.String("nodegrid.tree_id", tr.ID()),
			attribute.String("nodegrid.run_id", runID),
			attribute.String("nodegrid.trigger", trig.Kind),
			attribute.Int("nodegrid.changed", len(trig.Changed)),
		),
	)
	defer span.End()

	started := e.now()
	pass, err := tr.Walk(ctx, trig.Changed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning failed")
		return nil, fmt.Errorf("planning tree %q: %w", tr.ID(), err)
	}
	logger.Debug("Pass started.", "trigger", trig.Kind, "planned", pass.Plan.Len())

	ran := make(map[node.Node]report.Result, pass.Plan.Len())
	for st := range pass.Steps {
		ran[st.Node] = e.runStep(ctx, st)
	}

	results := make([]report.Result, 0, pass.Plan.Len())
	for _, n := range pass.Plan.Nodes() {
		res, ok := ran[n]
		if !ok {
			res = report.Result{NodeID: n.ID(), Kind: n.Kind(), Outcome: report.OutcomeSkipped}
			e.metrics.outcome(ctx, n, report.OutcomeSkipped)
		}
		results = append(results, res)
	}

	rep := &report.Report{
		RunID:   runID,
		TreeID:  tr.ID(),
		Trigger: trig.Kind,
		Started: started,
		Elapsed: e.now().Sub(started),
		Results: results,
		Nodes:   report.Snapshot(tr.Nodes()),
	}
	rep.CumulativeTimes, err = report.CumulativeTimes(tr, sinks(tr))
	if err != nil {
		logger.Debug("Cumulative update times unavailable.", "error", err)
	}

	done, failed, skipped := rep.Counts()
	span.SetAttributes(
		attribute.Int("nodegrid.done", done),
		attribute.Int("nodegrid.failed", failed),
		attribute.Int("nodegrid.skipped", skipped),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d nodes failed", failed))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	e.metrics.pass(ctx, tr.ID(), rep.Elapsed)
	logger.Debug("Pass finished.", "done", done, "failed", failed, "skipped", skipped, "elapsed", rep.Elapsed)

	if trig.AnimationPlaying || e.presenter == nil {
		return rep, nil
	}
	if err := e.presenter.Present(ctx, rep); err != nil {
		logger.Warn("Presenting report failed.", "error", err)
	}
	return rep, nil
}

// sinks are the nodes nothing in the tree consumes.
func sinks(tr *tree.Tree) []node.Node {
	var out []node.Node
	for _, n := range tr.Nodes() {
		if len(tr.Next(n)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// metrics are created on the first Run from the global otel meter.
type metrics struct {
	initialized  bool
	nodeDuration metric.Float64Histogram
	nodeOutcomes metric.Int64Counter
	passDuration metric.Float64Histogram
}

func (m *metrics) init(ctx context.Context) {
	if m.initialized {
		return
	}
	m.initialized = true

	var initErrors []string
	var err error
	m.nodeDuration, err = meter.Float64Histogram("nodegrid_node_duration_seconds",
		metric.WithDescription("Time spent computing each node"),
		metric.WithUnit("s"),
	)
	if err != nil {
		initErrors = append(initErrors, "node_duration: "+err.Error())
	}
	m.nodeOutcomes, err = meter.Int64Counter("nodegrid_node_outcomes_total",
		metric.WithDescription("Planned nodes by outcome"),
	)
	if err != nil {
		initErrors = append(initErrors, "node_outcomes: "+err.Error())
	}
	m.passDuration, err = meter.Float64Histogram("nodegrid_pass_duration_seconds",
		metric.WithDescription("Total time of one evaluation pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		initErrors = append(initErrors, "pass_duration: "+err.Error())
	}

	if len(initErrors) > 0 {
		ctxlog.FromContext(ctx).Error("Failed to initialize some executor metrics.",
			"failed_count", len(initErrors),
			"errors", initErrors,
		)
	}
}

func (m *metrics) outcome(ctx context.Context, n node.Node, o report.Outcome) {
	if m.nodeOutcomes == nil {
		return
	}
	m.nodeOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", n.Kind()),
		attribute.String("outcome", o.String()),
	))
}

func (m *metrics) computed(ctx context.Context, n node.Node, d time.Duration) {
	if m.nodeDuration == nil {
		return
	}
	m.nodeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("kind", n.Kind())))
}

func (m *metrics) pass(ctx context.Context, treeID string, d time.Duration) {
	if m.passDuration == nil {
		return
	}
	m.passDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("tree", treeID)))
}
