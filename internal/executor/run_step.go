package executor

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/vk/nodegridgo/internal/scheduler"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// runStep evaluates one planned node and writes its status.
func (e *Executor) runStep(ctx context.Context, st scheduler.Step) report.Result {
	n := st.Node
	logger := ctxlog.FromContext(ctx).With("node_id", n.ID(), "kind", n.Kind())

	ctx, span := tracer.Start(ctx, n.ID(),
		trace.WithAttributes(
			attribute.String("nodegrid.node_id", n.ID()),
			attribute.String("nodegrid.kind", n.Kind()),
		),
	)
	defer span.End()

	start := e.now()
	err := e.pullInputs(ctx, st)
	if err == nil {
		err = compute(ctx, n)
	}
	d := e.now().Sub(start)

	res := report.Result{NodeID: n.ID(), Kind: n.Kind(), Duration: d}
	if err != nil {
		n.Status().MarkFailed(err, d)
		res.Outcome = report.OutcomeFailed
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if pe, ok := asPanic(err); ok {
			logger.Error("Node panicked.", "panic", pe.value, "stack", string(pe.stack))
		} else {
			logger.Debug("Node failed.", "error", err)
		}
	} else {
		n.Status().MarkDone(d)
		res.Outcome = report.OutcomeDone
		span.SetStatus(codes.Ok, "")
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("Node computed.", "duration", d, "outputs", formatOutputsForLogs(n))
		}
	}
	e.metrics.computed(ctx, n, d)
	e.metrics.outcome(ctx, n, res.Outcome)
	return res
}

// pullInputs copies upstream output values into the node's inputs.
// Unlinked inputs are cleared so they report their defaults.
func (e *Executor) pullInputs(ctx context.Context, st scheduler.Step) error {
	n := st.Node
	for i, in := range n.Inputs() {
		up := st.Upstream[i]
		if up == nil {
			in.Clear()
			continue
		}
		v := up.Value()
		from := up.Type
		if from == cty.DynamicPseudoType {
			from = v.Type()
		}
		converted, err := e.conversions.Convert(v, from, in.Type, in.Policy)
		if err != nil {
			return &NodeError{NodeID: n.ID(), Kind: n.Kind(), Socket: in.Identifier, Err: &inputError{err: err}}
		}
		in.SetValue(converted)
	}
	return nil
}

// compute calls Compute and turns a panic into an error.
func compute(ctx context.Context, n node.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &NodeError{NodeID: n.ID(), Kind: n.Kind(), Err: &panicError{value: r, stack: debug.Stack()}}
		}
	}()
	if err := n.Compute(ctx); err != nil {
		return &NodeError{NodeID: n.ID(), Kind: n.Kind(), Err: err}
	}
	return nil
}

func asPanic(err error) (*panicError, bool) {
	var pe *panicError
	ok := errors.As(err, &pe)
	return pe, ok
}
