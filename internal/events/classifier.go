package events

import (
	"context"

	"github.com/vk/nodegridgo/internal/ctxlog"
)

// Event is one buffered raw notification.
type Event struct {
	Kind RawKind
	// Subject identifies what changed (a tree, node or link ID); it may be
	// empty.
	Subject string
}

// Wave is an ordered run of events ended by a terminating kind.
type Wave []Event

// Leading is the event that opened the wave.
func (w Wave) Leading() Event { return w[0] }

// Terminator is the event that closed the wave.
func (w Wave) Terminator() Event { return w[len(w)-1] }

// Normalized is the classification of one wave.
type Normalized struct {
	Kind Kind
	// Trigger is the raw kind that closed the wave.
	Trigger RawKind
	// Subjects are the non-empty subjects of the leading run of events of
	// the same raw kind as the first one.
	Subjects []string
	Wave     Wave
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTable replaces DefaultTable.
func WithTable(t Table) Option {
	return func(c *Classifier) { c.table = t }
}

// WithDebug installs a toggle for per-event diagnostic logging. The toggle
// is read on every Record call.
func WithDebug(enabled func() bool) Option {
	return func(c *Classifier) { c.debug = enabled }
}

// WithHook registers a consumer for classified waves.
func WithHook(hook func(context.Context, Normalized)) Option {
	return func(c *Classifier) { c.hook = hook }
}

// Classifier buffers raw events into waves. It is not safe for concurrent
// use.
type Classifier struct {
	table Table
	debug func() bool
	hook  func(context.Context, Normalized)
	wave  Wave
}

// NewClassifier returns a classifier using DefaultTable unless an option
// replaces it.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{table: DefaultTable()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending reports how many events are buffered in the open wave.
func (c *Classifier) Pending() int { return len(c.wave) }

// Record adds one event. It returns a non-nil *Normalized only when kind
// terminates the wave. An unmapped kind anywhere in the wave fails the
// classification with a *ConfigurationError; the buffer is cleared either
// way.
func (c *Classifier) Record(ctx context.Context, kind RawKind, subject string) (*Normalized, error) {
	if c.debug != nil && c.debug() {
		ctxlog.FromContext(ctx).Debug("Raw event recorded.", "kind", string(kind), "subject", subject, "pending", len(c.wave))
	}
	if IsTrivial(kind) {
		return nil, nil
	}

	c.wave = append(c.wave, Event{Kind: kind, Subject: subject})
	if !IsTerminator(kind) {
		return nil, nil
	}

	wave := c.wave
	c.wave = nil
	norm, err := c.classify(wave)
	if err != nil {
		return nil, err
	}
	if c.hook != nil {
		c.hook(ctx, *norm)
	}
	return norm, nil
}

func (c *Classifier) classify(wave Wave) (*Normalized, error) {
	for _, ev := range wave {
		if _, ok := c.table[ev.Kind]; !ok {
			return nil, &ConfigurationError{Kind: ev.Kind}
		}
	}

	lead := wave.Leading()
	norm := &Normalized{
		Kind:    c.table[lead.Kind],
		Trigger: wave.Terminator().Kind,
		Wave:    wave,
	}
	for _, ev := range wave {
		if ev.Kind != lead.Kind {
			break
		}
		if ev.Subject != "" {
			norm.Subjects = append(norm.Subjects, ev.Subject)
		}
	}
	return norm, nil
}
