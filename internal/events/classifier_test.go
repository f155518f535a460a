package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/ctxlog"
)

func TestClassifier_WaveBoundary(t *testing.T) {
	ctx := context.Background()
	var classified []Normalized
	c := NewClassifier(WithHook(func(_ context.Context, n Normalized) {
		classified = append(classified, n)
	}))

	steps := []struct {
		kind    RawKind
		subject string
	}{
		{RawAddNode, "n1"},
		{RawNodeUpdate, "n1"},
		{RawAddNode, "n2"},
		{RawNodeUpdate, "n2"},
		{RawAddLink, "l1"},
	}
	for _, s := range steps {
		norm, err := c.Record(ctx, s.kind, s.subject)
		require.NoError(t, err)
		assert.Nil(t, norm, "%s must not close the wave", s.kind)
	}
	assert.Empty(t, classified)
	assert.Equal(t, 3, c.Pending(), "trivial node updates are not buffered")

	norm, err := c.Record(ctx, RawTreeUpdate, "tree")
	require.NoError(t, err)
	require.NotNil(t, norm)
	require.Len(t, classified, 1, "one terminating event classifies exactly once")

	assert.Equal(t, KindNodesAdded, norm.Kind, "the leading event decides the kind")
	assert.Equal(t, RawTreeUpdate, norm.Trigger)
	assert.Equal(t, []string{"n1", "n2"}, norm.Subjects)
	assert.Len(t, norm.Wave, 4)
	assert.Equal(t, Event{Kind: RawAddNode, Subject: "n1"}, norm.Wave.Leading())
	assert.Equal(t, RawTreeUpdate, norm.Wave.Terminator().Kind)
	assert.Zero(t, c.Pending())
}

func TestClassifier_Terminators(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		kind RawKind
		want Kind
	}{
		{RawTreeUpdate, KindTreeUpdate},
		{RawSubtreeUpdate, KindTreeUpdate},
		{RawNodePropertyUpdate, KindPropertyUpdate},
		{RawUndo, KindUndo},
		{RawFrameChange, KindFrameChange},
	}
	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			c := NewClassifier()
			norm, err := c.Record(ctx, tc.kind, "")
			require.NoError(t, err)
			require.NotNil(t, norm)
			assert.Equal(t, tc.want, norm.Kind)
			assert.Empty(t, norm.Subjects)
		})
	}

	for _, k := range []RawKind{RawAddNode, RawCopyNode, RawFreeNode, RawAddLink, RawNodeUpdate} {
		assert.False(t, IsTerminator(k), k)
	}
}

func TestClassifier_DefaultTableIsExhaustive(t *testing.T) {
	table := DefaultTable()
	all := []RawKind{
		RawTreeUpdate, RawSubtreeUpdate, RawNodeUpdate, RawAddNode, RawCopyNode,
		RawFreeNode, RawAddLink, RawNodePropertyUpdate, RawUndo, RawFrameChange,
	}
	for _, k := range all {
		_, ok := table[k]
		assert.True(t, ok, "%s is unmapped", k)
	}
	assert.Len(t, table, len(all))
}

func TestClassifier_UnmappedKind(t *testing.T) {
	ctx := context.Background()
	table := DefaultTable()
	delete(table, RawAddLink)

	hooked := 0
	c := NewClassifier(WithTable(table), WithHook(func(context.Context, Normalized) { hooked++ }))

	_, err := c.Record(ctx, RawAddLink, "l1")
	require.NoError(t, err, "unmapped kinds fail at classification, not when buffered")

	norm, err := c.Record(ctx, RawTreeUpdate, "")
	require.Error(t, err)
	assert.Nil(t, norm)
	assert.True(t, errors.Is(err, ErrUnmappedKind))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, RawAddLink, cfgErr.Kind)
	assert.Contains(t, err.Error(), "add_link_to_node")
	assert.Zero(t, hooked)
	assert.Zero(t, c.Pending(), "the failed wave is discarded")

	norm, err = c.Record(ctx, RawUndo, "")
	require.NoError(t, err, "the next wave starts clean")
	assert.Equal(t, KindUndo, norm.Kind)
	assert.Equal(t, 1, hooked)
}

func TestClassifier_Debug(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	enabled := false
	reads := 0
	c := NewClassifier(WithDebug(func() bool {
		reads++
		return enabled
	}))

	_, err := c.Record(ctx, RawAddNode, "n1")
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	enabled = true
	_, err = c.Record(ctx, RawNodeUpdate, "n1")
	require.NoError(t, err)
	_, err = c.Record(ctx, RawTreeUpdate, "")
	require.NoError(t, err)

	assert.Equal(t, 3, reads, "the toggle is read on every call")
	assert.Equal(t, 2, strings.Count(buf.String(), "Raw event recorded."))
	assert.Contains(t, buf.String(), "kind=node_update")
}
