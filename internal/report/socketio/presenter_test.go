package socketio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/report"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "absolute url", opts: Options{URL: "http://localhost:3000/socket.io/"}},
		{name: "relative url", opts: Options{URL: "/socket.io/"}, wantErr: true},
		{name: "garbage", opts: Options{URL: "://nope"}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(tc.opts)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultEvent, p.opts.Event)
			assert.Equal(t, "/", p.opts.Namespace)
			assert.False(t, p.Connected())
		})
	}
}

func TestPresentAfterClose(t *testing.T) {
	p, err := New(Options{URL: "http://localhost:1/socket.io/"})
	require.NoError(t, err)
	p.Close()
	err = p.Present(context.Background(), &report.Report{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPayload(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &report.Report{
		RunID:   "r1",
		TreeID:  "t1",
		Trigger: "tree_update",
		Started: started,
		Elapsed: 1500 * time.Millisecond,
		Results: []report.Result{
			{NodeID: "A", Outcome: report.OutcomeDone, Duration: time.Second},
			{NodeID: "B", Outcome: report.OutcomeFailed, Err: errors.New("boom")},
		},
		Nodes: []report.NodeState{
			{NodeID: "A", Kind: "value", UpToDate: true, Duration: time.Second},
			{NodeID: "B", Kind: "math", Error: "boom"},
		},
		CumulativeTimes: map[string]time.Duration{"A": time.Second},
	}

	got := Payload(r)
	assert.Equal(t, "r1", got["run_id"])
	assert.Equal(t, "t1", got["tree_id"])
	assert.Equal(t, "2024-05-01T12:00:00.000Z", got["started"])
	assert.InDelta(t, 1.5, got["elapsed_s"], 1e-9)

	nodes := got["nodes"].([]map[string]any)
	require.Len(t, nodes, 2)
	assert.Equal(t, map[string]any{
		"id": "A", "kind": "value", "up_to_date": true, "error": "", "update_s": 1.0, "cumulative_s": 1.0,
	}, nodes[0])
	assert.Nil(t, nodes[1]["cumulative_s"])
	assert.Equal(t, "boom", nodes[1]["error"])

	results := got["results"].([]map[string]any)
	require.Len(t, results, 2)
	assert.NotContains(t, results[0], "error")
	assert.Equal(t, "failed", results[1]["outcome"])
	assert.Equal(t, "boom", results[1]["error"])
}
