package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/events"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/memgraph"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/vk/nodegridgo/internal/session"
	"github.com/vk/nodegridgo/internal/testutil"
	"github.com/vk/nodegridgo/modules/frame"
	"github.com/zclconf/go-cty/cty"
)

type recorder struct {
	reports []*report.Report
}

func (r *recorder) Present(_ context.Context, rep *report.Report) error {
	r.reports = append(r.reports, rep)
	return nil
}

func ids(rep *report.Report) []string {
	out := make([]string, len(rep.Results))
	for i, r := range rep.Results {
		out[i] = r.NodeID
	}
	return out
}

// scenario builds A -> B -> C <- D.
func scenario(t *testing.T, id string) *memgraph.Graph {
	t.Helper()
	return testutil.NewGraph(t, id, []node.Node{
		testutil.NewSum("A"),
		testutil.NewSum("B", "in"),
		testutil.NewSum("C", "b", "d"),
		testutil.NewSum("D"),
	}, "A.out -> B.in", "B.out -> C.b", "D.out -> C.d")
}

func TestSession_Update(t *testing.T) {
	ctx := context.Background()
	s := session.New(executor.New())
	g := scenario(t, "g")
	s.Attach(g)

	_, ok := s.Tree("g")
	assert.False(t, ok, "trees are built lazily")
	assert.False(t, s.ResetPlan("g"))

	rep, err := s.Update(ctx, "g", nil, "manual")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "C"}, ids(rep))
	assert.Equal(t, "manual", rep.Trigger)

	tr, ok := s.Tree("g")
	require.True(t, ok)
	assert.True(t, s.ResetPlan("g"))

	d, _ := g.Node("D")
	rep, err = s.Update(ctx, "g", []node.Node{d}, "manual")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C"}, ids(rep))
	again, _ := s.Tree("g")
	assert.Same(t, tr, again)

	_, err = s.Update(ctx, "missing", nil, "manual")
	assert.ErrorIs(t, err, session.ErrUnknownGraph)
}

func TestSession_RecordRoutesEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("property update keeps the tree and follows the subjects", func(t *testing.T) {
		s := session.New(executor.New())
		s.Attach(scenario(t, "g"))
		_, err := s.Update(ctx, "g", nil, "initial")
		require.NoError(t, err)
		before, _ := s.Tree("g")

		rep, err := s.Record(ctx, "g", events.RawNodePropertyUpdate, "A")
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.Equal(t, string(events.KindPropertyUpdate), rep.Trigger)
		assert.Equal(t, []string{"A", "B", "C"}, ids(rep))

		after, _ := s.Tree("g")
		assert.Same(t, before, after)
	})

	t.Run("topology edits rebuild the tree", func(t *testing.T) {
		s := session.New(executor.New())
		g := scenario(t, "g")
		s.Attach(g)
		_, err := s.Update(ctx, "g", nil, "initial")
		require.NoError(t, err)
		before, _ := s.Tree("g")

		require.NoError(t, g.Add(testutil.NewSum("E", "in")))
		testutil.Connect(t, g, "C.out -> E.in")

		rep, err := s.Record(ctx, "g", events.RawAddNode, "E")
		require.NoError(t, err)
		assert.Nil(t, rep, "the wave is still open")
		rep, err = s.Record(ctx, "g", events.RawNodeUpdate, "E")
		require.NoError(t, err)
		assert.Nil(t, rep)
		rep, err = s.Record(ctx, "g", events.RawAddLink, "C.out->E.in")
		require.NoError(t, err)
		assert.Nil(t, rep)

		rep, err = s.Record(ctx, "g", events.RawTreeUpdate, "g")
		require.NoError(t, err)
		require.NotNil(t, rep)
		assert.Equal(t, string(events.KindNodesAdded), rep.Trigger)
		assert.Equal(t, []string{"A", "B", "D", "C", "E"}, ids(rep), "a rebuilt tree evaluates everything")

		after, _ := s.Tree("g")
		assert.NotSame(t, before, after)
	})

	t.Run("undo drops every tree", func(t *testing.T) {
		s := session.New(executor.New())
		s.Attach(scenario(t, "g1"))
		s.Attach(scenario(t, "g2"))
		for _, id := range []string{"g1", "g2"} {
			_, err := s.Update(ctx, id, nil, "initial")
			require.NoError(t, err)
		}

		rep, err := s.Record(ctx, "g1", events.RawUndo, "")
		require.NoError(t, err)
		assert.Len(t, rep.Results, 4)

		_, ok := s.Tree("g1")
		assert.True(t, ok, "the undone graph is evaluated again")
		_, ok = s.Tree("g2")
		assert.False(t, ok)
	})

	t.Run("unmapped kinds are configuration errors", func(t *testing.T) {
		table := events.DefaultTable()
		delete(table, events.RawAddNode)
		s := session.New(executor.New(), session.WithClassifierOptions(events.WithTable(table)))
		s.Attach(scenario(t, "g"))

		_, err := s.Record(ctx, "g", events.RawAddNode, "A")
		require.NoError(t, err)
		_, err = s.Record(ctx, "g", events.RawTreeUpdate, "g")
		var cfgErr *events.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, events.RawAddNode, cfgErr.Kind)
	})
}

func TestSession_Frames(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := session.New(executor.New(executor.WithPresenter(rec)))

	f := frame.New("F", frame.Settings{Step: 1})
	sum := testutil.NewSum("S", "in")
	still := testutil.NewSum("Still")
	g := testutil.NewGraph(t, "anim", []node.Node{f, sum, still}, "F.value -> S.in")
	s.Attach(g)

	_, err := s.Update(ctx, "anim", nil, "initial")
	require.NoError(t, err)
	require.Len(t, rec.reports, 1)

	rep, err := s.SetFrame(ctx, "anim", 3, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "S"}, ids(rep), "only animated nodes and their consumers")
	assert.True(t, sum.Output("out").Value().Equals(cty.NumberIntVal(3)).True())
	assert.Len(t, rec.reports, 1, "playback ticks are not presented")

	tr, _ := s.Tree("anim")
	p1, err := tr.Plan(ctx, g.Animated())
	require.NoError(t, err)

	rep, err = s.Record(ctx, "anim", events.RawFrameChange, "7")
	require.NoError(t, err)
	assert.Equal(t, string(events.KindFrameChange), rep.Trigger)
	assert.True(t, sum.Output("out").Value().Equals(cty.NumberIntVal(7)).True())
	current, playing := s.Frame()
	assert.Equal(t, 7, current)
	assert.True(t, playing)

	p2, err := tr.Plan(ctx, g.Animated())
	require.NoError(t, err)
	assert.Same(t, p1, p2, "frame changes keep the plan")

	_, err = s.SetFrame(ctx, "anim", 8, false)
	require.NoError(t, err)
	assert.Len(t, rec.reports, 2, "a paused frame change is presented")
	assert.Equal(t, 1, still.Calls)
}

func TestSession_AttachAndDetach(t *testing.T) {
	ctx := context.Background()
	s := session.New(executor.New())
	s.Attach(scenario(t, "g"))
	_, err := s.Update(ctx, "g", nil, "initial")
	require.NoError(t, err)

	s.Attach(scenario(t, "g"))
	_, ok := s.Tree("g")
	assert.False(t, ok, "re-attaching drops the stale tree")

	s.Detach("g")
	_, ok = s.Graph("g")
	assert.False(t, ok)
	_, err = s.SetFrame(ctx, "g", 1, false)
	assert.ErrorIs(t, err, session.ErrUnknownGraph)
}
