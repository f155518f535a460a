package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type constNode struct {
	Base
}

func (n *constNode) Compute(ctx context.Context) error {
	n.Output("out").SetValue(cty.NumberIntVal(1))
	return nil
}

func TestBase(t *testing.T) {
	n := &constNode{Base: NewBase("c1", "const")}
	in := n.AddInput(NewSocket("in", cty.Number).WithDefault(cty.NumberIntVal(5)))
	n.AddOutput(NewSocket("out", cty.Number))

	var _ Node = n

	assert.Equal(t, "c1", n.ID())
	assert.Equal(t, "const", n.Kind())
	assert.False(t, n.PassThrough())
	assert.False(t, n.Animated())
	assert.Equal(t, DirectionInput, in.Direction())
	assert.Equal(t, DirectionOutput, n.Output("out").Direction())
	assert.Nil(t, n.Input("missing"))

	require.NoError(t, n.Compute(context.Background()))
	assert.True(t, n.Output("out").Value().RawEquals(cty.NumberIntVal(1)))
}

func TestSocket_Value(t *testing.T) {
	s := NewSocket("x", cty.String)
	assert.True(t, s.Value().RawEquals(cty.NullVal(cty.String)), "unset socket without default is a typed null")

	s.WithDefault(cty.StringVal("d"))
	assert.Equal(t, "d", s.Value().AsString())
	assert.False(t, s.HasValue())

	s.SetValue(cty.StringVal("v"))
	assert.True(t, s.HasValue())
	assert.Equal(t, "v", s.Value().AsString())

	s.Clear()
	assert.Equal(t, "d", s.Value().AsString())
}

func TestStatus(t *testing.T) {
	var s Status
	assert.True(t, s.UpToDate(), "zero status is up to date")

	boom := errors.New("boom")
	s.MarkFailed(boom, time.Millisecond)
	assert.False(t, s.UpToDate())
	assert.Equal(t, boom, s.Err())
	assert.Equal(t, "boom", s.ErrorMessage())

	s.MarkOutdated()
	assert.Equal(t, boom, s.Err(), "outdated keeps the last error")

	s.MarkSkipped()
	assert.False(t, s.UpToDate())
	assert.NoError(t, s.Err())
	assert.Empty(t, s.ErrorMessage())

	s.MarkDone(2 * time.Millisecond)
	assert.True(t, s.UpToDate())
	assert.NoError(t, s.Err())
	assert.Equal(t, 2*time.Millisecond, s.Duration())
}

func TestFrame(t *testing.T) {
	_, ok := Frame(context.Background())
	assert.False(t, ok)

	frame, ok := Frame(WithFrame(context.Background(), 12))
	require.True(t, ok)
	assert.Equal(t, 12, frame)
}
