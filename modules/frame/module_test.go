package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func TestFrameKind(t *testing.T) {
	r := registry.Load(&Module{})
	require.NoError(t, r.Validate(context.Background()))

	settings := cty.ObjectVal(map[string]cty.Value{"start": cty.NumberIntVal(10), "step": cty.NumberFloatVal(0.5)})
	n, err := r.NewNode("f", "frame", cty.DynamicPseudoType, settings)
	require.NoError(t, err)
	assert.True(t, n.Animated())

	fn := n.(*Node)
	require.NoError(t, n.Compute(node.WithFrame(context.Background(), 4)))
	assert.True(t, fn.Output("frame").Value().Equals(cty.NumberIntVal(4)).True())
	assert.True(t, fn.Output("value").Value().Equals(cty.NumberIntVal(12)).True())

	require.NoError(t, n.Compute(context.Background()))
	assert.True(t, fn.Output("value").Value().Equals(cty.NumberIntVal(10)).True(), "no frame means frame zero")
}
