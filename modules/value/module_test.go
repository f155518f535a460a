package value

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func TestValueKind(t *testing.T) {
	r := registry.Load(&Module{})
	require.NoError(t, r.Validate(context.Background()))

	t.Run("declared type converts the setting", func(t *testing.T) {
		settings := cty.ObjectVal(map[string]cty.Value{"value": cty.StringVal("42")})
		n, err := r.NewNode("v", "value", cty.Number, settings)
		require.NoError(t, err)
		require.NoError(t, n.Compute(context.Background()))

		out := n.Outputs()[0]
		assert.Equal(t, cty.Number, out.Type)
		assert.True(t, out.Value().Equals(cty.NumberIntVal(42)).True())
	})

	t.Run("undeclared type follows the value", func(t *testing.T) {
		settings := cty.ObjectVal(map[string]cty.Value{"value": cty.True})
		n, err := r.NewNode("v", "value", cty.DynamicPseudoType, settings)
		require.NoError(t, err)
		assert.Equal(t, cty.Bool, n.Outputs()[0].Type)
	})

	t.Run("value that does not fit", func(t *testing.T) {
		settings := cty.ObjectVal(map[string]cty.Value{"value": cty.StringVal("nope")})
		_, err := r.NewNode("v", "value", cty.Number, settings)
		assert.ErrorContains(t, err, "does not fit declared type number")
	})
}

func TestNode_Set(t *testing.T) {
	n, err := New("v", cty.Number, cty.NumberIntVal(1))
	require.NoError(t, err)

	require.NoError(t, n.Set(cty.StringVal("2")))
	assert.True(t, n.Value().Equals(cty.NumberIntVal(2)).True())
	assert.Error(t, n.Set(cty.True))
	assert.True(t, n.Value().Equals(cty.NumberIntVal(2)).True(), "a rejected value keeps the old one")

	require.NoError(t, n.Set(cty.NilVal))
	assert.True(t, n.Value().IsNull())
}
