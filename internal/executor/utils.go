package executor

import (
	"fmt"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// ctyValueToInterface converts a cty.Value to a plain Go value.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// formatOutputsForLogs maps each output socket to a loggable value.
func formatOutputsForLogs(n node.Node) map[string]any {
	out := make(map[string]any, len(n.Outputs()))
	for _, s := range n.Outputs() {
		v, err := ctyValueToInterface(s.Value())
		if err != nil {
			out[s.Identifier] = fmt.Sprintf("[unloggable cty.Value: %v]", err)
			continue
		}
		out[s.Identifier] = v
	}
	return out
}
