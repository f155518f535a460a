// Package value provides the "value" node kind: a constant published on a
// single output.
package value

import (
	"context"
	"fmt"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Settings defines the graph-file settings of a value node.
type Settings struct {
	Value cty.Value `cty:"value"`
}

// Node publishes its value on "out".
type Node struct {
	node.Base
	typ cty.Type
	val cty.Value
}

// New returns a value node. A declared type other than
// cty.DynamicPseudoType fixes the output type and v is converted to it.
func New(id string, typ cty.Type, v cty.Value) (*Node, error) {
	n := &Node{Base: node.NewBase(id, "value"), typ: typ}
	if err := n.Set(v); err != nil {
		return nil, err
	}
	outType := typ
	if outType == cty.DynamicPseudoType && !n.val.IsNull() {
		outType = n.val.Type()
	}
	n.AddOutput(node.NewSocket("out", outType))
	return n, nil
}

// Value returns the current constant.
func (n *Node) Value() cty.Value { return n.val }

// Set replaces the constant. The host marks the node changed afterwards.
func (n *Node) Set(v cty.Value) error {
	if v == cty.NilVal {
		v = cty.NullVal(n.typ)
	}
	if n.typ != cty.DynamicPseudoType {
		converted, err := convert.Convert(v, n.typ)
		if err != nil {
			return fmt.Errorf("value does not fit declared type %s: %w", n.typ.FriendlyName(), err)
		}
		v = converted
	}
	n.val = v
	return nil
}

// Compute implements node.Computable.
func (n *Node) Compute(context.Context) error {
	n.Output("out").SetValue(n.val)
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name:        "value",
		NewSettings: func() any { return &Settings{Value: cty.NullVal(cty.DynamicPseudoType)} },
		Build: func(cfg registry.Config) (node.Node, error) {
			return New(cfg.ID, cfg.Type, cfg.Settings.(*Settings).Value)
		},
	})
}
