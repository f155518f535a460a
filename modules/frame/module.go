// Package frame provides the animated "frame" node kind, which publishes
// the current animation frame.
package frame

import (
	"context"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Settings maps the frame number to start + frame*step.
type Settings struct {
	Start float64 `cty:"start"`
	Step  float64 `cty:"step"`
}

// Node is re-evaluated on every frame change.
type Node struct {
	node.Base
	settings Settings
}

// New returns a frame node.
func New(id string, s Settings) *Node {
	n := &Node{Base: node.NewBase(id, "frame"), settings: s}
	n.SetAnimated(true)
	n.AddOutput(node.NewSocket("frame", cty.Number))
	n.AddOutput(node.NewSocket("value", cty.Number))
	return n
}

// Compute implements node.Computable. A context without a frame counts as
// frame zero.
func (n *Node) Compute(ctx context.Context) error {
	f, _ := node.Frame(ctx)
	n.Output("frame").SetValue(cty.NumberIntVal(int64(f)))
	n.Output("value").SetValue(cty.NumberFloatVal(n.settings.Start + float64(f)*n.settings.Step))
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name:        "frame",
		NewSettings: func() any { return &Settings{Step: 1} },
		Build: func(cfg registry.Config) (node.Node, error) {
			return New(cfg.ID, *cfg.Settings.(*Settings)), nil
		},
	})
}
