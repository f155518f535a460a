// Package reroute provides the pass-through "reroute" node kind. The engine
// splices reroutes out of the graph, so Compute only runs when a host
// evaluates one directly.
package reroute

import (
	"context"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Node forwards "in" to "out".
type Node struct {
	node.Base
}

// New returns a reroute node.
func New(id string) *Node {
	n := &Node{Base: node.NewBase(id, "reroute")}
	n.SetPassThrough(true)
	n.AddInput(node.NewSocket("in", cty.DynamicPseudoType))
	n.AddOutput(node.NewSocket("out", cty.DynamicPseudoType))
	return n
}

// Compute implements node.Computable.
func (n *Node) Compute(context.Context) error {
	n.Output("out").SetValue(n.Input("in").Value())
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name: "reroute",
		Build: func(cfg registry.Config) (node.Node, error) {
			return New(cfg.ID), nil
		},
	})
}
