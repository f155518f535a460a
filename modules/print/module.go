// Package print provides the "print" node kind, a viewer that renders its
// input as JSON to a writer.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out defaults to os.Stdout.
	Out io.Writer
}

// Settings defines the graph-file settings of a print node.
type Settings struct {
	Label string `cty:"label"`
}

// Node writes "<label> = <json>" for every value it receives and publishes
// the rendered text on "text".
type Node struct {
	node.Base
	label string
	out   io.Writer
}

// Compute implements node.Computable.
func (n *Node) Compute(ctx context.Context) error {
	v := n.Input("in").Value()
	text, err := render(v)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Printing input", "node_id", n.ID(), "label", n.label)
	if _, err := fmt.Fprintf(n.out, "      %s = %s\n", n.label, text); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	n.Output("text").SetValue(cty.StringVal(text))
	return nil
}

func render(v cty.Value) (string, error) {
	if v.IsNull() {
		return "(null)", nil
	}
	if !v.IsWhollyKnown() {
		return "(unknown)", nil
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", v.Type().FriendlyName(), err)
	}
	return string(b), nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.RegisterKind(&registry.Kind{
		Name:        "print",
		NewSettings: func() any { return new(Settings) },
		Build: func(cfg registry.Config) (node.Node, error) {
			s := cfg.Settings.(*Settings)
			label := s.Label
			if label == "" {
				label = cfg.ID
			}
			n := &Node{Base: node.NewBase(cfg.ID, "print"), label: label, out: out}
			n.AddInput(node.NewSocket("in", cfg.Type))
			n.AddOutput(node.NewSocket("text", cty.String))
			return n, nil
		},
	})
}
