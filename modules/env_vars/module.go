// Package env_vars provides the "env" node kind, which reads the process
// environment.
package env_vars

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Lookup replaces os.LookupEnv and Environ replaces os.Environ; tests
	// set them.
	Lookup  func(string) (string, bool)
	Environ func() []string
}

// Settings names the variable published on "value".
type Settings struct {
	Name     string `cty:"name"`
	Default  string `cty:"default"`
	Required bool   `cty:"required"`
}

// Node publishes one variable on "value" and the whole environment on
// "all".
type Node struct {
	node.Base
	settings Settings
	lookup   func(string) (string, bool)
	environ  func() []string
}

// Compute implements node.Computable.
func (n *Node) Compute(context.Context) error {
	envMap := make(map[string]string)
	for _, e := range n.environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	all, err := gocty.ToCtyValue(envMap, cty.Map(cty.String))
	if err != nil {
		return fmt.Errorf("converting environment: %w", err)
	}
	n.Output("all").SetValue(all)

	if n.settings.Name == "" {
		n.Output("value").SetValue(cty.NullVal(cty.String))
		return nil
	}
	v, ok := n.lookup(n.settings.Name)
	if !ok {
		if n.settings.Required {
			return fmt.Errorf("environment variable %q is not set", n.settings.Name)
		}
		v = n.settings.Default
	}
	n.Output("value").SetValue(cty.StringVal(v))
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	lookup, environ := m.Lookup, m.Environ
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if environ == nil {
		environ = os.Environ
	}
	r.RegisterKind(&registry.Kind{
		Name:        "env",
		NewSettings: func() any { return new(Settings) },
		Build: func(cfg registry.Config) (node.Node, error) {
			n := &Node{
				Base:     node.NewBase(cfg.ID, "env"),
				settings: *cfg.Settings.(*Settings),
				lookup:   lookup,
				environ:  environ,
			}
			n.AddOutput(node.NewSocket("value", cty.String))
			n.AddOutput(node.NewSocket("all", cty.Map(cty.String)))
			return n, nil
		},
	})
}
