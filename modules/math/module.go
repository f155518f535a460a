// Package math provides the "math" node kind: a binary operation on two
// number inputs.
package math

import (
	"context"
	"errors"
	"fmt"
	stdmath "math"
	"slices"
	"strings"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrDivisionByZero is returned by div and mod with a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

type opFunc func(a, b cty.Value) (cty.Value, error)

var ops = map[string]opFunc{
	"add": func(a, b cty.Value) (cty.Value, error) { return a.Add(b), nil },
	"sub": func(a, b cty.Value) (cty.Value, error) { return a.Subtract(b), nil },
	"mul": func(a, b cty.Value) (cty.Value, error) { return a.Multiply(b), nil },
	"div": func(a, b cty.Value) (cty.Value, error) {
		if b.RawEquals(cty.Zero) {
			return cty.NilVal, ErrDivisionByZero
		}
		return a.Divide(b), nil
	},
	"mod": func(a, b cty.Value) (cty.Value, error) {
		if b.RawEquals(cty.Zero) {
			return cty.NilVal, ErrDivisionByZero
		}
		return a.Modulo(b), nil
	},
	"min": func(a, b cty.Value) (cty.Value, error) {
		if a.LessThan(b).True() {
			return a, nil
		}
		return b, nil
	},
	"max": func(a, b cty.Value) (cty.Value, error) {
		if a.GreaterThan(b).True() {
			return a, nil
		}
		return b, nil
	},
	"pow": func(a, b cty.Value) (cty.Value, error) {
		x, _ := a.AsBigFloat().Float64()
		y, _ := b.AsBigFloat().Float64()
		r := stdmath.Pow(x, y)
		if stdmath.IsNaN(r) {
			return cty.NilVal, fmt.Errorf("pow(%g, %g) is not a number", x, y)
		}
		return cty.NumberFloatVal(r), nil
	},
}

// Ops lists the supported operations, sorted.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Settings picks the operation and the values of unlinked inputs.
type Settings struct {
	Op string  `cty:"op"`
	A  float64 `cty:"a"`
	B  float64 `cty:"b"`
}

// Node computes out = a <op> b.
type Node struct {
	node.Base
	op string
	fn opFunc
}

// New returns a math node.
func New(id string, s Settings) (*Node, error) {
	fn, ok := ops[s.Op]
	if !ok {
		return nil, fmt.Errorf("unknown op %q (supported: %s)", s.Op, strings.Join(Ops(), ", "))
	}
	n := &Node{Base: node.NewBase(id, "math"), op: s.Op, fn: fn}
	n.AddInput(node.NewSocket("a", cty.Number).WithDefault(cty.NumberFloatVal(s.A)))
	n.AddInput(node.NewSocket("b", cty.Number).WithDefault(cty.NumberFloatVal(s.B)))
	n.AddOutput(node.NewSocket("out", cty.Number))
	return n, nil
}

// Compute implements node.Computable.
func (n *Node) Compute(context.Context) error {
	a, b := n.Input("a").Value(), n.Input("b").Value()
	for _, in := range []struct {
		name string
		v    cty.Value
	}{{"a", a}, {"b", b}} {
		if in.v.IsNull() || !in.v.IsKnown() {
			return fmt.Errorf("input %q has no value", in.name)
		}
	}
	out, err := n.fn(a, b)
	if err != nil {
		return fmt.Errorf("%s: %w", n.op, err)
	}
	n.Output("out").SetValue(out)
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(&registry.Kind{
		Name:        "math",
		NewSettings: func() any { return &Settings{Op: "add"} },
		Build: func(cfg registry.Config) (node.Node, error) {
			return New(cfg.ID, *cfg.Settings.(*Settings))
		},
	})
}
