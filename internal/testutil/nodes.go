package testutil

import (
	"context"
	"errors"
	"math/big"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// SumNode adds its number inputs into its single "out" output. Fail, when
// set, makes Compute return that error instead. Calls counts Compute runs.
type SumNode struct {
	node.Base
	Fail  error
	Calls int
}

// NewSum returns a SumNode with the given number inputs.
func NewSum(id string, inputs ...string) *SumNode {
	n := &SumNode{Base: node.NewBase(id, "sum")}
	for _, in := range inputs {
		n.AddInput(node.NewSocket(in, cty.Number).WithDefault(cty.Zero))
	}
	n.AddOutput(node.NewSocket("out", cty.Number))
	return n
}

// Compute implements node.Computable.
func (n *SumNode) Compute(ctx context.Context) error {
	n.Calls++
	if n.Fail != nil {
		return n.Fail
	}
	total := new(big.Float)
	for _, in := range n.Inputs() {
		v := in.Value()
		if v.IsNull() || !v.IsKnown() {
			return errors.New("input " + in.Identifier + " has no value")
		}
		total.Add(total, v.AsBigFloat())
	}
	n.Output("out").SetValue(cty.NumberVal(total))
	return nil
}

// PanicNode panics when computed.
type PanicNode struct {
	node.Base
}

// NewPanic returns a PanicNode with one input and one output.
func NewPanic(id string) *PanicNode {
	n := &PanicNode{Base: node.NewBase(id, "panic")}
	n.AddInput(node.NewSocket("in", cty.DynamicPseudoType))
	n.AddOutput(node.NewSocket("out", cty.DynamicPseudoType))
	return n
}

// Compute implements node.Computable.
func (n *PanicNode) Compute(context.Context) error {
	panic("deliberate test panic")
}

// RerouteNode forwards its single input. The engine elides it, so Compute
// only runs if something schedules it directly.
type RerouteNode struct {
	node.Base
}

// NewReroute returns a pass-through node with sockets "in" and "out".
func NewReroute(id string) *RerouteNode {
	n := &RerouteNode{Base: node.NewBase(id, "reroute")}
	n.SetPassThrough(true)
	n.AddInput(node.NewSocket("in", cty.DynamicPseudoType))
	n.AddOutput(node.NewSocket("out", cty.DynamicPseudoType))
	return n
}

// Compute implements node.Computable.
func (n *RerouteNode) Compute(context.Context) error {
	n.Output("out").SetValue(n.Input("in").Value())
	return nil
}
