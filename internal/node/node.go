package node

import "context"

// Computable is the capability every schedulable node provides.
type Computable interface {
	// Compute reads the node's input sockets and writes its output sockets.
	Compute(ctx context.Context) error
}

// Node is a unit of computation in an evaluation tree.
type Node interface {
	Computable

	// ID is unique within one tree and stable across edits.
	ID() string
	// Kind names the registered implementation, e.g. "math".
	Kind() string
	// Inputs and Outputs are returned in stable declared order.
	Inputs() []*Socket
	Outputs() []*Socket
	// PassThrough reports a reroute node that only forwards its single input.
	PassThrough() bool
	// Animated nodes depend on the current frame and are re-evaluated on
	// frame changes.
	Animated() bool
	Status() *Status
}

// Base implements everything in Node except Compute.
type Base struct {
	id          string
	kind        string
	inputs      []*Socket
	outputs     []*Socket
	passThrough bool
	animated    bool
	status      Status
}

// NewBase returns a Base with no sockets.
func NewBase(id, kind string) Base {
	return Base{id: id, kind: kind}
}

func (b *Base) ID() string            { return b.id }
func (b *Base) Kind() string          { return b.kind }
func (b *Base) Inputs() []*Socket     { return b.inputs }
func (b *Base) Outputs() []*Socket    { return b.outputs }
func (b *Base) PassThrough() bool     { return b.passThrough }
func (b *Base) Animated() bool        { return b.animated }
func (b *Base) Status() *Status       { return &b.status }
func (b *Base) SetPassThrough(v bool) { b.passThrough = v }
func (b *Base) SetAnimated(v bool)    { b.animated = v }

// AddInput appends an input socket and returns it.
func (b *Base) AddInput(s *Socket) *Socket {
	s.direction = DirectionInput
	b.inputs = append(b.inputs, s)
	return s
}

// AddOutput appends an output socket and returns it.
func (b *Base) AddOutput(s *Socket) *Socket {
	s.direction = DirectionOutput
	b.outputs = append(b.outputs, s)
	return s
}

// Input looks up an input socket by identifier.
func (b *Base) Input(id string) *Socket {
	return find(b.inputs, id)
}

// Output looks up an output socket by identifier.
func (b *Base) Output(id string) *Socket {
	return find(b.outputs, id)
}

func find(sockets []*Socket, id string) *Socket {
	for _, s := range sockets {
		if s.Identifier == id {
			return s
		}
	}
	return nil
}
