package node

import (
	"github.com/vk/nodegridgo/internal/conversion"
	"github.com/zclconf/go-cty/cty"
)

// Direction tells input sockets from output sockets.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// Socket is a typed port owned by exactly one node.
type Socket struct {
	// Identifier is unique among the owner's sockets of the same direction.
	Identifier string
	// Type is the declared value type. cty.DynamicPseudoType accepts anything.
	Type cty.Type
	// Policy controls conversion of differently typed upstream values.
	Policy conversion.Policy

	direction  Direction
	def        cty.Value
	hasDefault bool
	value      cty.Value
	hasValue   bool
}

// NewSocket returns a socket with the default conversion policy.
func NewSocket(id string, t cty.Type) *Socket {
	return &Socket{Identifier: id, Type: t, Policy: conversion.PolicyDefault}
}

// WithDefault sets the value an unconnected, unset socket reports.
func (s *Socket) WithDefault(v cty.Value) *Socket {
	s.def = v
	s.hasDefault = true
	return s
}

// WithPolicy sets the conversion policy.
func (s *Socket) WithPolicy(p conversion.Policy) *Socket {
	s.Policy = p
	return s
}

func (s *Socket) Direction() Direction { return s.direction }

// Value returns the current value, falling back to the default and then to
// a typed null.
func (s *Socket) Value() cty.Value {
	switch {
	case s.hasValue:
		return s.value
	case s.hasDefault:
		return s.def
	default:
		return cty.NullVal(s.Type)
	}
}

// SetValue stores a value. Output sockets are written by Compute; input
// sockets are written by the executor before Compute runs.
func (s *Socket) SetValue(v cty.Value) {
	s.value = v
	s.hasValue = true
}

// HasValue reports whether SetValue was called since the last Clear.
func (s *Socket) HasValue() bool { return s.hasValue }

// Clear drops the current value so Value falls back to the default.
func (s *Socket) Clear() {
	s.value = cty.NilVal
	s.hasValue = false
}
