package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrPanic is matched by a NodeError whose Compute panicked.
	ErrPanic = errors.New("compute panicked")
	// ErrInput is matched by a NodeError raised while pulling an input.
	ErrInput = errors.New("input conversion failed")
)

// NodeError is the soft error stored on a node whose evaluation failed. It
// never aborts a pass.
type NodeError struct {
	NodeID string
	Kind   string
	// Socket is set when pulling this input failed.
	Socket string
	Err    error
}

func (e *NodeError) Error() string {
	if e.Socket != "" {
		return fmt.Sprintf("node %q (%s) input %q: %v", e.NodeID, e.Kind, e.Socket, e.Err)
	}
	return fmt.Sprintf("node %q (%s): %v", e.NodeID, e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// panicError carries a recovered panic value.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (e *panicError) Unwrap() error { return ErrPanic }

// inputError marks a failed conversion so NodeError matches ErrInput.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }

func (e *inputError) Unwrap() []error { return []error{ErrInput, e.err} }
