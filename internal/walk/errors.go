package walk

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is matched by every *CycleError.
	ErrCycle = errors.New("dependency cycle")
	// ErrIterationLimit is matched by every *IterationLimitError.
	ErrIterationLimit = errors.New("iteration limit exceeded")
)

// CycleError reports a real cycle found by a topological walk.
type CycleError struct {
	// Node is the node whose dependency closed the cycle.
	Node any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected at node %s", describe(e.Node))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// IterationLimitError reports a walk that visited more nodes than its cap.
// It says nothing about whether the graph is actually cyclic.
type IterationLimitError struct {
	Walk  string
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("%s walk exceeded %d visited nodes: graph is oversized or likely cyclic", e.Walk, e.Limit)
}

func (e *IterationLimitError) Unwrap() error { return ErrIterationLimit }

// describe prefers a node's ID when it has one.
func describe(n any) string {
	if idn, ok := n.(interface{ ID() string }); ok {
		return fmt.Sprintf("%q", idn.ID())
	}
	return fmt.Sprintf("%v", n)
}
