package walk

import (
	"iter"
	"slices"
)

// DefaultLimit is the visited-node cap used when no WithLimit option is given.
const DefaultLimit = 100_000

// Direction selects which edges a walk follows.
type Direction int

const (
	// Forward follows Next edges (downstream).
	Forward Direction = iota
	// Backward follows Previous edges (upstream).
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Graph is the minimal view a walk needs. Implementations should return
// neighbours in a stable order; the walks preserve it.
type Graph[N comparable] interface {
	Next(n N) []N
	Previous(n N) []N
}

type config struct {
	limit int
}

// Option tunes a walk.
type Option func(*config)

// WithLimit sets the visited-node cap. Non-positive values keep the default.
func WithLimit(limit int) Option {
	return func(c *config) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func newConfig(opts []Option) config {
	c := config{limit: DefaultLimit}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func neighbours[N comparable](g Graph[N], n N, dir Direction) []N {
	if dir == Backward {
		return g.Previous(n)
	}
	return g.Next(n)
}

// BFS walks breadth-first from start in the given direction, yielding every
// reachable node once, start nodes included.
func BFS[N comparable](g Graph[N], start []N, dir Direction, opts ...Option) iter.Seq2[N, error] {
	cfg := newConfig(opts)
	return func(yield func(N, error) bool) {
		var zero N
		seen := make(map[N]struct{}, len(start))
		queue := make([]N, 0, len(start))
		for _, n := range start {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}

		visited := 0
		for len(queue) > 0 {
			if visited == cfg.limit {
				yield(zero, &IterationLimitError{Walk: "bfs", Limit: cfg.limit})
				return
			}
			n := queue[0]
			queue = queue[1:]
			visited++
			if !yield(n, nil) {
				return
			}
			for _, next := range neighbours(g, n, dir) {
				if _, ok := seen[next]; ok {
					continue
				}
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
}

// DFS walks depth-first (pre-order) from start in the given direction,
// yielding every reachable node once.
func DFS[N comparable](g Graph[N], start []N, dir Direction, opts ...Option) iter.Seq2[N, error] {
	cfg := newConfig(opts)
	return func(yield func(N, error) bool) {
		var zero N
		seen := make(map[N]struct{})
		stack := slices.Clone(start)
		slices.Reverse(stack)

		visited := 0
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := seen[n]; ok {
				continue
			}
			if visited == cfg.limit {
				yield(zero, &IterationLimitError{Walk: "dfs", Limit: cfg.limit})
				return
			}
			seen[n] = struct{}{}
			visited++
			if !yield(n, nil) {
				return
			}
			next := neighbours(g, n, dir)
			for i := len(next) - 1; i >= 0; i-- {
				if _, ok := seen[next[i]]; !ok {
					stack = append(stack, next[i])
				}
			}
		}
	}
}

type color uint8

const (
	white color = iota
	// gray nodes are discovered and still have unfinished dependencies.
	gray
	// black nodes are finished and already yielded.
	black
)

type frame[N comparable] struct {
	node N
	deps []N
	next int
}

// SortedWalk yields targets and everything upstream of them so that every
// node comes after all of its Previous nodes. Targets are expanded in the
// given order. A cycle ends the walk with a *CycleError.
func SortedWalk[N comparable](g Graph[N], targets []N, opts ...Option) iter.Seq2[N, error] {
	cfg := newConfig(opts)
	return func(yield func(N, error) bool) {
		var zero N
		colors := make(map[N]color)
		discovered := 0

		discover := func(n N) bool {
			if discovered == cfg.limit {
				return false
			}
			discovered++
			colors[n] = gray
			return true
		}

		for _, target := range targets {
			if colors[target] != white {
				continue
			}
			if !discover(target) {
				yield(zero, &IterationLimitError{Walk: "sorted", Limit: cfg.limit})
				return
			}
			stack := []frame[N]{{node: target, deps: g.Previous(target)}}

			for len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.next < len(top.deps) {
					dep := top.deps[top.next]
					top.next++
					switch colors[dep] {
					case black:
						continue
					case gray:
						yield(zero, &CycleError{Node: dep})
						return
					}
					if !discover(dep) {
						yield(zero, &IterationLimitError{Walk: "sorted", Limit: cfg.limit})
						return
					}
					stack = append(stack, frame[N]{node: dep, deps: g.Previous(dep)})
					continue
				}

				n := top.node
				stack = stack[:len(stack)-1]
				colors[n] = black
				if !yield(n, nil) {
					return
				}
			}
		}
	}
}

// Collect drains a walk into a slice, stopping at the first error.
func Collect[N any](seq iter.Seq2[N, error]) ([]N, error) {
	var out []N
	for n, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, n)
	}
	return out, nil
}
