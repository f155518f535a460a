// Package toposort orders small dependency graphs deterministically.
//
// Unlike the plan scheduler, it never rejects a cycle: every strongly
// connected component is emitted as one contiguous run. This makes it
// suitable for reference-style graphs (formulas, expression cells) where a
// cycle is a user error to be reported later, not a reason to stop ordering.
package toposort

import (
	"cmp"
	"fmt"
	"slices"
)

// Edge says that vertex From must come before vertex To. Both are indices
// into the vertex list passed to Sort or Components.
type Edge struct {
	From int
	To   int
}

// Sort returns a permutation of vertices in which, for every edge outside a
// cycle, From precedes To. Members of one strongly connected component are
// adjacent and keep their original relative order. Identical input always
// yields identical output. It panics on an edge index outside vertices.
func Sort[V any](vertices []V, edges []Edge) []V {
	comp, count := label(len(vertices), edges)

	// Counting sort on the component label; stable, so ties keep input order.
	starts := make([]int, count+1)
	for _, c := range comp {
		starts[c+1]++
	}
	for i := 1; i <= count; i++ {
		starts[i] += starts[i-1]
	}
	out := make([]V, len(vertices))
	for v, c := range comp {
		out[starts[c]] = vertices[v]
		starts[c]++
	}
	return out
}

// Components returns the strongly connected component of every vertex.
// Labels are dense, start at zero and are numbered in dependency order: a
// component only depends on components with a smaller label.
func Components(n int, edges []Edge) []int {
	comp, _ := label(n, edges)
	return comp
}

// label runs an iterative variant of Pearce's single-pass SCC algorithm.
// rindex holds the visit index while a vertex is active and the component
// label once it is assigned; labels are handed out from n downwards so they
// always compare greater than any active index.
func label(n int, edges []Edge) ([]int, int) {
	succ := successors(n, edges)

	rindex := make([]int, n)
	root := make([]bool, n)
	var pending []int
	index, c := 1, n

	type call struct {
		v    int
		next int
	}
	var calls []call
	begin := func(v int) {
		rindex[v] = index
		index++
		root[v] = true
		calls = append(calls, call{v: v})
	}
	lower := func(v, w int) {
		if rindex[w] < rindex[v] {
			rindex[v] = rindex[w]
			root[v] = false
		}
	}

	// Roots and successors are visited from the highest index down, so with
	// no constraints at all the output keeps the original order.
	for r := n - 1; r >= 0; r-- {
		if rindex[r] != 0 {
			continue
		}
		begin(r)
		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.v
			if top.next < len(succ[v]) {
				w := succ[v][top.next]
				top.next++
				if rindex[w] == 0 {
					begin(w)
					continue
				}
				lower(v, w)
				continue
			}

			calls = calls[:len(calls)-1]
			if root[v] {
				index--
				for len(pending) > 0 && rindex[v] <= rindex[pending[len(pending)-1]] {
					w := pending[len(pending)-1]
					pending = pending[:len(pending)-1]
					rindex[w] = c
					index--
				}
				rindex[v] = c
				c--
			} else {
				pending = append(pending, v)
			}
			if len(calls) > 0 {
				lower(calls[len(calls)-1].v, v)
			}
		}
	}

	// Shift labels c+1..n down to 0..count-1.
	count := n - c
	for v := range rindex {
		rindex[v] -= c + 1
	}
	return rindex, count
}

// successors builds the adjacency lists in descending target order. Edges
// are stably ordered by target first so the result does not depend on the
// order the caller listed them in.
func successors(n int, edges []Edge) [][]int {
	sorted := slices.Clone(edges)
	slices.SortStableFunc(sorted, func(a, b Edge) int {
		return cmp.Compare(b.To, a.To)
	})

	succ := make([][]int, n)
	for _, e := range sorted {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			panic(fmt.Sprintf("toposort: edge %d->%d out of range for %d vertices", e.From, e.To, n))
		}
		succ[e.From] = append(succ[e.From], e.To)
	}
	return succ
}
