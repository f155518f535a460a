package toposort

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	t.Run("no edges keeps input order", func(t *testing.T) {
		in := []string{"a", "b", "c", "d"}
		assert.Equal(t, in, Sort(in, nil))
	})

	t.Run("chain is reversed into dependency order", func(t *testing.T) {
		in := []string{"c", "b", "a"}
		got := Sort(in, []Edge{{From: 2, To: 1}, {From: 1, To: 0}})
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("cycle is kept as one block", func(t *testing.T) {
		in := []string{"x", "y", "z", "w"}
		edges := []Edge{
			{From: 1, To: 0},
			{From: 0, To: 1},
			{From: 2, To: 0},
			{From: 1, To: 3},
		}
		assert.Equal(t, []string{"z", "x", "y", "w"}, Sort(in, edges))
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := []int{3, 2, 1}
		edges := []Edge{{From: 2, To: 0}}
		_ = Sort(in, edges)
		assert.Equal(t, []int{3, 2, 1}, in)
		assert.Equal(t, []Edge{{From: 2, To: 0}}, edges)
	})

	t.Run("out of range edge panics", func(t *testing.T) {
		assert.Panics(t, func() {
			Sort([]int{1}, []Edge{{From: 0, To: 1}})
		})
	})
}

func TestSort_Deterministic(t *testing.T) {
	vertices, edges := mixedGraph()

	first := Sort(vertices, edges)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Sort(vertices, edges), "run %d", i)
	}

	// The order edges are listed in must not matter.
	reversed := make([]Edge, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = e
	}
	assert.Equal(t, first, Sort(vertices, reversed))
}

func TestSort_Properties(t *testing.T) {
	vertices, edges := mixedGraph()
	comp := Components(len(vertices), edges)
	got := Sort(vertices, edges)
	require.Len(t, got, len(vertices))

	pos := make(map[int]int, len(got))
	for i, v := range got {
		pos[v] = i
	}
	require.Len(t, pos, len(vertices), "output must be a permutation")

	t.Run("edges between components are respected", func(t *testing.T) {
		for _, e := range edges {
			if comp[e.From] == comp[e.To] {
				continue
			}
			assert.Less(t, comp[e.From], comp[e.To])
			assert.Less(t, pos[e.From], pos[e.To], "edge %d->%d", e.From, e.To)
		}
	})

	t.Run("each component is contiguous", func(t *testing.T) {
		members := map[int][]int{}
		for v, c := range comp {
			members[c] = append(members[c], pos[v])
		}
		for c, ps := range members {
			lo, hi := ps[0], ps[0]
			for _, p := range ps {
				lo = min(lo, p)
				hi = max(hi, p)
			}
			assert.Equal(t, len(ps)-1, hi-lo, "component %d is split: %v", c, ps)
		}
	})
}

func TestComponents(t *testing.T) {
	_, edges := mixedGraph()
	comp := Components(9, edges)

	assert.Equal(t, comp[1], comp[2])
	assert.Equal(t, comp[2], comp[3])
	assert.Equal(t, comp[5], comp[6])
	assert.NotEqual(t, comp[1], comp[5])
	assert.NotEqual(t, comp[0], comp[1])

	seen := map[int]bool{}
	for _, c := range comp {
		seen[c] = true
	}
	for c := range len(seen) {
		assert.True(t, seen[c], fmt.Sprintf("labels must be dense, missing %d", c))
	}
}

// mixedGraph has two cycles ({1,2,3} and {5,6}), a self loop on 7 and a few
// plain edges around them.
func mixedGraph() ([]int, []Edge) {
	vertices := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	edges := []Edge{
		{From: 0, To: 1},
		{From: 1, To: 2},
		{From: 2, To: 3},
		{From: 3, To: 1},
		{From: 3, To: 4},
		{From: 4, To: 5},
		{From: 5, To: 6},
		{From: 6, To: 5},
		{From: 7, To: 7},
		{From: 8, To: 0},
		{From: 6, To: 7},
	}
	return vertices, edges
}
