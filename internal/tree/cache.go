package tree

import (
	"context"

	"github.com/vk/nodegridgo/internal/ctxlog"
)

// Cache holds one Tree per graph ID. Entries are created lazily and only
// dropped by explicit invalidation.
type Cache struct {
	trees map[string]*Tree
	opts  []Option
}

// NewCache returns an empty cache. The options are applied to every Tree
// it builds.
func NewCache(opts ...Option) *Cache {
	return &Cache{trees: make(map[string]*Tree), opts: opts}
}

// GetOrBuild returns the cached Tree for src's ID, building it on a miss.
// A hit never looks at src's content.
func (c *Cache) GetOrBuild(ctx context.Context, src Source) *Tree {
	if t, ok := c.trees[src.ID()]; ok {
		return t
	}
	t := Build(ctx, src, c.opts...)
	c.trees[src.ID()] = t
	ctxlog.FromContext(ctx).Debug("Tree cached.", "tree_id", t.id, "cached_trees", len(c.trees))
	return t
}

// Get returns the cached Tree for id without building.
func (c *Cache) Get(id string) (*Tree, bool) {
	t, ok := c.trees[id]
	return t, ok
}

// Invalidate drops the Tree for id. The next GetOrBuild rebuilds it.
func (c *Cache) Invalidate(id string) {
	delete(c.trees, id)
}

// InvalidateAll drops every Tree.
func (c *Cache) InvalidateAll() {
	clear(c.trees)
}

// ResetPlan drops only the memoized plan of the Tree for id and reports
// whether such a Tree was cached.
func (c *Cache) ResetPlan(id string) bool {
	t, ok := c.trees[id]
	if ok {
		t.ResetPlan()
	}
	return ok
}

// Len reports the number of cached trees.
func (c *Cache) Len() int { return len(c.trees) }
