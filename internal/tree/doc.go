// Package tree builds and caches the adjacency view the engine evaluates.
//
// A Tree is built once from a Source (the host's nodes and links) and then
// reused across evaluation passes until the caller invalidates it. Muted
// links are ignored and reroute (pass-through) nodes are elided: their
// upstream neighbour is connected directly to each downstream neighbour and
// the provenance of every downstream input is rewritten to the real
// upstream output, chasing through chains of reroutes.
//
// Trees are cached by identity in a Cache, never by content; a caller that
// changes a graph's links must invalidate it. A Tree also memoizes the last
// plan it computed, which ResetPlan drops without rebuilding the adjacency.
//
// Neither Tree nor Cache is safe for concurrent use.
package tree
