// Package scheduler turns a changed-node set into an ordered evaluation plan.
//
// Compute expands the changed nodes forward to everything downstream of
// them, restricts the dependency graph to that reachable set and orders it
// topologically with a stable, externally supplied tie-break (the original
// node order of the tree). A real cycle inside the reachable set aborts
// planning with walk.ErrCycle before any node runs; a cycle elsewhere in the
// tree is never looked at.
//
// Plan.Execute walks the plan lazily and skips every step whose consumed
// upstream node is not up to date, marking it outdated in turn. Failure and
// staleness therefore propagate through the plan without the caller having
// to track them.
package scheduler
