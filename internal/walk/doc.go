// Package walk provides reusable breadth-first, depth-first and topological
// walks over any graph that can report the neighbours of a node.
//
// Every walk is lazy (an iter.Seq2 of node and error) and iterative: no walk
// recurses, so deep graphs cannot exhaust the call stack. Each walk carries a
// hard cap on the number of visited nodes; exceeding it ends the walk with an
// *IterationLimitError instead of running away on an oversized graph. The
// topological walk additionally reports a real cycle with a *CycleError the
// moment the back edge is found.
package walk
