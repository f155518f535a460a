// Package node defines the contract between the evaluation engine and the
// units of computation it schedules.
//
// A node exposes ordered input and output sockets, a pass-through flag and a
// Compute operation, and carries a Status the engine writes back after every
// pass. Concrete node kinds embed Base and implement Computable; the engine
// never inspects anything else about them.
package node
