// Package events groups raw host mutation notifications into waves and
// classifies each completed wave into one normalized event.
//
// A host reports every low-level change (a node added, a link made, a
// property edited) as it happens; several of them belong to one user action.
// The Classifier buffers them until a terminating kind arrives, then maps
// the whole wave through a static table. Trivial per-node updates carry no
// information and are dropped before buffering.
package events
