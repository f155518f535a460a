// Package registry provides the central "glue" for the node catalog.
//
// The Registry maps the kind names used in graph files (e.g. "math") to the
// compiled Go factories that build nodes of that kind, together with the Go
// struct each kind decodes its settings into. Settings arrive as cty values
// from the graph loader and are decoded with gocty, so the struct's `cty`
// tags are the single source of truth for what a kind accepts.
//
// During application startup, every catalog module registers its kinds and
// the registry is validated to ensure that each factory builds nodes that
// report the kind they were registered under.
package registry
