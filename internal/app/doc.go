// Package app wires the engine into a runnable process: it loads graph
// files, attaches them to a session, evaluates them, and keeps them live
// through file watching and frame playback. It is decoupled from any
// specific entrypoint like a CLI.
package app
