// Package cli turns command-line arguments into a validated app.Config and
// maps bad input to process exit codes.
package cli
