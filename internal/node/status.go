package node

import "time"

// Status is the evaluation state the engine writes back onto a node. The
// zero value is up to date with no error.
type Status struct {
	outdated bool
	err      error
	duration time.Duration
}

// UpToDate reports whether the node's outputs can be trusted.
func (s *Status) UpToDate() bool { return !s.outdated }

// Err is the error of the last failed Compute, or nil.
func (s *Status) Err() error { return s.err }

// ErrorMessage is Err as a string, empty when there is none.
func (s *Status) ErrorMessage() string {
	if s.err == nil {
		return ""
	}
	return s.err.Error()
}

// Duration is how long the last Compute took.
func (s *Status) Duration() time.Duration { return s.duration }

// MarkDone records a successful Compute.
func (s *Status) MarkDone(d time.Duration) {
	s.outdated = false
	s.err = nil
	s.duration = d
}

// MarkFailed records a failed Compute.
func (s *Status) MarkFailed(err error, d time.Duration) {
	s.outdated = true
	s.err = err
	s.duration = d
}

// MarkSkipped records a node that was not computed because something it
// consumes is outdated. It is outdated but not failed.
func (s *Status) MarkSkipped() {
	s.outdated = true
	s.err = nil
	s.duration = 0
}

// MarkOutdated flags the node for recomputation and keeps the last error.
func (s *Status) MarkOutdated() {
	s.outdated = true
}
