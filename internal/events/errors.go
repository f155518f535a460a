package events

import (
	"errors"
	"fmt"
)

// ErrUnmappedKind is matched by every *ConfigurationError.
var ErrUnmappedKind = errors.New("raw event kind is not mapped")

// ConfigurationError reports a raw kind missing from the classification
// table. The classifier state is left clean.
type ConfigurationError struct {
	Kind RawKind
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("raw event kind %q has no normalized kind", string(e.Kind))
}

func (e *ConfigurationError) Unwrap() error { return ErrUnmappedKind }
