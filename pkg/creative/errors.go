package creative

import (
	"errors"
	"fmt"
)

// ErrInvalidStage marks an unrecognized external stage or dimension string.
// It is a client input validation error, not a server failure.
var ErrInvalidStage = errors.New("unrecognized creative stage")

// ConfigurationError reports a missing or inconsistent collaborator
// configuration. It is surfaced once at startup, never per turn.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// CollaboratorError wraps a failure of an external collaborator (extractor,
// content provider, scene generator). Turns recover from these locally via
// fallback or empty results; the type exists so logs can name the source.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator %s failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
