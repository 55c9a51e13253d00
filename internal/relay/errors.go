package relay

import "errors"

// Sentinel errors for the relay. Callers check them with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrSessionClosed = errors.New("session closed")
)
