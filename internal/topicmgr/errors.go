package topicmgr

import "errors"

var (
	// ErrNotFound is returned when no topic has the requested name.
	ErrNotFound = errors.New("topic not found")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("topic already registered")
	// ErrInvalid is returned for topics that break the naming or
	// documentation rules.
	ErrInvalid = errors.New("invalid topic")
)
