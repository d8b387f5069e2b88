package queue

import "errors"

// Typed failures returned to callers. The HTTP layer maps them to
// status codes; they are never allowed to escape as panics.
var (
	ErrNotFound             = errors.New("not found")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrDuplicateActiveEntry = errors.New("customer already has an active entry for this salon")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
