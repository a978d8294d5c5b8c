// Package errs defines the error kinds surfaced by the core services.
// Call sites wrap these with fmt.Errorf("...: %w", errs.Err...) and callers
// classify with errors.Is.
package errs

import "errors"

var (
	// ErrNotFound indicates a referenced listing, order or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the actor lacks the required relationship
	// to the resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState indicates the operation is not legal from the
	// resource's current state, or an input value is outside its domain.
	ErrInvalidState = errors.New("invalid state")
	// ErrExternalService indicates a collaborator failure. The scoring
	// pipeline absorbs this internally; it is never returned to API callers.
	ErrExternalService = errors.New("external service failure")
)
