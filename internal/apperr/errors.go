// Package apperr defines the sentinel errors used across the engine.
// Handlers map these to HTTP status codes; services wrap them with
// fmt.Errorf("...: %w", ...) to add context.
package apperr

import "errors"

var (
	// ErrValidation marks malformed input. Rejected before any
	// mutation or query runs; never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown item, request, or viewer id.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an illegal state transition, e.g. awarding an
	// already-refunded bounty. Terminal; never retried.
	ErrConflict = errors.New("conflict")

	// ErrTransientStore marks a storage or network failure. Reads
	// degrade to an empty result set with the error surfaced; writes
	// are reported to the caller, never swallowed.
	ErrTransientStore = errors.New("transient store error")
)
