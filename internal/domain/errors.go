package domain

import "errors"

// Failure taxonomy. Every per-request failure wraps exactly one of these
// sentinels so transport layers can classify with errors.Is. Nothing in this
// package is fatal to the process.
var (
	// ErrInvalidInput marks malformed or missing numeric/timestamp fields,
	// detected locally before any collaborator is called.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfZone is the geofencing rejection: the requested point is
	// outside the serviceable region. A business-rule failure, distinct
	// from ErrInvalidInput.
	ErrOutOfZone = errors.New("location is outside the prediction zone")

	// ErrUnavailable marks an external collaborator failure (model,
	// weather, geocoding). Caught at the boundary, never a crash.
	ErrUnavailable = errors.New("external service unavailable")

	// ErrNoResult means a search or resolution chain exhausted every
	// fallback without finding anything. An empty result, not an error
	// condition worth retrying.
	ErrNoResult = errors.New("no result")
)
