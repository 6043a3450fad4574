package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about rows, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: a unique constraint or stale-state precondition was violated
// - ErrInvalidState: entity is in the wrong status for the requested transition
// - ErrUnavailable: backing service temporarily unreachable
//
// For bad input (missing rejection notes, empty signature), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
