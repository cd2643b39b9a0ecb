package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store (or is soft-deleted)
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: backing store temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domainerrors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
