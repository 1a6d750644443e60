package models

import "errors"

// Sentinel errors shared across services and storage areas.
var (
	// ErrUserNotFound indicates an operation referenced a user that has never
	// been provisioned. Surfaced to the caller, not retried.
	ErrUserNotFound = errors.New("user not found")

	// ErrAggregateNotFound indicates the durable store has no aggregate for
	// the user. Internal to the cache load path.
	ErrAggregateNotFound = errors.New("aggregate not found")

	// ErrTemporarilyUnavailable indicates a cold-start cache miss coincided
	// with a durable store outage. The caller should retry.
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
