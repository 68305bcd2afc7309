package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation is returned when a unique field would be duplicated
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrLedgerTimeout is returned when a ledger job never reaches a terminal state
	ErrLedgerTimeout = errors.New("ledger job timed out")

	// ErrLedgerJobFailed is returned when a ledger job reports failure
	ErrLedgerJobFailed = errors.New("ledger job failed")

	// ErrOracleUnavailable is returned when the eligibility oracle cannot be reached
	ErrOracleUnavailable = errors.New("eligibility oracle unavailable")

	// ErrSubscriptionFailed is returned when subscription to an event feed fails
	ErrSubscriptionFailed = errors.New("subscription failed")
)
