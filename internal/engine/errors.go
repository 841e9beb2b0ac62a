package engine

import "errors"

var (
	// ErrNotOwner is returned when the habit does not belong to the caller
	ErrNotOwner = errors.New("habit does not belong to user")

	// ErrAlreadyCompleted is returned when the habit already has a completed
	// event for today
	ErrAlreadyCompleted = errors.New("habit already completed today")

	// ErrAttemptInFlight is returned when a completion attempt for the habit
	// is still awaiting acknowledgement
	ErrAttemptInFlight = errors.New("completion attempt already in flight")

	// ErrEmptyReason is returned when a missed report carries no reason after
	// trimming
	ErrEmptyReason = errors.New("missed reason must not be empty")

	// ErrAckFailed is returned when the external acknowledgement failed or
	// timed out; the attempt is rolled back and may be retried
	ErrAckFailed = errors.New("completion acknowledgement failed")
)
