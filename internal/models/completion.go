package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletionStatus represents the outcome recorded by a completion event
type CompletionStatus string

const (
	CompletionStatusCompleted CompletionStatus = "completed"
	CompletionStatusMissed    CompletionStatus = "missed"
)

// CompletionSource represents who recorded the event
type CompletionSource string

const (
	CompletionSourceUser    CompletionSource = "user"
	CompletionSourceWebhook CompletionSource = "webhook"
)

// CompletionEvent is an immutable record of a completed or missed occurrence
// of a habit. Events are append-only and are the source of truth for all
// analytics; habit streak counters are a cache derived from them.
type CompletionEvent struct {
	ID           uuid.UUID        `json:"id"`
	HabitID      uuid.UUID        `json:"habit_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Status       CompletionStatus `json:"status"`
	Source       CompletionSource `json:"source"`
	MissedReason *string          `json:"missed_reason,omitempty"`
	StreakDays   *int             `json:"streak_days,omitempty"` // streak value at the time of a completed event
	TimeOfDay    *TimeOfDay       `json:"time_of_day,omitempty"`
	CompletedAt  time.Time        `json:"completed_at"`
}
