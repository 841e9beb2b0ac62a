// Package eventlog provides an append-only record of habit lifecycle events
// (created/completed/missed/pending). The log is a local analytics mirror,
// never the system of record for streak counters; the habit_completions table
// holds the durable events.
package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/habito/habito-api/internal/models"
)

// RecordStatus represents the lifecycle state a log record captures
type RecordStatus string

const (
	RecordStatusCreated   RecordStatus = "created"
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusMissed    RecordStatus = "missed"
	RecordStatusPending   RecordStatus = "pending"
)

// Record is one append-only log entry
type Record struct {
	Timestamp time.Time               `json:"timestamp"`
	HabitID   uuid.UUID               `json:"habit_id"`
	HabitName string                  `json:"habit_name"`
	Status    RecordStatus            `json:"status"`
	Source    models.CompletionSource `json:"source"`
	Metadata  *RecordMetadata         `json:"metadata,omitempty"`
}

// RecordMetadata carries optional per-record context
type RecordMetadata struct {
	Reason     string           `json:"reason,omitempty"`
	StreakDays int              `json:"streak_days,omitempty"`
	TimeOfDay  models.TimeOfDay `json:"time_of_day,omitempty"`
}

// Store is an append-only event log keyed by user. Implementations must keep
// insertion order; readers rely on it for chronological scans.
type Store interface {
	// Append adds a record to the user's log
	Append(ctx context.Context, userID uuid.UUID, record Record) error

	// Records returns the user's full log, oldest first
	Records(ctx context.Context, userID uuid.UUID) ([]Record, error)

	// RecordsSince returns the user's records with Timestamp >= since, oldest first
	RecordsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Record, error)

	// Clear removes the user's log
	Clear(ctx context.Context, userID uuid.UUID) error
}
