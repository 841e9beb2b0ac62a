// Package notify defines the messaging contracts the completion engine and
// workers depend on. The bundled implementation simulates an external
// messaging integration; a real dispatcher can replace it behind the same
// interfaces.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ack is the acknowledgement returned for a completion
type Ack struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Acknowledger confirms habit completions with the external messaging
// integration. The engine only commits streak counters after a successful ack.
type Acknowledger interface {
	AcknowledgeCompletion(ctx context.Context, habitID uuid.UUID, habitName string) (*Ack, error)
}

// Notifier delivers best-effort messages. Failures must never roll back the
// completion transition that triggered them.
type Notifier interface {
	ScheduleNudge(ctx context.Context, habitID uuid.UUID, habitName, missedReason string) error
	CelebrateStreak(ctx context.Context, habitName string, streakDays int) error
	SendDailySummary(ctx context.Context, userID uuid.UUID, completedCount, totalCount int) error
}
