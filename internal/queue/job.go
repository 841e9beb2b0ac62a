package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of notification job
type JobType string

const (
	// JobTypeNudge is a delayed nudge for a missed habit
	JobTypeNudge JobType = "nudge"
	// JobTypeStreakCelebration is a celebration for a streak milestone
	JobTypeStreakCelebration JobType = "streak_celebration"
	// JobTypeDailySummary is the end-of-day completion summary for a user
	JobTypeDailySummary JobType = "daily_summary"
)

// Job represents a notification job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	UserID     uuid.UUID  `json:"user_id"`
	HabitID    *uuid.UUID `json:"habit_id,omitempty"`    // For nudge and celebration jobs
	HabitName  string     `json:"habit_name,omitempty"`  // Display name for the dispatched message
	Reason     string     `json:"reason,omitempty"`      // Missed reason, nudge jobs only
	StreakDays int        `json:"streak_days,omitempty"` // Celebration jobs only
	Completed  int        `json:"completed,omitempty"`   // Daily summary jobs only
	Total      int        `json:"total,omitempty"`       // Daily summary jobs only
	NotBefore  *time.Time `json:"not_before,omitempty"`  // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`   // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new notification job
func NewJob(jobType JobType, userID uuid.UUID, habitID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		HabitID:    habitID,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
