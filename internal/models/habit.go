package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeOfDay represents the part of the day a habit is scheduled for
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayAnytime   TimeOfDay = "anytime"
)

// Occurrence represents how often a habit recurs
type Occurrence string

const (
	OccurrenceDaily    Occurrence = "daily"
	OccurrenceWeekly   Occurrence = "weekly"
	OccurrenceMonthly  Occurrence = "monthly"
	OccurrenceWeekdays Occurrence = "weekdays"
)

// Habit represents a user-defined recurring action tracked for completion.
// The streak counters are maintained by the completion engine and serve as a
// cache over the completion event history; they are never client-writable.
type Habit struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Category         *string    `json:"category,omitempty"`
	TimeOfDay        TimeOfDay  `json:"time_of_day"`
	Occurrence       Occurrence `json:"occurrence"`
	SpecificTime     *string    `json:"specific_time,omitempty"` // "HH:MM", overrides the TimeOfDay default
	IconURL          *string    `json:"icon_url,omitempty"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastCompletedAt  *time.Time `json:"last_completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CompletedOn reports whether the habit's last recorded completion falls on
// the local calendar day of t.
func (h *Habit) CompletedOn(t time.Time) bool {
	if h.LastCompletedAt == nil {
		return false
	}
	ly, lm, ld := h.LastCompletedAt.Local().Date()
	ty, tm, td := t.Local().Date()
	return ly == ty && lm == tm && ld == td
}

// HabitView is a habit joined with its transient attempt state for responses.
// The overlay is derived at read time and never persisted on the habit row.
type HabitView struct {
	Habit
	CompletedToday bool    `json:"completed_today"`
	Pending        bool    `json:"pending"`
	Missed         bool    `json:"missed"`
	MissedReason   *string `json:"missed_reason,omitempty"`
}
