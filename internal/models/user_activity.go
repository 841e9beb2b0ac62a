package models

import (
	"time"

	"github.com/google/uuid"
)

// UserActivity tracks when a user last interacted with the API. The daily
// summary scheduler only notifies users seen within its activity window, and
// summaries stop automatically when a user goes quiet.
type UserActivity struct {
	UserID             uuid.UUID  `json:"user_id"`
	LastAPIInteraction time.Time  `json:"last_api_interaction"`
	SummariesPaused    bool       `json:"summaries_paused"`
	LastSummaryAt      *time.Time `json:"last_summary_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
