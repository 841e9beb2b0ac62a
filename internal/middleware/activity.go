package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// staleAfter is how long a user can go without an API interaction before
// their daily summaries are paused
const staleAfter = 3 * 24 * time.Hour

// ActivityStore is the persistence surface activity tracking needs.
// *database.UserActivityRepository is the production implementation.
type ActivityStore interface {
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
	GetStaleUserIDs(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error)
	SetSummariesPaused(ctx context.Context, userID uuid.UUID, paused bool) error
}

// ActivityTracking records the last API interaction per user and pauses
// daily summaries for users who have gone quiet
func ActivityTracking(activityRepo ActivityStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only track activity for authenticated requests
			user := UserFromContext(r)
			if user != nil {
				ctx := r.Context()

				// Update last API interaction; this also resumes summaries
				// for a user who had been paused
				if err := activityRepo.UpdateLastInteraction(ctx, user.ID); err != nil {
					log.Printf("Failed to update user activity: %v", err)
					// Don't fail the request if activity tracking fails
				}

				// Check for users to pause in the background. The sweep must
				// not inherit the request context: that is cancelled as soon
				// as the response is written.
				go func() {
					checkCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()

					pauseStaleUsers(checkCtx, activityRepo)
				}()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pauseStaleUsers pauses daily summaries for every user whose last API
// interaction is older than the staleness threshold
func pauseStaleUsers(ctx context.Context, activityRepo ActivityStore) {
	staleUsers, err := activityRepo.GetStaleUserIDs(ctx, time.Now().Add(-staleAfter))
	if err != nil {
		log.Printf("Failed to check stale users: %v", err)
		return
	}

	for _, userID := range staleUsers {
		if err := activityRepo.SetSummariesPaused(ctx, userID, true); err != nil {
			log.Printf("Failed to pause summaries for user %s: %v", userID, err)
		}
	}
}

// ActivityTracker runs the stale-user sweep on a fixed interval, so summaries
// get paused even across stretches with no inbound requests
type ActivityTracker struct {
	activityRepo  ActivityStore
	checkInterval time.Duration
}

// NewActivityTracker creates a new activity tracker
func NewActivityTracker(activityRepo ActivityStore) *ActivityTracker {
	return &ActivityTracker{
		activityRepo:  activityRepo,
		checkInterval: 1 * time.Hour, // Check every hour
	}
}

// Start runs the sweep loop until ctx is cancelled
func (at *ActivityTracker) Start(ctx context.Context) {
	ticker := time.NewTicker(at.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pauseStaleUsers(ctx, at.activityRepo)
		}
	}
}
