package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habito/habito-api/internal/models"
)

// UserActivityRepository handles user activity database operations
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new user activity repository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// GetByUserID retrieves user activity by user ID
func (r *UserActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	activity := &models.UserActivity{}
	var lastSummaryAt *time.Time

	query := `
		SELECT user_id, last_api_interaction, summaries_paused, last_summary_at, created_at, updated_at
		FROM user_activity
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&activity.UserID,
		&activity.LastAPIInteraction,
		&activity.SummariesPaused,
		&lastSummaryAt,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user activity: %w", err)
	}

	activity.LastSummaryAt = lastSummaryAt
	return activity, nil
}

// UpdateLastInteraction updates the last API interaction timestamp. Any
// interaction un-pauses daily summaries.
func (r *UserActivityRepository) UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO user_activity (user_id, last_api_interaction, summaries_paused, created_at, updated_at)
		VALUES ($1, $2, false, $3, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET last_api_interaction = EXCLUDED.last_api_interaction,
		    summaries_paused = false,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, userID, now, now)
	if err != nil {
		return fmt.Errorf("failed to update last interaction: %w", err)
	}

	return nil
}

// SetSummariesPaused sets the summaries paused flag
func (r *UserActivityRepository) SetSummariesPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	query := `
		UPDATE user_activity
		SET summaries_paused = $1, updated_at = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, paused, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set summaries paused: %w", err)
	}

	return nil
}

// MarkSummarySent records that a daily summary job was enqueued for the user
func (r *UserActivityRepository) MarkSummarySent(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE user_activity
		SET last_summary_at = $1, updated_at = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, at, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark summary sent: %w", err)
	}

	return nil
}

// GetActiveUserIDs returns users who interacted with the API since the given
// time and have summaries enabled
func (r *UserActivityRepository) GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_activity
		WHERE last_api_interaction >= $1
		  AND summaries_paused = false
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			// rows may already be closed
			_ = err
		}
	}()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return userIDs, nil
}

// GetStaleUserIDs returns users whose last interaction is older than the
// window and who still have summaries enabled. The scheduler pauses them.
func (r *UserActivityRepository) GetStaleUserIDs(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_activity
		WHERE last_api_interaction < $1
		  AND summaries_paused = false
	`

	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return userIDs, nil
}
