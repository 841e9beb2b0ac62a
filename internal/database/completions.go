package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/habito/habito-api/internal/models"
)

// ErrDuplicateCompletion is returned when a completed event already exists for
// the habit on the same calendar day. Enforced by a partial unique index on
// (habit_id, (completed_at::date)) WHERE status = 'completed', so a retried
// submission can never double-increment the streak counters.
var ErrDuplicateCompletion = errors.New("completion already recorded for this day")

// CompletionRepository handles completion event database operations
type CompletionRepository struct {
	db *DB
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

const completionColumns = `id, habit_id, user_id, status, source, missed_reason, streak_days, time_of_day, completed_at`

// InsertTx appends a completion event inside an existing transaction.
// Translates the unique-index violation into ErrDuplicateCompletion.
func (r *CompletionRepository) InsertTx(ctx context.Context, tx *sql.Tx, event *models.CompletionEvent) error {
	query := `
		INSERT INTO habit_completions (id, habit_id, user_id, status, source, missed_reason, streak_days, time_of_day, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(ctx, query,
		event.ID,
		event.HabitID,
		event.UserID,
		event.Status,
		event.Source,
		event.MissedReason,
		event.StreakDays,
		event.TimeOfDay,
		event.CompletedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCompletion
		}
		return fmt.Errorf("failed to insert completion event: %w", err)
	}

	return nil
}

// Insert appends a completion event outside a transaction (missed events do
// not touch habit counters other than the streak reset, which is idempotent)
func (r *CompletionRepository) Insert(ctx context.Context, event *models.CompletionEvent) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return r.InsertTx(ctx, tx, event)
	})
}

// GetByUserIDSince retrieves all completion events for a user from the given
// time onward, ordered oldest first
func (r *CompletionRepository) GetByUserIDSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.CompletionEvent, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE user_id = $1 AND completed_at >= $2
		ORDER BY completed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion events: %w", err)
	}
	defer rows.Close()

	return scanCompletions(rows)
}

// GetByUserIDRange retrieves all completion events for a user inside
// [start, end], ordered oldest first
func (r *CompletionRepository) GetByUserIDRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.CompletionEvent, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at <= $3
		ORDER BY completed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion events: %w", err)
	}
	defer rows.Close()

	return scanCompletions(rows)
}

// GetByHabitID retrieves all completion events for a habit, ordered oldest first
func (r *CompletionRepository) GetByHabitID(ctx context.Context, habitID uuid.UUID) ([]models.CompletionEvent, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion events: %w", err)
	}
	defer rows.Close()

	return scanCompletions(rows)
}

// HasCompletionOn reports whether a completed event exists for the habit on
// the calendar day containing t
func (r *CompletionRepository) HasCompletionOn(ctx context.Context, habitID uuid.UUID, t time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM habit_completions
			WHERE habit_id = $1 AND status = 'completed'
			AND completed_at >= $2 AND completed_at < $3
		)
	`

	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var exists bool
	err := r.db.QueryRowContext(ctx, query, habitID, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completion existence: %w", err)
	}

	return exists, nil
}

// CompletedPerDay returns the number of completed events per calendar day for
// a user since the given time, for the activity heatmap
func (r *CompletionRepository) CompletedPerDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.HeatmapPoint, error) {
	query := `
		SELECT to_char(completed_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM habit_completions
		WHERE user_id = $1 AND status = 'completed' AND completed_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query heatmap data: %w", err)
	}
	defer rows.Close()

	var points []models.HeatmapPoint
	for rows.Next() {
		var p models.HeatmapPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan heatmap point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating heatmap data: %w", err)
	}

	return points, nil
}

// CompletedCountForDay returns how many of the user's habits were completed
// on the calendar day containing t. Used by the daily summary scheduler.
func (r *CompletionRepository) CompletedCountForDay(ctx context.Context, userID uuid.UUID, t time.Time) (int, error) {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT COUNT(DISTINCT habit_id)
		FROM habit_completions
		WHERE user_id = $1 AND status = 'completed'
		AND completed_at >= $2 AND completed_at < $3
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, dayStart, dayEnd).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count daily completions: %w", err)
	}

	return count, nil
}

func scanCompletions(rows *sql.Rows) ([]models.CompletionEvent, error) {
	var events []models.CompletionEvent
	for rows.Next() {
		var event models.CompletionEvent
		err := rows.Scan(
			&event.ID,
			&event.HabitID,
			&event.UserID,
			&event.Status,
			&event.Source,
			&event.MissedReason,
			&event.StreakDays,
			&event.TimeOfDay,
			&event.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completion events: %w", err)
	}

	return events, nil
}
