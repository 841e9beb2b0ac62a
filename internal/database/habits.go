package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habito/habito-api/internal/models"
)

// HabitRepository handles habit database operations
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

const habitColumns = `id, user_id, name, description, category, time_of_day, occurrence,
	specific_time, icon_url, current_streak, longest_streak, total_completions,
	last_completed_at, created_at, updated_at`

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	query := `
		INSERT INTO habits (id, user_id, name, description, category, time_of_day, occurrence,
			specific_time, icon_url, current_streak, longest_streak, total_completions,
			last_completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Description,
		habit.Category,
		habit.TimeOfDay,
		habit.Occurrence,
		habit.SpecificTime,
		habit.IconURL,
		habit.CurrentStreak,
		habit.LongestStreak,
		habit.TotalCompletions,
		nullTime(habit.LastCompletedAt),
		now,
		now,
	).Scan(&habit.CreatedAt, &habit.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

// GetByID retrieves a habit by ID
func (r *HabitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	habit, err := scanHabit(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("habit not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

// GetByUserID retrieves all habits for a user, optionally filtered by
// time_of_day and occurrence
func (r *HabitRepository) GetByUserID(ctx context.Context, userID uuid.UUID, timeOfDay *models.TimeOfDay, occurrence *models.Occurrence) ([]*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if timeOfDay != nil {
		query += fmt.Sprintf(" AND time_of_day = $%d", argIndex)
		args = append(args, string(*timeOfDay))
		argIndex++
	}

	if occurrence != nil {
		query += fmt.Sprintf(" AND occurrence = $%d", argIndex)
		args = append(args, string(*occurrence))
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}

	return habits, nil
}

// Update updates an existing habit's descriptive and scheduling fields.
// Counters are excluded on purpose; they only move through UpdateCountersTx.
func (r *HabitRepository) Update(ctx context.Context, habit *models.Habit) error {
	query := `
		UPDATE habits
		SET name = $2, description = $3, category = $4, time_of_day = $5,
			occurrence = $6, specific_time = $7, icon_url = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		habit.ID,
		habit.Name,
		habit.Description,
		habit.Category,
		habit.TimeOfDay,
		habit.Occurrence,
		habit.SpecificTime,
		habit.IconURL,
		time.Now(),
	).Scan(&habit.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("habit not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	return nil
}

// UpdateCountersTx updates the streak counters and last completion timestamp
// inside an existing transaction. Used by the completion engine so the counter
// update commits atomically with the completion event insert.
func (r *HabitRepository) UpdateCountersTx(ctx context.Context, tx *sql.Tx, habit *models.Habit) error {
	query := `
		UPDATE habits
		SET current_streak = $2, longest_streak = $3, total_completions = $4,
			last_completed_at = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRowContext(ctx, query,
		habit.ID,
		habit.CurrentStreak,
		habit.LongestStreak,
		habit.TotalCompletions,
		nullTime(habit.LastCompletedAt),
		time.Now(),
	).Scan(&habit.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("habit not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update habit counters: %w", err)
	}

	return nil
}

// MilestoneSummary computes the cross-habit milestone aggregates for a user
// by re-reading the full habit set.
func (r *HabitRepository) MilestoneSummary(ctx context.Context, userID uuid.UUID) (*models.MilestoneSummary, error) {
	query := `
		SELECT COALESCE(MAX(longest_streak), 0), COALESCE(SUM(total_completions), 0)
		FROM habits
		WHERE user_id = $1
	`

	summary := &models.MilestoneSummary{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&summary.LongestStreak,
		&summary.TotalCompletions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute milestone summary: %w", err)
	}

	return summary, nil
}

// CountByUserID returns the number of habits a user tracks
func (r *HabitRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habits WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic
type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (*models.Habit, error) {
	habit := &models.Habit{}
	var lastCompletedAt sql.NullTime

	err := s.Scan(
		&habit.ID,
		&habit.UserID,
		&habit.Name,
		&habit.Description,
		&habit.Category,
		&habit.TimeOfDay,
		&habit.Occurrence,
		&habit.SpecificTime,
		&habit.IconURL,
		&habit.CurrentStreak,
		&habit.LongestStreak,
		&habit.TotalCompletions,
		&lastCompletedAt,
		&habit.CreatedAt,
		&habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastCompletedAt.Valid {
		habit.LastCompletedAt = &lastCompletedAt.Time
	}

	return habit, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
