package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/habito/habito-api/internal/models"
)

// Store bundles the habit and completion repositories behind the
// transactional operations the completion engine needs. Counter updates and
// event inserts always commit together or not at all.
type Store struct {
	db          *DB
	habits      *HabitRepository
	completions *CompletionRepository
}

// NewStore creates a new store
func NewStore(db *DB, habits *HabitRepository, completions *CompletionRepository) *Store {
	return &Store{db: db, habits: habits, completions: completions}
}

// GetHabit retrieves a habit by ID
func (s *Store) GetHabit(ctx context.Context, id uuid.UUID) (*models.Habit, error) {
	return s.habits.GetByID(ctx, id)
}

// HasCompletionOn reports whether a completed event exists for the habit on
// the calendar day containing t
func (s *Store) HasCompletionOn(ctx context.Context, habitID uuid.UUID, t time.Time) (bool, error) {
	return s.completions.HasCompletionOn(ctx, habitID, t)
}

// CommitCompletion atomically inserts a completed event and persists the
// habit's updated counters. Returns ErrDuplicateCompletion when a completed
// event already exists for the day; in that case nothing is written.
func (s *Store) CommitCompletion(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.completions.InsertTx(ctx, tx, event); err != nil {
			return err
		}
		return s.habits.UpdateCountersTx(ctx, tx, habit)
	})
}

// CommitMissed atomically inserts a missed event and persists the habit's
// streak reset
func (s *Store) CommitMissed(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.completions.InsertTx(ctx, tx, event); err != nil {
			return err
		}
		return s.habits.UpdateCountersTx(ctx, tx, habit)
	})
}
