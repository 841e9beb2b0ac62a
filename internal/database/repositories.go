package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/habito/habito-api/internal/models"
)

// HabitRepositoryInterface defines the interface for habit repository operations
// This interface enables better testability by allowing mock implementations
type HabitRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Habit, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, timeOfDay *models.TimeOfDay, occurrence *models.Occurrence) ([]*models.Habit, error)
	UpdateCountersTx(ctx context.Context, tx *sql.Tx, habit *models.Habit) error
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

// CompletionRepositoryInterface defines the interface for completion repository operations
type CompletionRepositoryInterface interface {
	InsertTx(ctx context.Context, tx *sql.Tx, event *models.CompletionEvent) error
	Insert(ctx context.Context, event *models.CompletionEvent) error
	GetByUserIDSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.CompletionEvent, error)
	GetByUserIDRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.CompletionEvent, error)
	HasCompletionOn(ctx context.Context, habitID uuid.UUID, t time.Time) (bool, error)
	CompletedPerDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.HeatmapPoint, error)
	CompletedCountForDay(ctx context.Context, userID uuid.UUID, t time.Time) (int, error)
}

// UserActivityRepositoryInterface defines the interface for user activity repository operations
type UserActivityRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	MarkSummarySent(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// Ensure concrete types implement the interfaces
var (
	_ HabitRepositoryInterface        = (*HabitRepository)(nil)
	_ CompletionRepositoryInterface   = (*CompletionRepository)(nil)
	_ UserActivityRepositoryInterface = (*UserActivityRepository)(nil)
)
