// Package engine drives a habit through one completion attempt per user
// action: optimistic pending state, external acknowledgement, then an atomic
// counter-plus-event commit, or a rollback that leaves the habit completable
// again. Streak counters only ever change on a confirmed transition.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/eventlog"
	"github.com/habito/habito-api/internal/models"
	"github.com/habito/habito-api/internal/notify"
	"github.com/habito/habito-api/internal/validation"
)

const (
	// DefaultAckTimeout bounds the wait for the external acknowledgement.
	// The simulator resolves in 0.8-1.2s; a hung call must not leave the
	// habit pending forever.
	DefaultAckTimeout = 5 * time.Second

	// celebrationInterval triggers a streak celebration on every Nth
	// consecutive completion
	celebrationInterval = 7
)

// Store is the persistence surface the engine needs. *database.Store is the
// production implementation; tests substitute fakes.
type Store interface {
	GetHabit(ctx context.Context, id uuid.UUID) (*models.Habit, error)
	HasCompletionOn(ctx context.Context, habitID uuid.UUID, t time.Time) (bool, error)
	CommitCompletion(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error
	CommitMissed(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error
}

// Engine orchestrates completion attempts. Attempts are tracked per habit;
// two different habits may be pending concurrently.
type Engine struct {
	store      Store
	ack        notify.Acknowledger
	notifier   notify.Notifier
	log        eventlog.Store
	logger     *zap.Logger
	ackTimeout time.Duration
	attempts   *attemptTracker
	now        func() time.Time
}

// Option configures the engine
type Option func(*Engine)

// WithAckTimeout overrides the acknowledgement timeout
func WithAckTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.ackTimeout = d
		}
	}
}

// WithClock overrides the engine's time source for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.attempts = newAttemptTracker(now)
	}
}

// New creates a new completion engine
func New(store Store, ack notify.Acknowledger, notifier notify.Notifier, log eventlog.Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		ack:        ack,
		notifier:   notifier,
		log:        log,
		logger:     logger,
		ackTimeout: DefaultAckTimeout,
		now:        time.Now,
	}
	e.attempts = newAttemptTracker(e.now)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the habit's transient overlay for read-time joins
func (e *Engine) State(habitID uuid.UUID) Attempt {
	return e.attempts.get(habitID)
}

// Complete drives one completion attempt for the habit.
//
// Preconditions: the habit belongs to userID, is not completed today, and has
// no attempt in flight. On success the counters advance (current+1, longest =
// max(longest, current+1), total+1) and exactly one completed event is
// recorded. On acknowledgement failure or timeout the pending state is rolled
// back, counters are untouched, and the returned error wraps ErrAckFailed so
// the caller can retry.
func (e *Engine) Complete(ctx context.Context, userID, habitID uuid.UUID) (*models.Habit, error) {
	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, ErrNotOwner
	}

	now := e.now()
	if habit.CompletedOn(now) {
		return nil, ErrAlreadyCompleted
	}
	done, err := e.store.HasCompletionOn(ctx, habitID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check today's completions: %w", err)
	}
	if done {
		return nil, ErrAlreadyCompleted
	}

	if !e.attempts.begin(habitID) {
		return nil, ErrAttemptInFlight
	}
	// Every path below must resolve the attempt; a permanently pending habit
	// is a bug.
	defer e.attempts.resolve(habitID)

	e.appendLog(ctx, habit, eventlog.RecordStatusPending, models.CompletionSourceUser, nil)

	ackCtx, cancel := context.WithTimeout(ctx, e.ackTimeout)
	defer cancel()

	ack, err := e.ack.AcknowledgeCompletion(ackCtx, habit.ID, habit.Name)
	if err != nil {
		e.logger.Warn("completion_ack_failed",
			zap.String("habit_id", habit.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAckFailed, err)
	}
	if !ack.Success {
		e.logger.Warn("completion_ack_rejected",
			zap.String("habit_id", habit.ID.String()),
			zap.String("message", ack.Message),
		)
		return nil, fmt.Errorf("%w: %s", ErrAckFailed, ack.Message)
	}

	newStreak := habit.CurrentStreak + 1
	habit.CurrentStreak = newStreak
	if newStreak > habit.LongestStreak {
		habit.LongestStreak = newStreak
	}
	habit.TotalCompletions++
	completedAt := e.now()
	habit.LastCompletedAt = &completedAt

	timeOfDay := habit.TimeOfDay
	event := &models.CompletionEvent{
		ID:          uuid.New(),
		HabitID:     habit.ID,
		UserID:      habit.UserID,
		Status:      models.CompletionStatusCompleted,
		Source:      models.CompletionSourceWebhook,
		StreakDays:  &newStreak,
		TimeOfDay:   &timeOfDay,
		CompletedAt: completedAt,
	}

	if err := e.store.CommitCompletion(ctx, habit, event); err != nil {
		if errors.Is(err, database.ErrDuplicateCompletion) {
			// A concurrent or retried submission already recorded today's
			// completion. Idempotent: report the stored state, no second
			// increment.
			e.logger.Warn("duplicate_completion_ignored",
				zap.String("habit_id", habit.ID.String()),
			)
			return e.store.GetHabit(ctx, habitID)
		}
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	e.appendLog(ctx, habit, eventlog.RecordStatusCompleted, models.CompletionSourceWebhook, &eventlog.RecordMetadata{
		StreakDays: newStreak,
		TimeOfDay:  habit.TimeOfDay,
	})

	if newStreak%celebrationInterval == 0 {
		// Best effort; a failed celebration never affects the committed state
		if err := e.notifier.CelebrateStreak(ctx, habit.Name, newStreak); err != nil {
			e.logger.Warn("streak_celebration_failed",
				zap.String("habit_id", habit.ID.String()),
				zap.Int("streak_days", newStreak),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("habit_completed",
		zap.String("habit_id", habit.ID.String()),
		zap.Int("current_streak", habit.CurrentStreak),
		zap.Int("longest_streak", habit.LongestStreak),
	)

	return habit, nil
}

// ReportMissed records that the habit was missed today with the given reason.
// The current streak resets to zero; longest streak and total completions are
// untouched. A delayed nudge is scheduled best-effort.
func (e *Engine) ReportMissed(ctx context.Context, userID, habitID uuid.UUID, reason string) (*models.Habit, error) {
	reason = validation.SanitizeText(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, ErrNotOwner
	}
	if e.attempts.isPending(habitID) {
		return nil, ErrAttemptInFlight
	}

	habit.CurrentStreak = 0

	event := &models.CompletionEvent{
		ID:           uuid.New(),
		HabitID:      habit.ID,
		UserID:       habit.UserID,
		Status:       models.CompletionStatusMissed,
		Source:       models.CompletionSourceUser,
		MissedReason: &reason,
		CompletedAt:  e.now(),
	}

	if err := e.store.CommitMissed(ctx, habit, event); err != nil {
		return nil, fmt.Errorf("failed to commit missed report: %w", err)
	}

	e.attempts.markMissed(habitID, reason)
	e.appendLog(ctx, habit, eventlog.RecordStatusMissed, models.CompletionSourceUser, &eventlog.RecordMetadata{
		Reason: reason,
	})

	if err := e.notifier.ScheduleNudge(ctx, habit.ID, habit.Name, reason); err != nil {
		e.logger.Warn("nudge_schedule_failed",
			zap.String("habit_id", habit.ID.String()),
			zap.Error(err),
		)
	}

	e.logger.Info("habit_missed",
		zap.String("habit_id", habit.ID.String()),
		zap.String("reason", reason),
	)

	return habit, nil
}

// RecordCreated appends a created record to the event log for a new habit
func (e *Engine) RecordCreated(ctx context.Context, habit *models.Habit) {
	e.appendLog(ctx, habit, eventlog.RecordStatusCreated, models.CompletionSourceUser, nil)
}

// appendLog writes to the local analytics mirror. The log is best effort and
// never blocks the primary transition.
func (e *Engine) appendLog(ctx context.Context, habit *models.Habit, status eventlog.RecordStatus, source models.CompletionSource, meta *eventlog.RecordMetadata) {
	record := eventlog.Record{
		Timestamp: e.now(),
		HabitID:   habit.ID,
		HabitName: habit.Name,
		Status:    status,
		Source:    source,
		Metadata:  meta,
	}
	if err := e.log.Append(ctx, habit.UserID, record); err != nil {
		e.logger.Warn("event_log_append_failed",
			zap.String("habit_id", habit.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}
