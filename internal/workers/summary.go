package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/queue"
)

// summaryHour is the local hour at which daily summaries become deliverable
const summaryHour = 20

// activityWindow is how recently a user must have touched the API to
// receive a daily summary
const activityWindow = 3 * 24 * time.Hour

// SummaryScheduler enqueues daily summary jobs for recently active users
type SummaryScheduler struct {
	jobQueue       queue.JobQueue
	activityRepo   database.UserActivityRepositoryInterface
	habitRepo      database.HabitRepositoryInterface
	completionRepo database.CompletionRepositoryInterface
	logger         *zap.Logger
}

// NewSummaryScheduler creates a new summary scheduler
func NewSummaryScheduler(
	jobQueue queue.JobQueue,
	activityRepo database.UserActivityRepositoryInterface,
	habitRepo database.HabitRepositoryInterface,
	completionRepo database.CompletionRepositoryInterface,
	logger *zap.Logger,
) *SummaryScheduler {
	return &SummaryScheduler{
		jobQueue:       jobQueue,
		activityRepo:   activityRepo,
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		logger:         logger,
	}
}

// Run scans for users due a summary on a fixed interval until the context
// is cancelled
func (s *SummaryScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ScheduleSummaries(ctx); err != nil {
				s.logger.Warn("summary_scheduling_failed", zap.Error(err))
			}
		}
	}
}

// ScheduleSummaries enqueues one daily summary job per eligible user.
// A user is eligible when they were active within the activity window and
// have not already been scheduled a summary today.
func (s *SummaryScheduler) ScheduleSummaries(ctx context.Context) error {
	now := time.Now()

	activeUsers, err := s.activityRepo.GetActiveUserIDs(ctx, now.Add(-activityWindow))
	if err != nil {
		return fmt.Errorf("failed to get active users: %w", err)
	}

	deliverAt := time.Date(now.Year(), now.Month(), now.Day(), summaryHour, 0, 0, 0, now.Location())
	if now.After(deliverAt) {
		deliverAt = now
	}

	scheduled := 0
	for _, userID := range activeUsers {
		ok, err := s.scheduleForUser(ctx, userID, now, deliverAt)
		if err != nil {
			s.logger.Warn("failed_to_schedule_summary",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		if ok {
			scheduled++
		}
	}

	s.logger.Info("scheduled_daily_summaries",
		zap.Int("eligible_users", len(activeUsers)),
		zap.Int("scheduled", scheduled),
		zap.Time("deliver_at", deliverAt),
	)

	return nil
}

// scheduleForUser enqueues a summary job for one user, returning false
// when the user was skipped rather than failed
func (s *SummaryScheduler) scheduleForUser(ctx context.Context, userID uuid.UUID, now, deliverAt time.Time) (bool, error) {
	activity, err := s.activityRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.SummariesPaused {
		return false, nil
	}
	if activity.LastSummaryAt != nil && sameDay(*activity.LastSummaryAt, now) {
		return false, nil
	}

	total, err := s.habitRepo.CountByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to count habits: %w", err)
	}
	if total == 0 {
		return false, nil
	}

	completed, err := s.completionRepo.CompletedCountForDay(ctx, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to count completions: %w", err)
	}

	job := queue.NewJob(queue.JobTypeDailySummary, userID, nil)
	job.Completed = completed
	job.Total = total
	job.NotBefore = &deliverAt

	// Stale summaries are useless the next morning
	notAfter := deliverAt.Add(12 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return false, fmt.Errorf("failed to enqueue summary job: %w", err)
	}

	// Mark at enqueue time so overlapping scans cannot double-schedule
	if err := s.activityRepo.MarkSummarySent(ctx, userID, now); err != nil {
		s.logger.Warn("failed_to_mark_summary_sent",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	return true, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
