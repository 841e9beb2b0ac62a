package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habito/habito-api/internal/queue"
)

const (
	// DefaultNudgeDelay is how long after a missed report the nudge fires
	DefaultNudgeDelay = 2 * time.Hour
	// nudgeExpiry drops a nudge that was never delivered; nudging about
	// yesterday's miss is worse than silence
	nudgeExpiry = 24 * time.Hour
)

// QueueNotifier implements Notifier by enqueueing jobs for the worker
// process. This keeps dispatch off the request path; the worker performs the
// (simulated) sends.
type QueueNotifier struct {
	jobs       queue.JobQueue
	nudgeDelay time.Duration
}

// NewQueueNotifier creates a queue-backed notifier
func NewQueueNotifier(jobs queue.JobQueue, nudgeDelay time.Duration) *QueueNotifier {
	if nudgeDelay <= 0 {
		nudgeDelay = DefaultNudgeDelay
	}
	return &QueueNotifier{jobs: jobs, nudgeDelay: nudgeDelay}
}

// ScheduleNudge enqueues a delayed nudge job for a missed habit
func (n *QueueNotifier) ScheduleNudge(ctx context.Context, habitID uuid.UUID, habitName, missedReason string) error {
	job := queue.NewJob(queue.JobTypeNudge, uuid.Nil, &habitID)
	job.HabitName = habitName
	job.Reason = missedReason

	notBefore := time.Now().Add(n.nudgeDelay)
	notAfter := time.Now().Add(nudgeExpiry)
	job.NotBefore = &notBefore
	job.NotAfter = &notAfter

	return n.jobs.Enqueue(ctx, job)
}

// CelebrateStreak enqueues a streak celebration job
func (n *QueueNotifier) CelebrateStreak(ctx context.Context, habitName string, streakDays int) error {
	job := queue.NewJob(queue.JobTypeStreakCelebration, uuid.Nil, nil)
	job.HabitName = habitName
	job.StreakDays = streakDays

	return n.jobs.Enqueue(ctx, job)
}

// SendDailySummary enqueues the end-of-day summary job for a user
func (n *QueueNotifier) SendDailySummary(ctx context.Context, userID uuid.UUID, completedCount, totalCount int) error {
	job := queue.NewJob(queue.JobTypeDailySummary, userID, nil)
	job.Completed = completedCount
	job.Total = totalCount

	return n.jobs.Enqueue(ctx, job)
}

var _ Notifier = (*QueueNotifier)(nil)
