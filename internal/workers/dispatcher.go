package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/notify"
	"github.com/habito/habito-api/internal/queue"
)

// Dispatcher delivers queued notification jobs through the messaging
// integration
type Dispatcher struct {
	notifier     notify.Notifier
	activityRepo database.UserActivityRepositoryInterface
	jobQueue     queue.JobQueue // For re-enqueueing jobs with delays
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(
	notifier notify.Notifier,
	activityRepo database.UserActivityRepositoryInterface,
	jobQueue queue.JobQueue,
) *Dispatcher {
	return &Dispatcher{
		notifier:     notifier,
		activityRepo: activityRepo,
		jobQueue:     jobQueue,
	}
}

// ProcessNudgeJob delivers a nudge for a missed habit
func (d *Dispatcher) ProcessNudgeJob(ctx context.Context, job *queue.Job) error {
	if job.HabitID == nil {
		return fmt.Errorf("habit_id is required for nudge job")
	}

	if err := d.notifier.ScheduleNudge(ctx, *job.HabitID, job.HabitName, job.Reason); err != nil {
		return fmt.Errorf("failed to deliver nudge: %w", err)
	}

	log.Printf("Delivered nudge for habit %s (reason: %q)", job.HabitID, job.Reason)
	return nil
}

// ProcessCelebrationJob delivers a streak milestone celebration
func (d *Dispatcher) ProcessCelebrationJob(ctx context.Context, job *queue.Job) error {
	if job.StreakDays <= 0 {
		return fmt.Errorf("streak_days is required for celebration job")
	}

	if err := d.notifier.CelebrateStreak(ctx, job.HabitName, job.StreakDays); err != nil {
		return fmt.Errorf("failed to deliver celebration: %w", err)
	}

	log.Printf("Delivered celebration for habit %q (%d day streak)", job.HabitName, job.StreakDays)
	return nil
}

// ProcessDailySummaryJob delivers the end-of-day summary, skipping users
// whose summaries are paused
func (d *Dispatcher) ProcessDailySummaryJob(ctx context.Context, job *queue.Job) error {
	activity, err := d.activityRepo.GetByUserID(ctx, job.UserID)
	if err == nil && activity != nil && activity.SummariesPaused {
		log.Printf("Skipping daily summary for user %s (summaries paused)", job.UserID)
		return nil
	}

	if err := d.notifier.SendDailySummary(ctx, job.UserID, job.Completed, job.Total); err != nil {
		return fmt.Errorf("failed to deliver daily summary: %w", err)
	}

	log.Printf("Delivered daily summary for user %s (%d/%d)", job.UserID, job.Completed, job.Total)
	return nil
}

// ProcessJob processes a job based on its type
func (d *Dispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Expired deliveries carry no value, drop them
	if job.IsExpired() {
		log.Printf("Job %s expired (NotAfter: %v), dropping", job.ID, job.NotAfter)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack expired job: %v", ackErr)
		}
		return nil
	}

	// Respect NotBefore by re-enqueueing through the delayed exchange
	if !job.ShouldProcess() {
		return d.deferJob(ctx, msg, job)
	}

	switch job.Type {
	case queue.JobTypeNudge:
		if err := d.ProcessNudgeJob(ctx, job); err != nil {
			return d.handleJobError(msg, job, err, "nudge")
		}

	case queue.JobTypeStreakCelebration:
		if err := d.ProcessCelebrationJob(ctx, job); err != nil {
			return d.handleJobError(msg, job, err, "celebration")
		}

	case queue.JobTypeDailySummary:
		if err := d.ProcessDailySummaryJob(ctx, job); err != nil {
			return d.handleJobError(msg, job, err, "daily summary")
		}

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// deferJob re-enqueues a job that is not yet eligible so the delayed
// exchange can hold it until NotBefore
func (d *Dispatcher) deferJob(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	log.Printf("Job %s not ready yet (NotBefore: %v), deferring", job.ID, job.NotBefore)

	if d.jobQueue == nil {
		// Without queue access return it to the broker and try again later
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack deferred job: %v", nackErr)
		}
		return nil
	}

	// Re-enqueue before acking; acking first would drop the job if the
	// enqueue fails
	if enqueueErr := d.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack deferred job: %v", nackErr)
		}
		return fmt.Errorf("failed to defer job %s: %w", job.ID, enqueueErr)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		log.Printf("Failed to ack deferred job: %v", ackErr)
	}
	return nil
}

// handleJobError applies the retry policy to a failed delivery
func (d *Dispatcher) handleJobError(msg queue.MessageInterface, job *queue.Job, err error, jobType string) error {
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
