package notify

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ackBaseDelay and ackJitter bound the simulated network delay (800-1200ms)
	ackBaseDelay = 800 * time.Millisecond
	ackJitter    = 400 * time.Millisecond

	nudgeDelay       = 300 * time.Millisecond
	summaryDelay     = 500 * time.Millisecond
	celebrationDelay = 400 * time.Millisecond
)

// Simulator stands in for an external messaging integration. It sleeps for a
// bounded random delay, always succeeds, and logs the message it would have
// sent. All sleeps are context aware so a cancelled or timed-out caller never
// waits out the full delay.
type Simulator struct {
	logger *zap.Logger
	rng    *rand.Rand
}

// NewSimulator creates a new notification simulator
func NewSimulator(logger *zap.Logger) *Simulator {
	return &Simulator{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AcknowledgeCompletion simulates the webhook round trip confirming a
// completion
func (s *Simulator) AcknowledgeCompletion(ctx context.Context, habitID uuid.UUID, habitName string) (*Ack, error) {
	delay := ackBaseDelay + time.Duration(s.rng.Int63n(int64(ackJitter)))
	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}

	ack := &Ack{
		Success:   true,
		Message:   fmt.Sprintf("Habit %q marked complete via webhook", habitName),
		Timestamp: time.Now().UTC(),
	}

	s.logger.Info("completion_acknowledged",
		zap.String("habit_id", habitID.String()),
		zap.Duration("simulated_delay", delay),
	)

	return ack, nil
}

// ScheduleNudge simulates scheduling a delayed nudge for a missed habit
func (s *Simulator) ScheduleNudge(ctx context.Context, habitID uuid.UUID, habitName, missedReason string) error {
	if err := sleep(ctx, nudgeDelay); err != nil {
		return err
	}

	s.logger.Info("nudge_scheduled",
		zap.String("habit_id", habitID.String()),
		zap.String("habit_name", habitName),
		zap.String("reason", missedReason),
	)

	return nil
}

// CelebrateStreak simulates sending a streak celebration message
func (s *Simulator) CelebrateStreak(ctx context.Context, habitName string, streakDays int) error {
	if err := sleep(ctx, celebrationDelay); err != nil {
		return err
	}

	s.logger.Info("streak_celebration_sent",
		zap.String("habit_name", habitName),
		zap.Int("streak_days", streakDays),
	)

	return nil
}

// SendDailySummary simulates sending the end-of-day completion summary
func (s *Simulator) SendDailySummary(ctx context.Context, userID uuid.UUID, completedCount, totalCount int) error {
	if err := sleep(ctx, summaryDelay); err != nil {
		return err
	}

	s.logger.Info("daily_summary_sent",
		zap.String("user_id", userID.String()),
		zap.Int("completed", completedCount),
		zap.Int("total", totalCount),
	)

	return nil
}

// sleep waits for d or returns early with the context error
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var (
	_ Acknowledger = (*Simulator)(nil)
	_ Notifier     = (*Simulator)(nil)
)
