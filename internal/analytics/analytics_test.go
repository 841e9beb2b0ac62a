package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/habito/habito-api/internal/eventlog"
	"github.com/habito/habito-api/internal/models"
)

func completedEvent(at time.Time, tod models.TimeOfDay) models.CompletionEvent {
	return models.CompletionEvent{
		ID:          uuid.New(),
		HabitID:     uuid.New(),
		Status:      models.CompletionStatusCompleted,
		Source:      models.CompletionSourceWebhook,
		TimeOfDay:   &tod,
		CompletedAt: at,
	}
}

func missedEvent(at time.Time, reason string) models.CompletionEvent {
	e := models.CompletionEvent{
		ID:          uuid.New(),
		HabitID:     uuid.New(),
		Status:      models.CompletionStatusMissed,
		Source:      models.CompletionSourceUser,
		CompletedAt: at,
	}
	if reason != "" {
		e.MissedReason = &reason
	}
	return e
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		completed int
		missed    int
		want      float64
	}{
		{"no attempts", 0, 0, 0},
		{"all completed", 4, 0, 100},
		{"all missed", 0, 3, 0},
		{"mixed", 5, 2, 5.0 / 7.0 * 100},
		{"even split", 3, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SuccessRate(tt.completed, tt.missed)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("SuccessRate(%d, %d) = %f, want %f", tt.completed, tt.missed, got, tt.want)
			}
		})
	}
}

func TestCurrentStreak(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 15, 0, 0, 0, time.Local)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	tests := []struct {
		name   string
		events []models.CompletionEvent
		want   int
	}{
		{
			name:   "no events",
			events: nil,
			want:   0,
		},
		{
			name:   "single completion",
			events: []models.CompletionEvent{completedEvent(day(0), models.TimeOfDayMorning)},
			want:   1,
		},
		{
			name: "three consecutive days",
			events: []models.CompletionEvent{
				completedEvent(day(-2), models.TimeOfDayMorning),
				completedEvent(day(-1), models.TimeOfDayMorning),
				completedEvent(day(0), models.TimeOfDayMorning),
			},
			want: 3,
		},
		{
			name: "gap breaks the streak",
			events: []models.CompletionEvent{
				completedEvent(day(-4), models.TimeOfDayMorning),
				completedEvent(day(-1), models.TimeOfDayMorning),
				completedEvent(day(0), models.TimeOfDayMorning),
			},
			want: 2,
		},
		{
			name: "same day counts once",
			events: []models.CompletionEvent{
				completedEvent(day(0).Add(-6*time.Hour), models.TimeOfDayMorning),
				completedEvent(day(0), models.TimeOfDayEvening),
				completedEvent(day(-1), models.TimeOfDayMorning),
			},
			want: 2,
		},
		{
			name: "missed events are ignored",
			events: []models.CompletionEvent{
				completedEvent(day(-1), models.TimeOfDayMorning),
				missedEvent(day(0), "tired"),
				completedEvent(day(0), models.TimeOfDayMorning),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CurrentStreak(tt.events); got != tt.want {
				t.Errorf("CurrentStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestObstacleBreakdown(t *testing.T) {
	t.Parallel()

	now := time.Now()
	missed := []models.CompletionEvent{
		missedEvent(now, "Too tired"),
		missedEvent(now, "Travel"),
		missedEvent(now, "Too tired"),
		missedEvent(now, ""),
		missedEvent(now, "Sick"),
		missedEvent(now, "Sick"),
	}

	got := ObstacleBreakdown(missed)

	want := []models.ObstacleCount{
		{Reason: "Sick", Count: 2},
		{Reason: "Too tired", Count: 2},
		{Reason: NoReasonSentinel, Count: 1},
		{Reason: "Travel", Count: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestObstacleBreakdown_Empty(t *testing.T) {
	t.Parallel()

	if got := ObstacleBreakdown(nil); len(got) != 0 {
		t.Errorf("Expected empty breakdown, got %+v", got)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 18, 0, 0, 0, time.Local)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	events := []models.CompletionEvent{
		completedEvent(day(-2), models.TimeOfDayMorning),
		completedEvent(day(-1), models.TimeOfDayMorning),
		completedEvent(day(0), models.TimeOfDayEvening),
		missedEvent(day(-3), "Travel"),
		// Outside the 7-day window, must not count
		completedEvent(day(-20), models.TimeOfDayMorning),
		missedEvent(day(-20), "old"),
	}

	report := Report(events, models.TimeRange7d, now)

	if report.TotalCompletions != 3 {
		t.Errorf("Expected 3 completions in window, got %d", report.TotalCompletions)
	}
	if report.CurrentStreak != 3 {
		t.Errorf("Expected streak 3, got %d", report.CurrentStreak)
	}
	if math.Abs(report.SuccessRate-75.0) > 0.001 {
		t.Errorf("Expected success rate 75, got %f", report.SuccessRate)
	}
	if report.TimeOfDayBreakdown.Morning != 2 || report.TimeOfDayBreakdown.Evening != 1 {
		t.Errorf("Unexpected time-of-day breakdown: %+v", report.TimeOfDayBreakdown)
	}
	if len(report.ObstacleBreakdown) != 1 || report.ObstacleBreakdown[0].Reason != "Travel" {
		t.Errorf("Unexpected obstacle breakdown: %+v", report.ObstacleBreakdown)
	}
	if len(report.DailySuccessRate) != 7 {
		t.Fatalf("Expected 7 daily points, got %d", len(report.DailySuccessRate))
	}

	// Chronological, ending today
	last := report.DailySuccessRate[len(report.DailySuccessRate)-1]
	if last.Date != now.Format("2006-01-02") {
		t.Errorf("Expected last point for today, got %s", last.Date)
	}
	if last.Rate != 100 {
		t.Errorf("Expected 100%% for today, got %f", last.Rate)
	}

	// The missed-only day reports zero
	missedDay := now.AddDate(0, 0, -3).Format("2006-01-02")
	for _, point := range report.DailySuccessRate {
		if point.Date == missedDay && point.Rate != 0 {
			t.Errorf("Expected 0%% on missed day, got %f", point.Rate)
		}
	}
}

func TestReport_Empty(t *testing.T) {
	t.Parallel()

	report := Report(nil, models.TimeRange30d, time.Now())

	if report.TotalCompletions != 0 || report.CurrentStreak != 0 || report.SuccessRate != 0 {
		t.Errorf("Expected zeroed report, got %+v", report)
	}
	if len(report.DailySuccessRate) != 30 {
		t.Errorf("Expected 30 daily points even with no events, got %d", len(report.DailySuccessRate))
	}
}

func TestReport_AllTimeWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	events := []models.CompletionEvent{
		completedEvent(now.AddDate(-2, 0, 0), models.TimeOfDayMorning),
		completedEvent(now, models.TimeOfDayMorning),
	}

	report := Report(events, models.TimeRangeAll, now)
	if report.TotalCompletions != 2 {
		t.Errorf("Expected all-time window to include old events, got %d", report.TotalCompletions)
	}
}

func TestEventsFromLog(t *testing.T) {
	t.Parallel()

	habitID := uuid.New()
	now := time.Now()

	records := []eventlog.Record{
		{Timestamp: now.Add(-3 * time.Hour), HabitID: habitID, HabitName: "Read", Status: eventlog.RecordStatusCreated, Source: models.CompletionSourceUser},
		{Timestamp: now.Add(-2 * time.Hour), HabitID: habitID, HabitName: "Read", Status: eventlog.RecordStatusPending, Source: models.CompletionSourceUser},
		{
			Timestamp: now.Add(-1 * time.Hour),
			HabitID:   habitID,
			HabitName: "Read",
			Status:    eventlog.RecordStatusCompleted,
			Source:    models.CompletionSourceWebhook,
			Metadata:  &eventlog.RecordMetadata{StreakDays: 4, TimeOfDay: models.TimeOfDayEvening},
		},
		{
			Timestamp: now,
			HabitID:   habitID,
			HabitName: "Read",
			Status:    eventlog.RecordStatusMissed,
			Source:    models.CompletionSourceUser,
			Metadata:  &eventlog.RecordMetadata{Reason: "Forgot"},
		},
	}

	events := EventsFromLog(records)

	if len(events) != 2 {
		t.Fatalf("Expected created/pending to be skipped, got %d events", len(events))
	}

	completed := events[0]
	if completed.Status != models.CompletionStatusCompleted {
		t.Errorf("Expected completed event, got %s", completed.Status)
	}
	if completed.StreakDays == nil || *completed.StreakDays != 4 {
		t.Error("Expected streak days 4 on projected event")
	}
	if completed.TimeOfDay == nil || *completed.TimeOfDay != models.TimeOfDayEvening {
		t.Error("Expected evening time of day on projected event")
	}

	missed := events[1]
	if missed.Status != models.CompletionStatusMissed {
		t.Errorf("Expected missed event, got %s", missed.Status)
	}
	if missed.MissedReason == nil || *missed.MissedReason != "Forgot" {
		t.Error("Expected missed reason on projected event")
	}
}

func TestYearView(t *testing.T) {
	t.Parallel()

	jan5 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.Local)
	jan6 := time.Date(2026, 1, 6, 9, 0, 0, 0, time.Local)
	otherYear := time.Date(2025, 12, 31, 9, 0, 0, 0, time.Local)

	events := []models.CompletionEvent{
		missedEvent(jan5, "busy"),
		completedEvent(jan5, models.TimeOfDayMorning), // completed wins over missed same day
		missedEvent(jan6, "travel"),
		completedEvent(otherYear, models.TimeOfDayMorning),
	}

	points := YearView(events, 2026)

	if len(points) != 2 {
		t.Fatalf("Expected 2 in-year days, got %d: %+v", len(points), points)
	}
	if points[0].Date != "2026-01-05" || !points[0].Completed {
		t.Errorf("Expected 2026-01-05 completed, got %+v", points[0])
	}
	if points[1].Date != "2026-01-06" || points[1].Completed {
		t.Errorf("Expected 2026-01-06 missed, got %+v", points[1])
	}
}
