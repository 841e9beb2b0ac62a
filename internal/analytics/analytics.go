// Package analytics computes read-only rollups over completion event history.
// Every function here is pure: identical inputs produce identical reports,
// and nothing mutates habit state.
package analytics

import (
	"sort"
	"time"

	"github.com/habito/habito-api/internal/eventlog"
	"github.com/habito/habito-api/internal/models"
)

// NoReasonSentinel stands in for missed events recorded without a reason
const NoReasonSentinel = "No reason provided"

// windowStart returns the inclusive lower bound for the range, or the zero
// time for the all-time window
func windowStart(window models.TimeRange, now time.Time) time.Time {
	if window == models.TimeRangeAll {
		return time.Time{}
	}
	return now.AddDate(0, 0, -window.Days())
}

// filterWindow returns the events inside the window, preserving order
func filterWindow(events []models.CompletionEvent, window models.TimeRange, now time.Time) []models.CompletionEvent {
	start := windowStart(window, now)
	var out []models.CompletionEvent
	for _, e := range events {
		if !e.CompletedAt.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

// Report computes the full analytics rollup for the window ending at now
func Report(events []models.CompletionEvent, window models.TimeRange, now time.Time) models.AnalyticsReport {
	inWindow := filterWindow(events, window, now)

	var completed, missed []models.CompletionEvent
	for _, e := range inWindow {
		switch e.Status {
		case models.CompletionStatusCompleted:
			completed = append(completed, e)
		case models.CompletionStatusMissed:
			missed = append(missed, e)
		}
	}

	return models.AnalyticsReport{
		TotalCompletions:   len(completed),
		CurrentStreak:      CurrentStreak(inWindow),
		SuccessRate:        SuccessRate(len(completed), len(missed)),
		TimeOfDayBreakdown: timeOfDayBreakdown(completed),
		ObstacleBreakdown:  ObstacleBreakdown(missed),
		DailySuccessRate:   dailySuccessRate(inWindow, window, now),
	}
}

// SuccessRate returns completed/(completed+missed) as a percentage in [0,100].
// Zero attempts yield 0, never NaN.
func SuccessRate(completedCount, missedCount int) float64 {
	attempts := completedCount + missedCount
	if attempts == 0 {
		return 0
	}
	return float64(completedCount) / float64(attempts) * 100
}

// CurrentStreak recomputes the streak from the event history, independent of
// any stored counter. Completed events are scanned newest first, grouped by
// local calendar day; consecutive days extend the streak and a gap of more
// than one day terminates it. Multiple completions on one day count once.
func CurrentStreak(events []models.CompletionEvent) int {
	var days []time.Time
	seen := make(map[string]bool)
	for _, e := range events {
		if e.Status != models.CompletionStatusCompleted {
			continue
		}
		local := e.CompletedAt.Local()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
		key := day.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	last := days[0]
	for _, day := range days[1:] {
		diff := int(last.Sub(day).Hours() / 24)
		if diff == 1 {
			streak++
			last = day
		} else if diff > 1 {
			break
		}
	}

	return streak
}

// timeOfDayBreakdown counts completed events per time-of-day bucket
func timeOfDayBreakdown(completed []models.CompletionEvent) models.TimeOfDayBreakdown {
	var b models.TimeOfDayBreakdown
	for _, e := range completed {
		if e.TimeOfDay == nil {
			continue
		}
		switch *e.TimeOfDay {
		case models.TimeOfDayMorning:
			b.Morning++
		case models.TimeOfDayAfternoon:
			b.Afternoon++
		case models.TimeOfDayEvening:
			b.Evening++
		case models.TimeOfDayAnytime:
			b.Anytime++
		}
	}
	return b
}

// ObstacleBreakdown tallies missed-reason frequencies, sorted descending by
// count. Ties break alphabetically so the output is deterministic. Missing
// reasons fall under NoReasonSentinel.
func ObstacleBreakdown(missed []models.CompletionEvent) []models.ObstacleCount {
	counts := make(map[string]int)
	for _, e := range missed {
		reason := NoReasonSentinel
		if e.MissedReason != nil && *e.MissedReason != "" {
			reason = *e.MissedReason
		}
		counts[reason]++
	}

	out := make([]models.ObstacleCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, models.ObstacleCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})

	return out
}

// dailySuccessRate produces one point per calendar day in the window, oldest
// first, each point 0-100 with 0 for days without attempts
func dailySuccessRate(inWindow []models.CompletionEvent, window models.TimeRange, now time.Time) []models.DailyRate {
	type tally struct{ completed, missed int }
	byDay := make(map[string]*tally)
	for _, e := range inWindow {
		key := e.CompletedAt.Local().Format("2006-01-02")
		t := byDay[key]
		if t == nil {
			t = &tally{}
			byDay[key] = t
		}
		switch e.Status {
		case models.CompletionStatusCompleted:
			t.completed++
		case models.CompletionStatusMissed:
			t.missed++
		}
	}

	days := window.Days()
	series := make([]models.DailyRate, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Local().Format("2006-01-02")
		rate := 0.0
		if t := byDay[date]; t != nil {
			rate = SuccessRate(t.completed, t.missed)
		}
		series = append(series, models.DailyRate{Date: date, Rate: rate})
	}

	return series
}

// EventsFromLog projects local event-log records onto completion events so
// the aggregator can consume either source. Pending and created records carry
// no outcome and are skipped.
func EventsFromLog(records []eventlog.Record) []models.CompletionEvent {
	var events []models.CompletionEvent
	for _, r := range records {
		var status models.CompletionStatus
		switch r.Status {
		case eventlog.RecordStatusCompleted:
			status = models.CompletionStatusCompleted
		case eventlog.RecordStatusMissed:
			status = models.CompletionStatusMissed
		default:
			continue
		}

		e := models.CompletionEvent{
			HabitID:     r.HabitID,
			Status:      status,
			Source:      r.Source,
			CompletedAt: r.Timestamp,
		}
		if r.Metadata != nil {
			if r.Metadata.Reason != "" {
				reason := r.Metadata.Reason
				e.MissedReason = &reason
			}
			if r.Metadata.StreakDays > 0 {
				streak := r.Metadata.StreakDays
				e.StreakDays = &streak
			}
			if r.Metadata.TimeOfDay != "" {
				tod := r.Metadata.TimeOfDay
				e.TimeOfDay = &tod
			}
		}
		events = append(events, e)
	}
	return events
}

// YearView flattens a year's events into per-day completed flags for the
// year heatmap. Days with both completed and missed events report completed.
func YearView(events []models.CompletionEvent, year int) []models.YearDayPoint {
	completedDays := make(map[string]bool)
	for _, e := range events {
		local := e.CompletedAt.Local()
		if local.Year() != year {
			continue
		}
		key := local.Format("2006-01-02")
		if e.Status == models.CompletionStatusCompleted {
			completedDays[key] = true
		} else if _, ok := completedDays[key]; !ok {
			completedDays[key] = false
		}
	}

	out := make([]models.YearDayPoint, 0, len(completedDays))
	for date, completed := range completedDays {
		out = append(out, models.YearDayPoint{Date: date, Completed: completed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	return out
}
