// Package calendar renders a user's habits as an iCalendar feed: one
// recurring 30-minute event per habit, with the recurrence rule derived from
// the habit's occurrence and the start time from its time-of-day bucket.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/habito/habito-api/internal/models"
)

const (
	prodID        = "-//Habito//Habit Tracker//EN"
	eventDuration = 30 * time.Minute
)

// formatICSDate renders a timestamp in the UTC basic format iCalendar expects
func formatICSDate(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// recurrenceRule maps an occurrence onto an RFC 5545 RRULE
func recurrenceRule(occurrence models.Occurrence) string {
	switch occurrence {
	case models.OccurrenceDaily:
		return "FREQ=DAILY"
	case models.OccurrenceWeekly:
		return "FREQ=WEEKLY"
	case models.OccurrenceMonthly:
		return "FREQ=MONTHLY"
	case models.OccurrenceWeekdays:
		return "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
	default:
		return "FREQ=DAILY"
	}
}

// startClock returns the hour and minute for a habit's events. A specific
// time ("HH:MM") wins over the time-of-day bucket default.
func startClock(habit *models.Habit) (hour, minute int) {
	if habit.SpecificTime != nil {
		if _, err := fmt.Sscanf(*habit.SpecificTime, "%d:%d", &hour, &minute); err == nil {
			if hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
				return hour, minute
			}
		}
	}

	switch habit.TimeOfDay {
	case models.TimeOfDayMorning:
		return 8, 0
	case models.TimeOfDayAfternoon:
		return 14, 0
	case models.TimeOfDayEvening:
		return 19, 0
	default:
		return 10, 0
	}
}

// escapeText escapes the characters iCalendar TEXT values reserve
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// Generate renders the habits as a VCALENDAR document
func Generate(habits []*models.Habit, now time.Time) string {
	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:" + prodID)
	writeLine("CALSCALE:GREGORIAN")
	writeLine("METHOD:PUBLISH")

	dtstamp := formatICSDate(now)
	for _, habit := range habits {
		hour, minute := startClock(habit)
		start := time.Date(
			habit.CreatedAt.Year(), habit.CreatedAt.Month(), habit.CreatedAt.Day(),
			hour, minute, 0, 0, habit.CreatedAt.Location(),
		)
		end := start.Add(eventDuration)

		writeLine("BEGIN:VEVENT")
		writeLine(fmt.Sprintf("UID:%s@habito.app", habit.ID))
		writeLine("DTSTAMP:" + dtstamp)
		writeLine("DTSTART:" + formatICSDate(start))
		writeLine("DTEND:" + formatICSDate(end))
		writeLine("RRULE:" + recurrenceRule(habit.Occurrence))
		writeLine("SUMMARY:" + escapeText(habit.Name))
		writeLine("DESCRIPTION:" + escapeText(habit.Description))
		writeLine("STATUS:CONFIRMED")
		writeLine("SEQUENCE:0")
		writeLine("END:VEVENT")
	}

	writeLine("END:VCALENDAR")
	return b.String()
}
