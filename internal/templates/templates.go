// Package templates holds the built-in habit catalog users can pick from
// instead of filling in a custom habit form.
package templates

import "github.com/habito/habito-api/internal/models"

// Category groups templates for the picker
type Category string

const (
	CategoryMind      Category = "MIND"
	CategoryBody      Category = "BODY"
	CategoryVitality  Category = "VITALITY"
	CategoryPresence  Category = "PRESENCE"
	CategoryGrowth    Category = "GROWTH"
	CategoryRelations Category = "RELATIONS"
)

// Categories lists all template categories in display order
var Categories = []Category{
	CategoryMind,
	CategoryBody,
	CategoryVitality,
	CategoryPresence,
	CategoryGrowth,
	CategoryRelations,
}

// Template is a preset habit definition
type Template struct {
	ID          string            `json:"id"`
	Category    Category          `json:"category"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	TimeOfDay   models.TimeOfDay  `json:"time_of_day"`
	Occurrence  models.Occurrence `json:"occurrence"`
}

// ByID returns the template with the given ID, or nil
func ByID(id string) *Template {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// ByCategory returns the templates in a category, preserving catalog order
func ByCategory(category Category) []Template {
	var out []Template
	for _, t := range Catalog {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Catalog is the built-in template set
var Catalog = []Template{
	{ID: "mind-deep-reading", Category: CategoryMind, Name: "Deep Reading Session", Description: "Read a non-fiction book chapter", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "mind-meditation", Category: CategoryMind, Name: "Mindful 10 Minutes", Description: "Meditate (10+ minutes)", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceDaily},
	{ID: "mind-language-drill", Category: CategoryMind, Name: "Language Drill (15m)", Description: "Practice a foreign language", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "mind-skill-building", Category: CategoryMind, Name: "Skill Building Block", Description: "Learn a new skill (e.g., coding, drawing)", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "mind-tech-shutdown", Category: CategoryMind, Name: "Evening Tech Shutdown", Description: "Digital Detox (1 hour before bed)", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},
	{ID: "mind-reflection-log", Category: CategoryMind, Name: "Daily Reflection Log", Description: "Journal/Write a reflection", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},
	{ID: "mind-learning-unit", Category: CategoryMind, Name: "Structured Learning Unit", Description: "Attend an online course/lecture", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceWeekly},
	{ID: "mind-podcast", Category: CategoryMind, Name: "Knowledge Podcast", Description: "Listen to an educational podcast", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceWeekly},
	{ID: "mind-visualization", Category: CategoryMind, Name: "Future Vision Practice", Description: "Practice visualization (future goals)", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceDaily},

	{ID: "body-step-count", Category: CategoryBody, Name: "Target Step Count", Description: "Walk 10,000 steps", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "body-strength", Category: CategoryBody, Name: "Strength Session", Description: "Perform resistance training", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceWeekly},
	{ID: "body-mobility", Category: CategoryBody, Name: "Mobility Flow", Description: "Do 20 minutes of stretching/mobility", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceDaily},
	{ID: "body-cardio", Category: CategoryBody, Name: "Cardio Burst", Description: "Do a short burst of cardio (HIIT/run)", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceWeekly},
	{ID: "body-cold-exposure", Category: CategoryBody, Name: "Cold Resilience Practice", Description: "Do a 5-minute cold exposure (shower/walk)", TimeOfDay: models.TimeOfDayMorning, Occurrence: models.OccurrenceDaily},
	{ID: "body-core", Category: CategoryBody, Name: "Core Stability Routine", Description: "Do exercises for core strength", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceWeekly},

	{ID: "vitality-hydration", Category: CategoryVitality, Name: "Daily Hydration Goal", Description: "Drink the recommended amount of water", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "vitality-greens", Category: CategoryVitality, Name: "Green Intake", Description: "Eat a serving of leafy greens", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},
	{ID: "vitality-lunch", Category: CategoryVitality, Name: "Self-Prepared Lunch", Description: "Prepare my own healthy lunch", TimeOfDay: models.TimeOfDayAfternoon, Occurrence: models.OccurrenceWeekdays},
	{ID: "vitality-sleep", Category: CategoryVitality, Name: "7+ Hours Sleep Goal", Description: "Get 7+ hours of quality sleep", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},

	{ID: "presence-gratitude", Category: CategoryPresence, Name: "Gratitude Journal", Description: "Write 3 things you're grateful for", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},
	{ID: "presence-walk", Category: CategoryPresence, Name: "Mindful Walk", Description: "Take a walk without your phone", TimeOfDay: models.TimeOfDayAfternoon, Occurrence: models.OccurrenceDaily},
	{ID: "presence-breathing", Category: CategoryPresence, Name: "Breathing Reset", Description: "Do a 2-minute breathing exercise", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceDaily},

	{ID: "growth-reading", Category: CategoryGrowth, Name: "Read for 30min", Description: "Non-fiction or learning material", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},
	{ID: "growth-side-project", Category: CategoryGrowth, Name: "Side Project Hour", Description: "Work on a personal project", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceWeekdays},
	{ID: "growth-review", Category: CategoryGrowth, Name: "Weekly Review", Description: "Review goals and plan the week ahead", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceWeekly},

	{ID: "relations-checkin", Category: CategoryRelations, Name: "Friend Check-In", Description: "Message or call a friend", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceWeekly},
	{ID: "relations-family-time", Category: CategoryRelations, Name: "Family Time Block", Description: "Spend undistracted time with family", TimeOfDay: models.TimeOfDayEvening, Occurrence: models.OccurrenceDaily},
	{ID: "relations-appreciation", Category: CategoryRelations, Name: "Express Appreciation", Description: "Tell someone what you appreciate about them", TimeOfDay: models.TimeOfDayAnytime, Occurrence: models.OccurrenceWeekly},
}
