package models

// TimeRange is a bounded analytics window
type TimeRange string

const (
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
	TimeRange90d TimeRange = "90d"
	TimeRangeAll TimeRange = "all"
)

// Days returns the number of calendar days covered by the range. The "all"
// range is open-ended for filtering but spans a year for daily series.
func (r TimeRange) Days() int {
	switch r {
	case TimeRange7d:
		return 7
	case TimeRange30d:
		return 30
	case TimeRange90d:
		return 90
	default:
		return 365
	}
}

// DailyRate is one point of the daily success rate series
type DailyRate struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Rate float64 `json:"rate"` // 0-100
}

// ObstacleCount is one entry of the obstacle breakdown, ordered by frequency
type ObstacleCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// TimeOfDayBreakdown counts completed events per time-of-day bucket
type TimeOfDayBreakdown struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	Anytime   int `json:"anytime"`
}

// AnalyticsReport is the full rollup for a window
type AnalyticsReport struct {
	TotalCompletions   int                `json:"total_completions"`
	CurrentStreak      int                `json:"current_streak"`
	SuccessRate        float64            `json:"success_rate"` // 0-100
	TimeOfDayBreakdown TimeOfDayBreakdown `json:"time_of_day_breakdown"`
	ObstacleBreakdown  []ObstacleCount    `json:"obstacle_breakdown"`
	DailySuccessRate   []DailyRate        `json:"daily_success_rate"`
}

// HeatmapPoint is a per-day completion count for the activity heatmap
type HeatmapPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// YearDayPoint is a per-day completed flag for the year view
type YearDayPoint struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// MilestoneSummary aggregates streak badges across all of a user's habits.
// Recomputed by re-reading the full habit set, never maintained incrementally.
type MilestoneSummary struct {
	LongestStreak    int `json:"longest_streak"`
	TotalCompletions int `json:"total_completions"`
}
