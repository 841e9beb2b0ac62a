package validation

import "testing"

func TestValidateTimeOfDay(t *testing.T) {
	t.Parallel()

	valid := []string{"morning", "afternoon", "evening", "anytime"}
	for _, v := range valid {
		if err := ValidateTimeOfDay(v); err != nil {
			t.Errorf("Expected %q valid, got %v", v, err)
		}
	}

	invalid := []string{"", "Morning", "night", "noon", "MORNING"}
	for _, v := range invalid {
		if err := ValidateTimeOfDay(v); err == nil {
			t.Errorf("Expected %q invalid", v)
		}
	}
}

func TestValidateOccurrence(t *testing.T) {
	t.Parallel()

	valid := []string{"daily", "weekly", "monthly", "weekdays"}
	for _, v := range valid {
		if err := ValidateOccurrence(v); err != nil {
			t.Errorf("Expected %q valid, got %v", v, err)
		}
	}

	invalid := []string{"", "Daily", "yearly", "weekends", "biweekly"}
	for _, v := range invalid {
		if err := ValidateOccurrence(v); err == nil {
			t.Errorf("Expected %q invalid", v)
		}
	}
}

func TestValidateTimeRange(t *testing.T) {
	t.Parallel()

	valid := []string{"7d", "30d", "90d", "all"}
	for _, v := range valid {
		if err := ValidateTimeRange(v); err != nil {
			t.Errorf("Expected %q valid, got %v", v, err)
		}
	}

	invalid := []string{"", "14d", "1y", "ALL", "week"}
	for _, v := range invalid {
		if err := ValidateTimeRange(v); err == nil {
			t.Errorf("Expected %q invalid", v)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"trims whitespace", "  padded  ", "padded"},
		{"strips control characters", "before\x00\x07after", "beforeafter"},
		{"keeps newline and tab", "line one\n\tline two", "line one\n\tline two"},
		{"only whitespace", "   \t\n  ", ""},
		{"empty", "", ""},
		{"unicode preserved", "héllo wörld", "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructValidationTags(t *testing.T) {
	t.Parallel()

	type habitInput struct {
		TimeOfDay  string `validate:"required,time_of_day"`
		Occurrence string `validate:"required,occurrence"`
	}

	good := habitInput{TimeOfDay: "morning", Occurrence: "daily"}
	if err := Validate.Struct(good); err != nil {
		t.Errorf("Expected valid struct, got %v", err)
	}

	bad := habitInput{TimeOfDay: "dawn", Occurrence: "daily"}
	if err := Validate.Struct(bad); err == nil {
		t.Error("Expected time_of_day tag to reject unknown value")
	}

	bad = habitInput{TimeOfDay: "morning", Occurrence: "fortnightly"}
	if err := Validate.Struct(bad); err == nil {
		t.Error("Expected occurrence tag to reject unknown value")
	}
}

func TestTimeRangeTag(t *testing.T) {
	t.Parallel()

	type query struct {
		Range string `validate:"omitempty,time_range"`
	}

	if err := Validate.Struct(query{Range: "30d"}); err != nil {
		t.Errorf("Expected 30d valid, got %v", err)
	}
	if err := Validate.Struct(query{Range: ""}); err != nil {
		t.Errorf("Expected empty range to pass omitempty, got %v", err)
	}
	if err := Validate.Struct(query{Range: "45d"}); err == nil {
		t.Error("Expected 45d to be rejected")
	}
}
