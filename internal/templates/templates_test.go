package templates

import "testing"

func TestByID(t *testing.T) {
	t.Parallel()

	tmpl := ByID("mind-meditation")
	if tmpl == nil {
		t.Fatal("Expected template for mind-meditation")
	}
	if tmpl.Name != "Mindful 10 Minutes" {
		t.Errorf("Expected Mindful 10 Minutes, got %s", tmpl.Name)
	}
	if tmpl.Category != CategoryMind {
		t.Errorf("Expected MIND category, got %s", tmpl.Category)
	}

	if got := ByID("does-not-exist"); got != nil {
		t.Errorf("Expected nil for unknown ID, got %+v", got)
	}
	if got := ByID(""); got != nil {
		t.Errorf("Expected nil for empty ID, got %+v", got)
	}
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	body := ByCategory(CategoryBody)
	if len(body) == 0 {
		t.Fatal("Expected templates in the BODY category")
	}
	for _, tmpl := range body {
		if tmpl.Category != CategoryBody {
			t.Errorf("Template %s leaked into BODY listing", tmpl.ID)
		}
	}

	if got := ByCategory(Category("NOPE")); len(got) != 0 {
		t.Errorf("Expected no templates for unknown category, got %d", len(got))
	}
}

func TestCatalogIDsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, tmpl := range Catalog {
		if tmpl.ID == "" {
			t.Error("Catalog contains a template with an empty ID")
		}
		if seen[tmpl.ID] {
			t.Errorf("Duplicate template ID %s", tmpl.ID)
		}
		seen[tmpl.ID] = true
	}
}

func TestEveryCategoryPopulated(t *testing.T) {
	t.Parallel()

	for _, category := range Categories {
		if len(ByCategory(category)) == 0 {
			t.Errorf("Category %s has no templates", category)
		}
	}
}

func TestCatalogFieldsComplete(t *testing.T) {
	t.Parallel()

	valid := make(map[Category]bool)
	for _, c := range Categories {
		valid[c] = true
	}

	for _, tmpl := range Catalog {
		if tmpl.Name == "" {
			t.Errorf("Template %s has no name", tmpl.ID)
		}
		if tmpl.TimeOfDay == "" {
			t.Errorf("Template %s has no time of day", tmpl.ID)
		}
		if tmpl.Occurrence == "" {
			t.Errorf("Template %s has no occurrence", tmpl.ID)
		}
		if !valid[tmpl.Category] {
			t.Errorf("Template %s has unknown category %s", tmpl.ID, tmpl.Category)
		}
	}
}
