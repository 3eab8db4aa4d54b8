package entities

import "testing"

func TestCompletenessViolations(t *testing.T) {
	t.Run("complete capture", func(t *testing.T) {
		c := Capture{PhotoCount: 3, RequiredPhotos: 3}
		if got := c.CompletenessViolations(); len(got) != 0 {
			t.Fatalf("expected no violations, got %v", got)
		}
	})

	t.Run("missing fields and photos", func(t *testing.T) {
		c := Capture{
			PhotoCount:     1,
			RequiredPhotos: 3,
			MissingFields:  []string{"pole_height", "cable_type"},
		}
		got := c.CompletenessViolations()
		want := []string{
			"missing field: pole_height",
			"missing field: cable_type",
			"missing photos: have 1 of 3",
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d violations, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("violation %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("no required photos means photos never block", func(t *testing.T) {
		c := Capture{PhotoCount: 0, RequiredPhotos: 0}
		if got := c.CompletenessViolations(); len(got) != 0 {
			t.Fatalf("expected no violations, got %v", got)
		}
	})
}
