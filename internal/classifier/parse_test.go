package classifier

import "testing"

func TestParseConcern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   Concern
		stored string
	}{
		{"upper yes", "YES: feeling low", Concern{true, "feeling low"}, "Concern detected: feeling low"},
		{"lower no", "no: all good", Concern{false, "all good"}, "No concern detected: all good"},
		{"mixed case keeps reason casing", "  Yes:  Mentions Insomnia ", Concern{true, "Mentions Insomnia"}, "Concern detected: Mentions Insomnia"},
		{"no prefix", "maybe?", Concern{false, "maybe?"}, "No concern detected: maybe?"},
		{"yes without colon", "yes the user is sad", Concern{false, "yes the user is sad"}, "No concern detected: yes the user is sad"},
		{"empty", "", Concern{false, ""}, "No concern detected: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseConcern(tt.input)
			if got != tt.want {
				t.Errorf("ParseConcern(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.Text() != tt.stored {
				t.Errorf("Text() = %q, want %q", got.Text(), tt.stored)
			}
		})
	}
}

func TestParseRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      Risk
		wantOK    bool
		wantAgree bool
	}{
		{"example answer", "15: Green", Risk{15, CategoryGreen, "Green"}, true, true},
		{"decimal and case", "45.5: yellow", Risk{45.5, CategoryYellow, "yellow"}, true, true},
		{"percent sign", "72%: Red", Risk{72, CategoryRed, "Red"}, true, true},
		{"label disagrees", "85: Green", Risk{85, CategoryRed, "Green"}, true, false},
		{"unknown label", "30: Purple", Risk{30, CategoryOrange, "Purple"}, true, false},
		{"missing label", "20:", Risk{20, CategoryOrange, ""}, true, false},
		{"extra colons", "10: Green: fine", Risk{10, CategoryGreen, "Green: fine"}, true, false},
		{"no colon", "not sure", FallbackRisk, false, true},
		{"non numeric", "high: Red", FallbackRisk, false, true},
		{"above range", "150: Red", FallbackRisk, false, true},
		{"negative", "-5: Green", FallbackRisk, false, true},
		{"nan", "NaN: Green", FallbackRisk, false, true},
		{"inf", "Inf: Red", FallbackRisk, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseRisk(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ParseRisk(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseRisk(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if ok && got.LabelAgrees() != tt.wantAgree {
				t.Errorf("LabelAgrees() = %v, want %v", got.LabelAgrees(), tt.wantAgree)
			}
		})
	}
}

func TestCategoryFor(t *testing.T) {
	t.Parallel()

	tests := map[float64]Category{
		0:     CategoryGreen,
		19.99: CategoryGreen,
		20:    CategoryOrange,
		39.9:  CategoryOrange,
		40:    CategoryYellow,
		59.9:  CategoryYellow,
		60:    CategoryRed,
		100:   CategoryRed,
	}
	for percent, want := range tests {
		if got := CategoryFor(percent); got != want {
			t.Errorf("CategoryFor(%v) = %s, want %s", percent, got, want)
		}
	}
}

func TestLookupCategory(t *testing.T) {
	t.Parallel()

	if c, ok := LookupCategory(" oRaNgE "); !ok || c != CategoryOrange {
		t.Errorf("LookupCategory(orange) = %q, %v", c, ok)
	}
	if _, ok := LookupCategory("blue"); ok {
		t.Error("LookupCategory(blue) ok = true, want false")
	}
}
