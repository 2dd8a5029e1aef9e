package classifier

import (
	"math"
	"strconv"
	"strings"
)

// Category is a discrete risk band.
type Category string

// Risk categories in increasing severity.
const (
	CategoryGreen  Category = "Green"
	CategoryOrange Category = "Orange"
	CategoryYellow Category = "Yellow"
	CategoryRed    Category = "Red"
)

// Categories lists every category in increasing severity.
var Categories = []Category{CategoryGreen, CategoryOrange, CategoryYellow, CategoryRed}

// CategoryFor returns the band a percent falls in: <20 Green, <40 Orange,
// <60 Yellow, otherwise Red.
func CategoryFor(percent float64) Category {
	switch {
	case percent < 20:
		return CategoryGreen
	case percent < 40:
		return CategoryOrange
	case percent < 60:
		return CategoryYellow
	default:
		return CategoryRed
	}
}

// LookupCategory matches a label case-insensitively against the known
// categories.
func LookupCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(label, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Concern is a parsed concern-detection answer.
type Concern struct {
	Detected bool
	Reason   string
}

// Text renders the concern the way it is stored.
func (c Concern) Text() string {
	if c.Detected {
		return "Concern detected: " + c.Reason
	}
	return "No concern detected: " + c.Reason
}

// Risk is a parsed risk answer. Label is the category text the provider wrote,
// before reconciliation with the percent.
type Risk struct {
	Percent  float64
	Category Category
	Label    string
}

// FallbackRisk is used whenever a risk answer cannot be parsed.
var FallbackRisk = Risk{Percent: 0, Category: CategoryGreen}

// ParseConcern reads a "yes: <reason>" / "no: <reason>" answer. The prefix is
// matched case-insensitively; any other shape yields (false, raw).
func ParseConcern(raw string) Concern {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "yes:"):
		return Concern{Detected: true, Reason: strings.TrimSpace(text[len("yes:"):])}
	case strings.HasPrefix(lower, "no:"):
		return Concern{Detected: false, Reason: strings.TrimSpace(text[len("no:"):])}
	default:
		return Concern{Detected: false, Reason: text}
	}
}

// ParseRisk reads a "NUMBER: CATEGORY" answer, splitting on the first colon.
// It reports ok=false and returns FallbackRisk when there is no colon, the
// number does not parse, or it is not a finite value in [0, 100].
//
// The returned Category always matches the percent band. Label keeps the
// provider's text so callers can log a disagreement.
func ParseRisk(raw string) (Risk, bool) {
	head, tail, found := strings.Cut(strings.TrimSpace(raw), ":")
	if !found {
		return FallbackRisk, false
	}

	percent, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(head), "%")), 64)
	if err != nil || math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 || percent > 100 {
		return FallbackRisk, false
	}

	return Risk{
		Percent:  percent,
		Category: CategoryFor(percent),
		Label:    strings.TrimSpace(tail),
	}, true
}

// LabelAgrees reports whether the provider's label names the same category as
// the percent band.
func (r Risk) LabelAgrees() bool {
	c, ok := LookupCategory(r.Label)
	return ok && c == r.Category
}
