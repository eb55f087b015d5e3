package personalization

import (
	"fmt"
	"math"
)

const (
	MinMultiplier = 1.0
	MaxMultiplier = 2.0
)

type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Profile is an immutable snapshot of learned preferences. A rebuild
// produces a new Profile; existing instances are never modified.
type Profile struct {
	SourcePreferences   map[string]float64 `json:"source_preferences"`
	CategoryPreferences map[string]float64 `json:"category_preferences"`
	KeywordPreferences  map[string]int     `json:"keyword_preferences"`
	ScoreThreshold      float64            `json:"score_threshold"`
	ScoreRange          ScoreRange         `json:"score_range"`
	TotalSelections     int                `json:"total_selections"`
	TotalAvailable      int                `json:"total_available"`
	SelectionRate       float64            `json:"selection_rate"`
	PreferredSources    []string           `json:"preferred_sources"`
	PreferredCategories []string           `json:"preferred_categories"`
	RecordCount         int                `json:"record_count"`
}

func NeutralProfile() *Profile {
	return &Profile{
		SourcePreferences:   map[string]float64{},
		CategoryPreferences: map[string]float64{},
		KeywordPreferences:  map[string]int{},
		PreferredSources:    []string{},
		PreferredCategories: []string{},
	}
}

func (p *Profile) IsNeutral() bool {
	return p == nil || p.TotalSelections == 0
}

func (p *Profile) SourceMultiplier(source string) float64 {
	if p == nil {
		return MinMultiplier
	}
	return lookupMultiplier(p.SourcePreferences, source)
}

func (p *Profile) CategoryMultiplier(category string) float64 {
	if p == nil {
		return MinMultiplier
	}
	return lookupMultiplier(p.CategoryPreferences, category)
}

// Summary renders a short human-readable description of the profile.
func (p *Profile) Summary() string {
	if p.IsNeutral() {
		return "No selection history yet"
	}
	return fmt.Sprintf("%d/%d selections (%.1f%%), threshold %.2f, range %.2f-%.2f",
		p.TotalSelections, p.TotalAvailable, p.SelectionRate*100,
		p.ScoreThreshold, p.ScoreRange.Min, p.ScoreRange.Max)
}

func lookupMultiplier(prefs map[string]float64, key string) float64 {
	m, ok := prefs[key]
	if !ok {
		return MinMultiplier
	}
	return clampMultiplier(m)
}

func clampMultiplier(m float64) float64 {
	if math.IsNaN(m) || m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}
