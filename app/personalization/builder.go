package personalization

import (
	"cmp"
	"log/slog"
	"math"
	"sort"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/review"
)

type Config struct {
	// MinSamples is the number of selections a source or category needs
	// before its multiplier may move away from 1.0.
	MinSamples          int     `yaml:"min_samples"`
	ThresholdPercentile float64 `yaml:"threshold_percentile"`
	PreferredLimit      int     `yaml:"preferred_limit"`
}

func DefaultConfig() Config {
	return Config{
		MinSamples:          2,
		ThresholdPercentile: 25,
		PreferredLimit:      5,
	}
}

type Builder struct {
	config Config
}

func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// tally counts appearances and selections per key in discovery order.
type tally struct {
	order    []string
	total    map[string]int
	selected map[string]int
}

func newTally() *tally {
	return &tally{
		total:    make(map[string]int),
		selected: make(map[string]int),
	}
}

func (t *tally) add(key string, selected bool) {
	if _, ok := t.total[key]; !ok {
		t.order = append(t.order, key)
	}
	t.total[key]++
	if selected {
		t.selected[key]++
	}
}

// Build derives a preference profile from the full review history. With no
// selections at all the neutral profile is returned.
func (b *Builder) Build(records []review.Record) *Profile {
	sources := newTally()
	categories := newTally()
	keywords := make(map[string]int)
	var scores []float64

	totalAvailable := 0
	totalSelections := 0

	for _, record := range records {
		for _, a := range record.Articles {
			if a == nil {
				continue
			}

			totalAvailable++
			sources.add(cmp.Or(a.Source, article.UnknownSource), a.Selected)
			categories.add(cmp.Or(a.Category, article.Uncategorized), a.Selected)

			if !a.Selected {
				continue
			}

			totalSelections++
			for _, kw := range articleKeywords(a) {
				keywords[kw]++
			}
			if !math.IsNaN(a.Score) && !math.IsInf(a.Score, 0) {
				scores = append(scores, a.Score)
			}
		}
	}

	profile := NeutralProfile()
	profile.RecordCount = len(records)
	profile.TotalAvailable = totalAvailable

	if totalSelections == 0 {
		slog.Debug("No historical selections, using neutral profile", "records", len(records), "articles", totalAvailable)
		return profile
	}

	globalRate := float64(totalSelections) / float64(totalAvailable)

	profile.TotalSelections = totalSelections
	profile.SelectionRate = globalRate
	profile.KeywordPreferences = keywords
	profile.SourcePreferences = b.multipliers(sources, globalRate)
	profile.CategoryPreferences = b.multipliers(categories, globalRate)
	profile.PreferredSources = b.preferred(sources.order, profile.SourcePreferences)
	profile.PreferredCategories = b.preferred(categories.order, profile.CategoryPreferences)

	if len(scores) > 0 {
		sort.Float64s(scores)
		profile.ScoreRange = ScoreRange{Min: scores[0], Max: scores[len(scores)-1]}
		profile.ScoreThreshold = percentile(scores, b.config.ThresholdPercentile)
	}

	slog.Debug("Preference profile built",
		"records", len(records),
		"selections", totalSelections,
		"available", totalAvailable,
		"preferred_sources", profile.PreferredSources,
		"preferred_categories", profile.PreferredCategories)

	return profile
}

// multipliers maps each key to 1 + (1 - 1/lift), where lift is the key's
// selection rate relative to the global one. Keys below MinSamples
// selections or with lift <= 1 stay at 1.0.
func (b *Builder) multipliers(t *tally, globalRate float64) map[string]float64 {
	result := make(map[string]float64, len(t.order))

	for _, key := range t.order {
		result[key] = MinMultiplier

		selected := t.selected[key]
		if selected < b.config.MinSamples || selected == 0 || globalRate <= 0 {
			continue
		}

		rate := float64(selected) / float64(t.total[key])
		lift := rate / globalRate
		if lift <= 1 {
			continue
		}

		result[key] = clampMultiplier(MinMultiplier + (1 - 1/lift))
	}

	return result
}

func (b *Builder) preferred(order []string, multipliers map[string]float64) []string {
	candidates := make([]string, 0, len(order))
	for _, key := range order {
		if multipliers[key] > MinMultiplier {
			candidates = append(candidates, key)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return multipliers[candidates[i]] > multipliers[candidates[j]]
	})

	if b.config.PreferredLimit > 0 && len(candidates) > b.config.PreferredLimit {
		candidates = candidates[:b.config.PreferredLimit]
	}
	return candidates
}

// percentile interpolates linearly between the closest ranks of a sorted
// slice. p is clamped to [0, 100].
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(100, p))

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}
