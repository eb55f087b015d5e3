package config

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/scoring"
)

// Loader reads and validates the curator configuration file
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", l.path, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	slog.Debug("Curator configuration loaded",
		"path", l.path,
		"topics", len(config.Topics),
		"inline_feeds", len(config.GoogleAlerts)+len(config.RSSFeeds),
		"personalization", config.Personalization.Enabled)

	return config, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config is empty")
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.normalize()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func Default() *Config {
	scoringDefaults := scoring.DefaultConfig()
	personalizationDefaults := personalization.DefaultConfig()

	return &Config{
		Newsletter: NewsletterConfig{
			Name:        "AI This Week",
			Tagline:     "Key AI Developments You Should Know",
			MaxArticles: 8,
			ReviewSize:  50,
		},
		Scoring: ScoringConfig{
			Weights:        scoringDefaults.Weights,
			PriorityBoosts: scoringDefaults.PriorityBoosts,
			RecencyFloor:   scoringDefaults.RecencyFloor,
			RegionalBoost:  1.5,
		},
		Personalization: PersonalizationConfig{
			Enabled:              true,
			MinSamples:           personalizationDefaults.MinSamples,
			ThresholdPercentile:  personalizationDefaults.ThresholdPercentile,
			PreferredLimit:       personalizationDefaults.PreferredLimit,
			AutoSuggestThreshold: personalization.DefaultAutoSuggestThreshold,
			Likelihood:           personalization.DefaultLikelihoodWeights(),
		},
		Gemini: GeminiConfig{
			Model:              "gemini-1.5-flash",
			IncludeCommentary:  true,
			MaxSummaryLength:   150,
			Concurrency:        4,
			RequestTimeoutSecs: 60,
		},
		ThemeOfWeek: ThemeConfig{
			Enabled: true,
			Length:  150,
		},
		MaxAgeDays: 7,
	}
}

func (c *Config) normalize() {
	for i := range c.Topics {
		topic := &c.Topics[i]
		topic.Name = strings.TrimSpace(topic.Name)
		topic.Priority = cmp.Or(strings.ToLower(strings.TrimSpace(topic.Priority)), string(article.PriorityMedium))
		topic.Category = cmp.Or(strings.TrimSpace(topic.Category), topic.Name)
	}

	for _, sources := range [][]SourceConfig{c.GoogleAlerts, c.RSSFeeds} {
		for i := range sources {
			sources[i].Priority = cmp.Or(strings.ToLower(strings.TrimSpace(sources[i].Priority)), string(article.PriorityMedium))
		}
	}
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Newsletter.MaxArticles < 1 {
		result = multierror.Append(result, fmt.Errorf("newsletter.max_articles must be at least 1"))
	}
	if c.Newsletter.ReviewSize < 0 {
		result = multierror.Append(result, fmt.Errorf("newsletter.review_size must be non-negative"))
	}
	if c.MaxAgeDays < 1 {
		result = multierror.Append(result, fmt.Errorf("max_age_days must be at least 1"))
	}

	result = multierror.Append(result, validateSources("google_alerts", c.GoogleAlerts)...)
	result = multierror.Append(result, validateSources("rss_feeds", c.RSSFeeds)...)

	for i, topic := range c.Topics {
		if topic.Name == "" {
			result = multierror.Append(result, fmt.Errorf("topics[%d]: name is required", i))
		}
		if !hasKeyword(topic.Keywords) {
			result = multierror.Append(result, fmt.Errorf("topics[%d]: at least one keyword is required", i))
		}
		if _, ok := article.ParsePriority(topic.Priority); !ok {
			result = multierror.Append(result, fmt.Errorf("topics[%d]: priority must be 'low', 'medium', or 'high', got %q", i, topic.Priority))
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"scoring.weights.topic", c.Scoring.Weights.Topic},
		{"scoring.weights.recency", c.Scoring.Weights.Recency},
		{"scoring.weights.priority", c.Scoring.Weights.Priority},
		{"scoring.priority_boosts.high", c.Scoring.PriorityBoosts.High},
		{"scoring.priority_boosts.medium", c.Scoring.PriorityBoosts.Medium},
		{"scoring.priority_boosts.low", c.Scoring.PriorityBoosts.Low},
		{"scoring.regional_boost", c.Scoring.RegionalBoost},
		{"personalization.likelihood.score", c.Personalization.Likelihood.Score},
		{"personalization.likelihood.source", c.Personalization.Likelihood.Source},
		{"personalization.likelihood.category", c.Personalization.Likelihood.Category},
		{"personalization.likelihood.keyword_points", c.Personalization.Likelihood.KeywordPoints},
		{"personalization.likelihood.keyword_cap", c.Personalization.Likelihood.KeywordCap},
	}
	for _, field := range nonNegative {
		if field.value < 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be non-negative", field.name))
		}
	}

	if c.Scoring.RecencyFloor < 0 || c.Scoring.RecencyFloor > 1 {
		result = multierror.Append(result, fmt.Errorf("scoring.recency_floor must be between 0 and 1"))
	}

	p := c.Personalization
	if p.MinSamples < 1 {
		result = multierror.Append(result, fmt.Errorf("personalization.min_samples must be at least 1"))
	}
	if p.ThresholdPercentile < 0 || p.ThresholdPercentile > 100 {
		result = multierror.Append(result, fmt.Errorf("personalization.threshold_percentile must be between 0 and 100"))
	}
	if p.PreferredLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("personalization.preferred_limit must be non-negative"))
	}
	if p.AutoSuggestThreshold < 0 || p.AutoSuggestThreshold > 100 {
		result = multierror.Append(result, fmt.Errorf("personalization.auto_suggest_threshold must be between 0 and 100"))
	}

	if c.Gemini.Concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("gemini.concurrency must be at least 1"))
	}
	if c.Gemini.RequestTimeoutSecs < 1 {
		result = multierror.Append(result, fmt.Errorf("gemini.request_timeout must be at least 1"))
	}

	return result.ErrorOrNil()
}

func validateSources(section string, sources []SourceConfig) []error {
	var errs []error
	for i, source := range sources {
		if strings.TrimSpace(source.Name) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", section, i))
		}
		if strings.TrimSpace(source.URL) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: url is required", section, i))
		}
		if _, ok := article.ParsePriority(source.Priority); !ok {
			errs = append(errs, fmt.Errorf("%s[%d]: priority must be 'low', 'medium', or 'high', got %q", section, i, source.Priority))
		}
	}
	return errs
}

func hasKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
