package config

import (
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/scoring"
)

// Config is the validated curator configuration.
type Config struct {
	Newsletter      NewsletterConfig      `yaml:"newsletter"`
	GoogleAlerts    []SourceConfig        `yaml:"google_alerts"`
	RSSFeeds        []SourceConfig        `yaml:"rss_feeds"`
	Topics          TopicList             `yaml:"topics"`
	Scoring         ScoringConfig         `yaml:"scoring"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	Gemini          GeminiConfig          `yaml:"gemini"`
	ThemeOfWeek     ThemeConfig           `yaml:"theme_of_week"`
	ExcludePatterns []string              `yaml:"exclude_patterns"`
	MaxAgeDays      int                   `yaml:"max_age_days"`
}

type NewsletterConfig struct {
	Name        string `yaml:"name"`
	Tagline     string `yaml:"tagline"`
	MaxArticles int    `yaml:"max_articles"`
	ReviewSize  int    `yaml:"review_size"` // articles kept per weekly review
}

// SourceConfig is a feed declared inline in the curator config.
type SourceConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Priority string `yaml:"priority"`
	Category string `yaml:"category"`
}

type TopicConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Priority string   `yaml:"priority"`
	Category string   `yaml:"category"`
}

// TopicList accepts both the list form and the legacy mapping form
// (name -> {keywords, category, priority_boost}).
type TopicList []TopicConfig

type ScoringConfig struct {
	Weights        scoring.Weights        `yaml:"weights"`
	PriorityBoosts scoring.PriorityBoosts `yaml:"priority_boosts"`
	RecencyFloor   float64                `yaml:"recency_floor"`

	RegionalKeywords []string `yaml:"regional_keywords"`
	RegionalBoost    float64  `yaml:"regional_boost"`
}

type PersonalizationConfig struct {
	Enabled              bool                              `yaml:"enabled"`
	MinSamples           int                               `yaml:"min_samples"`
	ThresholdPercentile  float64                           `yaml:"threshold_percentile"`
	PreferredLimit       int                               `yaml:"preferred_limit"`
	AutoSuggestThreshold float64                           `yaml:"auto_suggest_threshold"`
	Likelihood           personalization.LikelihoodWeights `yaml:"likelihood"`
}

type GeminiConfig struct {
	Model              string `yaml:"model"`
	IncludeCommentary  bool   `yaml:"include_commentary"`
	MaxSummaryLength   int    `yaml:"max_summary_length"`
	Concurrency        int    `yaml:"concurrency"`
	RequestTimeoutSecs int    `yaml:"request_timeout"`
}

type ThemeConfig struct {
	Enabled bool `yaml:"enabled"`
	Length  int  `yaml:"length"`
}
