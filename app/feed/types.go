package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time // zero when the feed carries no date
	Authors     []string  // "email (name)" or "name"
	Categories  []string

	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

// Configuration types

type Kind string

const (
	KindRSS         Kind = "rss"
	KindGoogleAlert Kind = "google_alert"
)

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Kind     Kind           `yaml:"kind"`
	Priority string         `yaml:"priority"`
	Category string         `yaml:"category"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled  bool `yaml:"enabled"`
	MaxItems int  `yaml:"max_items"`
	Timeout  int  `yaml:"timeout"` // seconds
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Result reports the outcome of fetching a single feed.
type Result struct {
	Feed     string
	Total    int
	Kept     int
	Filtered int
	Err      error
}
