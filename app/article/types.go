package article

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	UntitledPlaceholder = "Untitled"
	Uncategorized       = "uncategorized"
	UnknownSource       = "unknown"
)

// ParsePriority maps a free-form priority to the enum. Unknown values
// return medium and false.
func ParsePriority(value string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return PriorityMedium, false
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Raw is an unvalidated article record as handed over by a feed parser or
// decoded from storage.
type Raw struct {
	ID        string
	Title     string
	URL       string
	Source    string
	Summary   any
	Published any // time.Time, *time.Time, string or nil
	Category  string
	Priority  string
}

type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	Summary      string    `json:"summary"`
	PublishedAt  time.Time `json:"published_at"`
	Category     string    `json:"category"`
	Priority     Priority  `json:"priority"`
	Score        float64   `json:"score"`
	Selected     bool      `json:"selected"`
	AISummary    string    `json:"ai_summary,omitempty"`
	AICommentary string    `json:"ai_commentary,omitempty"`

	// TitleRepaired is set when the title was replaced by the placeholder.
	TitleRepaired bool `json:"title_repaired,omitempty"`
}

func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
