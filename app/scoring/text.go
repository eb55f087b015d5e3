package scoring

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/news-curator/app/article"
)

// Fold normalizes text for case-insensitive keyword matching.
func Fold(s string) string {
	// cases.Caser is stateful, so one per call
	return cases.Fold().String(norm.NFKC.String(s))
}

// NewRegional builds a Regional with folded, de-duplicated keywords.
func NewRegional(keywords []string, boost float64) Regional {
	return Regional{
		Keywords: foldKeywords(keywords),
		Boost:    boost,
	}
}

// NewTopic builds a Topic with folded, de-duplicated keywords in
// declaration order. Empty keywords are dropped.
func NewTopic(name string, keywords []string, priority article.Priority, category string) Topic {
	if category == "" {
		category = name
	}

	return Topic{
		Name:     name,
		Keywords: foldKeywords(keywords),
		Priority: priority,
		Category: category,
	}
}

func foldKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	folded := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		kw = strings.TrimSpace(Fold(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		folded = append(folded, kw)
	}
	return folded
}

func matchText(a *article.Article) string {
	return Fold(a.Title + " " + a.Summary)
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}
