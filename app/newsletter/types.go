package newsletter

import (
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/summarizer"
)

type Options struct {
	Name         string
	Tagline      string
	MaxArticles  int
	ThemeEnabled bool
	BaseURL      string
	Version      string
}

// Issue is everything the renderer needs for one weekly newsletter.
type Issue struct {
	Name        string
	Tagline     string
	Date        time.Time
	Theme       *summarizer.Theme
	Sections    []Section
	GeneratedAt time.Time
}

type Section struct {
	Category string
	Color    string
	Entries  []Entry
}

type Entry struct {
	Number  int
	Article *article.Article
}

// Summary prefers the AI summary over the feed summary.
func (e Entry) Summary() string {
	if e.Article.AISummary != "" {
		return e.Article.AISummary
	}
	return e.Article.Summary
}

func (i Issue) ArticleCount() int {
	count := 0
	for _, section := range i.Sections {
		count += len(section.Entries)
	}
	return count
}
