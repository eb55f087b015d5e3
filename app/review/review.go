package review

import (
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

func NewRecord(date string, articles []*article.Article, createdAt time.Time) Record {
	return Record{
		Date:      date,
		CreatedAt: createdAt,
		Articles:  articles,
	}
}

func (r Record) Selected() []*article.Article {
	selected := make([]*article.Article, 0)
	for _, a := range r.Articles {
		if a != nil && a.Selected {
			selected = append(selected, a)
		}
	}
	return selected
}

// Categories returns category names in first-seen order.
func (r Record) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, a := range r.Articles {
		if a == nil || seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		categories = append(categories, a.Category)
	}
	return categories
}

func (r Record) Summary() Summary {
	return Summary{
		Date:          r.Date,
		TotalArticles: len(r.Articles),
		Selected:      len(r.Selected()),
		Categories:    r.Categories(),
	}
}

// ApplySelections clears every selection flag and then marks the articles
// whose IDs are listed. Unknown IDs are ignored. Returns the number of
// selected articles.
func (r Record) ApplySelections(ids []string) int {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	count := 0
	for _, a := range r.Articles {
		if a == nil {
			continue
		}
		a.Selected = wanted[a.ID]
		if a.Selected {
			count++
		}
	}
	return count
}
