package review

import (
	"context"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

const DateLayout = "2006-01-02"

// Record is the outcome of one curation cycle: every candidate article
// presented on Date plus the selection flags set by the reviewer.
type Record struct {
	Date      string             `json:"date"`
	CreatedAt time.Time          `json:"created_at"`
	Articles  []*article.Article `json:"articles"`
}

// RecordSource gives read access to every stored review record.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]Record, error)
}

type Summary struct {
	Date          string   `json:"date"`
	TotalArticles int      `json:"total_articles"`
	Selected      int      `json:"selected"`
	Categories    []string `json:"categories"`
}
