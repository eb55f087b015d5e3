package personalization

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/scoring"
)

const minKeywordLength = 5

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "being": true, "between": true,
	"could": true, "every": true, "first": true, "other": true, "their": true,
	"there": true, "these": true, "those": true, "through": true, "under": true,
	"where": true, "which": true, "while": true, "would": true, "should": true,
	"since": true, "still": true, "today": true, "during": true, "years": true,
}

// Keywords splits text into folded tokens of at least five letters,
// skipping stopwords. Duplicates are kept.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(scoring.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minKeywordLength || stopwords[f] {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

func articleKeywords(a *article.Article) []string {
	return Keywords(a.Title + " " + a.Summary)
}
