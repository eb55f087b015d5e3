package curation

import (
	"cmp"
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/scoring"
)

type Options struct {
	Personalize bool
	// TopN caps the number of articles kept after ranking. Zero keeps all.
	TopN int
}

type Group struct {
	Category string             `json:"category"`
	Articles []*article.Article `json:"articles"`
}

// Selection is the ranked, categorized result of one curation run. It owns
// its articles; the caller's input is never modified.
type Selection struct {
	Articles     []*article.Article `json:"articles"`
	Groups       []Group            `json:"groups"`
	Personalized bool               `json:"personalized"`
}

// Top returns the n highest scored articles across all categories.
func (s *Selection) Top(n int) []*article.Article {
	if n <= 0 {
		return []*article.Article{}
	}
	if n > len(s.Articles) {
		n = len(s.Articles)
	}
	return s.Articles[:n]
}

func (s *Selection) Record(date string, createdAt time.Time) review.Record {
	return review.NewRecord(date, s.Articles, createdAt)
}

type Curator struct {
	scorer  *scoring.Scorer
	engine  *personalization.Engine
	options Options
}

func NewCurator(scorer *scoring.Scorer, engine *personalization.Engine, options Options) *Curator {
	return &Curator{
		scorer:  scorer,
		engine:  engine,
		options: options,
	}
}

// FetchAndScore scores, optionally boosts, categorizes and groups the
// given articles.
func (c *Curator) FetchAndScore(raw []*article.Article, topics []scoring.Topic, profile *personalization.Profile, now time.Time) *Selection {
	ranked := c.scorer.RankEvaluated(raw, topics, now)
	personalize := c.options.Personalize && c.engine != nil && !profile.IsNeutral()

	articles := make([]*article.Article, 0, len(ranked))
	for _, r := range ranked {
		a := r.Article
		// Profiles are keyed by assigned categories, so categorize first.
		a.Category = categorize(a, r.Evaluation.BestTopic)
		if personalize {
			a.Score = c.engine.BoostScore(a, profile)
		}
		articles = append(articles, a)
	}

	if personalize {
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].Score > articles[j].Score
		})
	}

	if c.options.TopN > 0 && len(articles) > c.options.TopN {
		articles = articles[:c.options.TopN]
	}

	selection := &Selection{
		Articles:     articles,
		Groups:       group(articles, topics),
		Personalized: personalize,
	}

	slog.Debug("Curation completed",
		"input", len(raw),
		"kept", len(articles),
		"groups", len(selection.Groups),
		"personalized", personalize)

	return selection
}

func categorize(a *article.Article, best *scoring.Topic) string {
	if best != nil {
		return cmp.Or(best.Category, best.Name)
	}
	return cmp.Or(a.Category, article.Uncategorized)
}

// group buckets articles by category. Topic categories come first in
// declaration order, then other categories in order of first appearance,
// then uncategorized. Articles keep their ranking order within a group.
func group(articles []*article.Article, topics []scoring.Topic) []Group {
	buckets := make(map[string][]*article.Article)
	var discovered []string

	for _, a := range articles {
		if _, ok := buckets[a.Category]; !ok {
			discovered = append(discovered, a.Category)
		}
		buckets[a.Category] = append(buckets[a.Category], a)
	}

	var order []string
	seen := make(map[string]bool)
	add := func(category string) {
		if seen[category] || category == article.Uncategorized {
			return
		}
		seen[category] = true
		if _, ok := buckets[category]; ok {
			order = append(order, category)
		}
	}

	for _, topic := range topics {
		add(cmp.Or(topic.Category, topic.Name))
	}
	for _, category := range discovered {
		add(category)
	}
	if _, ok := buckets[article.Uncategorized]; ok {
		order = append(order, article.Uncategorized)
	}

	groups := make([]Group, 0, len(order))
	for _, category := range order {
		groups = append(groups, Group{Category: category, Articles: buckets[category]})
	}
	return groups
}
