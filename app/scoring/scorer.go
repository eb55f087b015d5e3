package scoring

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

type Scorer struct {
	config Config
}

func NewScorer(config Config) *Scorer {
	return &Scorer{config: config}
}

func (s *Scorer) Config() Config {
	return s.config
}

// Score returns the composite relevance score of a single article.
func (s *Scorer) Score(a *article.Article, topics []Topic, now time.Time) float64 {
	return s.evaluateSafe(a, topics, now).Score
}

// Evaluate computes the score breakdown. The folded article text is built
// once and shared by every topic.
func (s *Scorer) Evaluate(a *article.Article, topics []Topic, now time.Time) Evaluation {
	if a == nil {
		return Evaluation{}
	}

	text := matchText(a)

	var eval Evaluation
	eval.Topic, eval.BestTopic, eval.TopicHits = s.topicScore(text, topics)
	eval.Recency = s.recencyScore(a.PublishedAt, now)
	eval.Priority = s.priorityBoost(a.Priority)
	eval.Regional, eval.RegionalHits = s.regionalMultiplier(text)

	w := s.config.Weights
	score := (w.Topic*eval.Topic + w.Recency*eval.Recency + w.Priority*eval.Priority) * eval.Regional
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	eval.Score = score

	return eval
}

// BestTopic returns the topic with the most distinct keyword hits. Ties go
// to the topic declared first. Returns nil when nothing matches.
func (s *Scorer) BestTopic(a *article.Article, topics []Topic) *Topic {
	if a == nil {
		return nil
	}
	_, best, _ := s.topicScore(matchText(a), topics)
	return best
}

type Ranked struct {
	Article    *article.Article
	Evaluation Evaluation
}

// RankEvaluated scores clones of the given articles and returns them sorted
// by score, highest first. Equal scores keep their input order.
func (s *Scorer) RankEvaluated(articles []*article.Article, topics []Topic, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(articles))

	for _, a := range articles {
		if a == nil {
			slog.Warn("Skipping nil article during ranking")
			continue
		}

		scored := a.Clone()
		eval := s.evaluateSafe(scored, topics, now)
		scored.Score = eval.Score
		ranked = append(ranked, Ranked{Article: scored, Evaluation: eval})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Evaluation.Score > ranked[j].Evaluation.Score
	})

	return ranked
}

func (s *Scorer) Rank(articles []*article.Article, topics []Topic, now time.Time) []*article.Article {
	ranked := s.RankEvaluated(articles, topics, now)

	result := make([]*article.Article, len(ranked))
	for i, r := range ranked {
		result[i] = r.Article
	}
	return result
}

func (s *Scorer) evaluateSafe(a *article.Article, topics []Topic, now time.Time) (eval Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if a != nil {
				id = a.ID
			}
			slog.Error("Article scoring failed, scoring as zero", "article_id", id, "error", r)
			eval = Evaluation{}
		}
	}()

	return s.Evaluate(a, topics, now)
}

func (s *Scorer) topicScore(text string, topics []Topic) (float64, *Topic, int) {
	bestScore := 0.0
	bestHits := 0
	var bestTopic *Topic

	for i := range topics {
		topic := &topics[i]
		if len(topic.Keywords) == 0 {
			continue
		}

		hits := countHits(text, topic.Keywords)
		if hits == 0 {
			continue
		}

		score := float64(hits) * s.priorityBoost(topic.Priority)
		if score > bestScore {
			bestScore = score
		}
		if hits > bestHits {
			bestHits = hits
			bestTopic = topic
		}
	}

	return bestScore, bestTopic, bestHits
}

// regionalMultiplier returns Boost times the number of distinct regional
// keyword hits, capped at MaxRegionalHits, or 1.0 when nothing matches.
func (s *Scorer) regionalMultiplier(text string) (float64, int) {
	regional := s.config.Regional
	if len(regional.Keywords) == 0 {
		return 1.0, 0
	}

	hits := countHits(text, regional.Keywords)
	if hits == 0 {
		return 1.0, 0
	}
	return regional.Boost * float64(min(hits, MaxRegionalHits)), hits
}

func (s *Scorer) recencyScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 1.0
	}

	age := now.Sub(published)
	if age <= 0 {
		return 1.0
	}

	maxAge := s.config.MaxAge
	if maxAge <= 0 || age > maxAge {
		return 0
	}

	floor := s.config.RecencyFloor
	ratio := float64(age) / float64(maxAge)
	return 1.0 - (1.0-floor)*ratio
}

func (s *Scorer) priorityBoost(p article.Priority) float64 {
	boosts := s.config.PriorityBoosts
	switch p {
	case article.PriorityHigh:
		return boosts.High
	case article.PriorityLow:
		return boosts.Low
	default:
		return boosts.Medium
	}
}
