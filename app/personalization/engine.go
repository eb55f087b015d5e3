package personalization

import (
	"math"
	"sort"

	"github.com/lysyi3m/news-curator/app/article"
)

const (
	DefaultAutoSuggestThreshold = 75.0
	NeutralLikelihood           = 50.0
	MaxLikelihood               = 100.0
)

// LikelihoodWeights controls how many of the 100 likelihood points each
// signal can contribute.
type LikelihoodWeights struct {
	Score         float64 `yaml:"score"`
	Source        float64 `yaml:"source"`
	Category      float64 `yaml:"category"`
	KeywordPoints float64 `yaml:"keyword_points"`
	KeywordCap    float64 `yaml:"keyword_cap"`
}

func DefaultLikelihoodWeights() LikelihoodWeights {
	return LikelihoodWeights{
		Score:         40,
		Source:        25,
		Category:      20,
		KeywordPoints: 5,
		KeywordCap:    15,
	}
}

type Prediction struct {
	Article      *article.Article `json:"article"`
	Likelihood   float64          `json:"likelihood"`
	BoostedScore float64          `json:"boosted_score"`
}

type Engine struct {
	weights LikelihoodWeights
}

func NewEngine(weights LikelihoodWeights) *Engine {
	return &Engine{weights: weights}
}

// PredictLikelihood estimates how likely the article is to be selected,
// on a 0-100 scale. A nil article yields 0 and a profile without history
// yields NeutralLikelihood.
func (e *Engine) PredictLikelihood(a *article.Article, p *Profile) float64 {
	if a == nil {
		return 0
	}
	if p.IsNeutral() {
		return NeutralLikelihood
	}

	likelihood := e.scoreTerm(a.Score, p) +
		(p.SourceMultiplier(a.Source)-MinMultiplier)*e.weights.Source +
		(p.CategoryMultiplier(a.Category)-MinMultiplier)*e.weights.Category +
		e.keywordTerm(a, p)

	return clampLikelihood(likelihood)
}

// scoreTerm awards half of the score weight for clearing the profile
// threshold and the rest in proportion to the position within
// [threshold, max].
func (e *Engine) scoreTerm(score float64, p *Profile) float64 {
	if math.IsNaN(score) || score < p.ScoreThreshold {
		return 0
	}

	span := p.ScoreRange.Max - p.ScoreThreshold
	if span <= 0 {
		return e.weights.Score
	}

	position := math.Min(1, (score-p.ScoreThreshold)/span)
	return e.weights.Score * (0.5 + 0.5*position)
}

func (e *Engine) keywordTerm(a *article.Article, p *Profile) float64 {
	if len(p.KeywordPreferences) == 0 {
		return 0
	}

	seen := make(map[string]bool)
	hits := 0
	for _, kw := range articleKeywords(a) {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		if p.KeywordPreferences[kw] > 0 {
			hits++
		}
	}

	return math.Min(float64(hits)*e.weights.KeywordPoints, e.weights.KeywordCap)
}

// BoostScore multiplies the article's score by its source and category
// multipliers. The article is not modified.
func (e *Engine) BoostScore(a *article.Article, p *Profile) float64 {
	if a == nil || math.IsNaN(a.Score) || a.Score <= 0 {
		return 0
	}
	if p.IsNeutral() {
		return a.Score
	}
	return a.Score * p.SourceMultiplier(a.Source) * p.CategoryMultiplier(a.Category)
}

// Recommend returns up to count predictions ordered by likelihood, keeping
// input order for ties. Nil articles are skipped.
func (e *Engine) Recommend(articles []*article.Article, p *Profile, count int) []Prediction {
	if count <= 0 {
		return []Prediction{}
	}

	predictions := e.predictAll(articles, p)
	if count < len(predictions) {
		predictions = predictions[:count]
	}
	return predictions
}

// AutoSuggest returns the predictions with likelihood at or above the
// threshold, most likely first.
func (e *Engine) AutoSuggest(articles []*article.Article, p *Profile, threshold float64) []Prediction {
	suggestions := make([]Prediction, 0)
	for _, prediction := range e.predictAll(articles, p) {
		if prediction.Likelihood >= threshold {
			suggestions = append(suggestions, prediction)
		}
	}
	return suggestions
}

func (e *Engine) predictAll(articles []*article.Article, p *Profile) []Prediction {
	predictions := make([]Prediction, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		predictions = append(predictions, Prediction{
			Article:      a,
			Likelihood:   e.PredictLikelihood(a, p),
			BoostedScore: e.BoostScore(a, p),
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Likelihood > predictions[j].Likelihood
	})
	return predictions
}

func clampLikelihood(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > MaxLikelihood:
		return MaxLikelihood
	default:
		return v
	}
}
