package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

var testNow = time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)

func newArticle(id, title, summary string, published time.Time, priority article.Priority) *article.Article {
	return &article.Article{
		ID:          id,
		Title:       title,
		Summary:     summary,
		PublishedAt: published,
		Priority:    priority,
	}
}

func policyTopics() []Topic {
	return []Topic{
		NewTopic("AI Policy", []string{"Governance", "regulation"}, article.PriorityHigh, ""),
		NewTopic("Research", []string{"benchmark", "paper", "model"}, article.PriorityMedium, "AI Research"),
	}
}

func TestScoreTopicMatch(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	a := newArticle("1", "New AI Governance Framework Announced", "regulation details...", testNow, article.PriorityMedium)

	eval := scorer.Evaluate(a, policyTopics(), testNow)

	if eval.Topic <= 0 {
		t.Fatalf("Expected positive topic score, got %f", eval.Topic)
	}
	if eval.BestTopic == nil || eval.BestTopic.Category != "AI Policy" {
		t.Fatalf("Expected category 'AI Policy', got %+v", eval.BestTopic)
	}
	if eval.TopicHits != 2 {
		t.Errorf("Expected 2 distinct hits, got %d", eval.TopicHits)
	}
	// 2 hits * high boost 1.5
	if eval.Topic != 3.0 {
		t.Errorf("Expected topic score 3.0, got %f", eval.Topic)
	}
}

func TestScoreCountsDistinctKeywordsOnce(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	topics := []Topic{NewTopic("Policy", []string{"regulation", "REGULATION", " regulation "}, article.PriorityMedium, "")}

	if len(topics[0].Keywords) != 1 {
		t.Fatalf("Expected keywords to be de-duplicated, got %v", topics[0].Keywords)
	}

	a := newArticle("1", "regulation regulation regulation", "", testNow, article.PriorityMedium)
	eval := scorer.Evaluate(a, topics, testNow)
	if eval.TopicHits != 1 {
		t.Errorf("Expected 1 hit, got %d", eval.TopicHits)
	}
}

func TestScoreEmptyTopics(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	a := newArticle("1", "Anything", "", testNow, article.PriorityMedium)

	score := scorer.Score(a, nil, testNow)
	// recency 1.0 + medium priority 1.0
	if score != 2.0 {
		t.Errorf("Expected recency+priority score 2.0, got %f", score)
	}

	empty := []Topic{NewTopic("Empty", nil, article.PriorityHigh, "")}
	if got := scorer.Score(a, empty, testNow); got != 2.0 {
		t.Errorf("Expected topic without keywords to contribute zero, got %f", got)
	}
}

func TestScoreNilArticle(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	if got := scorer.Score(nil, policyTopics(), testNow); got != 0 {
		t.Errorf("Expected 0 for nil article, got %f", got)
	}
	if scorer.BestTopic(nil, policyTopics()) != nil {
		t.Error("Expected no topic for nil article")
	}
}

func TestScoreInvalidPriorityTreatedAsMedium(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	urgent := newArticle("1", "Title", "", testNow, article.Priority("urgent"))
	medium := newArticle("2", "Title", "", testNow, article.PriorityMedium)

	if scorer.Score(urgent, nil, testNow) != scorer.Score(medium, nil, testNow) {
		t.Error("Expected invalid priority to score like medium")
	}
}

func TestRecencyDecay(t *testing.T) {
	config := DefaultConfig()
	config.Weights = Weights{Recency: 1.0}
	scorer := NewScorer(config)

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"fresh", 0, 1.0},
		{"future", -time.Hour, 1.0},
		{"half window", 84 * time.Hour, 0.6},
		{"window edge", 7 * 24 * time.Hour, 0.2},
		{"too old", 8 * 24 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArticle("1", "Title", "", testNow.Add(-tt.age), article.PriorityMedium)
			got := scorer.Score(a, nil, testNow)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected recency %f, got %f", tt.want, got)
			}
		})
	}

	missing := newArticle("1", "Title", "", time.Time{}, article.PriorityMedium)
	if got := scorer.Score(missing, nil, testNow); got != 1.0 {
		t.Errorf("Expected missing timestamp to be treated as now, got %f", got)
	}
}

func TestWeightsAreApplied(t *testing.T) {
	config := DefaultConfig()
	config.Weights = Weights{Topic: 2.0, Recency: 0.5, Priority: 0}
	scorer := NewScorer(config)

	a := newArticle("1", "governance", "", testNow, article.PriorityHigh)
	// topic 1 hit * 1.5 * 2.0 + recency 1.0 * 0.5
	if got := scorer.Score(a, policyTopics(), testNow); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Expected 3.5, got %f", got)
	}
}

func TestRegionalBoost(t *testing.T) {
	config := DefaultConfig()
	config.Regional = NewRegional([]string{"Canada", "canadian", "Toronto", "Ottawa", "canada"}, 1.5)
	scorer := NewScorer(config)

	if len(config.Regional.Keywords) != 4 {
		t.Fatalf("Expected folded, de-duplicated keywords, got %v", config.Regional.Keywords)
	}

	base := scorer.Score(newArticle("0", "Chip exports", "", testNow, article.PriorityMedium), nil, testNow)

	tests := []struct {
		name       string
		title      string
		multiplier float64
		hits       int
	}{
		{"no regional mention", "Chip exports", 1.0, 0},
		{"one hit", "CANADA chip exports", 1.5, 1},
		{"two hits", "Canada chip exports from Toronto", 3.0, 2},
		{"capped at three", "Canadian chip exports from Canada, Toronto and Ottawa", 4.5, 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			eval := scorer.Evaluate(newArticle("1", test.title, "", testNow, article.PriorityMedium), nil, testNow)

			if eval.RegionalHits != test.hits {
				t.Errorf("Expected %d regional hits, got %d", test.hits, eval.RegionalHits)
			}
			if eval.Regional != test.multiplier {
				t.Errorf("Expected multiplier %f, got %f", test.multiplier, eval.Regional)
			}
			if math.Abs(eval.Score-base*test.multiplier) > 1e-9 {
				t.Errorf("Expected score %f, got %f", base*test.multiplier, eval.Score)
			}
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	a := newArticle("1", "Benchmark paper on AI governance", "model regulation", testNow.Add(-30*time.Hour), article.PriorityLow)

	first := scorer.Score(a, policyTopics(), testNow)
	for i := 0; i < 10; i++ {
		if got := scorer.Score(a, policyTopics(), testNow); got != first {
			t.Fatalf("Expected deterministic score %f, got %f", first, got)
		}
	}
}

func TestBestTopicTieBreaksByDeclarationOrder(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	topics := []Topic{
		NewTopic("First", []string{"alpha"}, article.PriorityLow, ""),
		NewTopic("Second", []string{"beta"}, article.PriorityHigh, ""),
	}

	a := newArticle("1", "alpha and beta", "", testNow, article.PriorityMedium)
	best := scorer.BestTopic(a, topics)
	if best == nil || best.Name != "First" {
		t.Errorf("Expected first declared topic to win a tie, got %+v", best)
	}
}

func TestRankSortsStableAndDoesNotMutate(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	articles := []*article.Article{
		newArticle("a", "plain one", "", testNow, article.PriorityMedium),
		newArticle("b", "governance news", "", testNow, article.PriorityMedium),
		nil,
		newArticle("c", "plain two", "", testNow, article.PriorityMedium),
		newArticle("d", "old", "", testNow.Add(-30*24*time.Hour), article.PriorityMedium),
	}

	ranked := scorer.Rank(articles, policyTopics(), testNow)

	if len(ranked) != 4 {
		t.Fatalf("Expected nil article to be skipped, got %d results", len(ranked))
	}

	wantOrder := []string{"b", "a", "c", "d"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}

	for _, a := range articles {
		if a != nil && a.Score != 0 {
			t.Errorf("Input article %s was mutated", a.ID)
		}
	}

	again := scorer.Rank(articles, policyTopics(), testNow)
	for i := range ranked {
		if ranked[i].ID != again[i].ID || ranked[i].Score != again[i].Score {
			t.Errorf("Rank is not deterministic at position %d", i)
		}
	}
}

func TestFold(t *testing.T) {
	if Fold("GOVERNANCE") != "governance" {
		t.Errorf("Expected folded lowercase, got %s", Fold("GOVERNANCE"))
	}
	if Fold("Straße") != Fold("STRASSE") {
		t.Error("Expected full case folding")
	}
}
