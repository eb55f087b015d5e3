package scoring

import (
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

// Topic is a named interest area. Keywords are folded once at construction.
type Topic struct {
	Name     string
	Keywords []string
	Priority article.Priority
	Category string
}

type Weights struct {
	Topic    float64 `yaml:"topic"`
	Recency  float64 `yaml:"recency"`
	Priority float64 `yaml:"priority"`
}

type PriorityBoosts struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// MaxRegionalHits caps how many regional keyword hits multiply the boost.
const MaxRegionalHits = 3

// Regional multiplies the score of articles mentioning the audience's
// region. Keywords are folded once by NewRegional.
type Regional struct {
	Keywords []string
	Boost    float64
}

type Config struct {
	Weights        Weights
	PriorityBoosts PriorityBoosts
	MaxAge         time.Duration
	RecencyFloor   float64 // recency score reached at MaxAge
	Regional       Regional
}

func DefaultConfig() Config {
	return Config{
		Weights:        Weights{Topic: 1.0, Recency: 1.0, Priority: 1.0},
		PriorityBoosts: PriorityBoosts{High: 1.5, Medium: 1.0, Low: 0.5},
		MaxAge:         7 * 24 * time.Hour,
		RecencyFloor:   0.2,
	}
}

// Evaluation is the score breakdown for a single article.
type Evaluation struct {
	Score     float64
	Topic     float64
	Recency   float64
	Priority  float64
	BestTopic *Topic
	TopicHits int

	Regional     float64 // multiplier, 1.0 without regional hits
	RegionalHits int
}
