package config

import (
	"cmp"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/scoring"
)

func (t *TopicList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []TopicConfig
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil

	case yaml.MappingNode:
		list := make([]TopicConfig, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			name := value.Content[i].Value

			var legacy struct {
				Keywords      []string `yaml:"keywords"`
				Category      string   `yaml:"category"`
				Priority      string   `yaml:"priority"`
				PriorityBoost float64  `yaml:"priority_boost"`
			}
			if err := value.Content[i+1].Decode(&legacy); err != nil {
				return fmt.Errorf("topic %q: %w", name, err)
			}

			list = append(list, TopicConfig{
				Name:     name,
				Keywords: legacy.Keywords,
				Category: cmp.Or(legacy.Category, name),
				Priority: cmp.Or(legacy.Priority, string(priorityFromBoost(legacy.PriorityBoost))),
			})
		}
		*t = list
		return nil

	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
	}

	return fmt.Errorf("topics must be a list or a mapping, line %d", value.Line)
}

// priorityFromBoost maps a legacy numeric priority_boost onto the enum.
func priorityFromBoost(boost float64) article.Priority {
	switch {
	case boost >= 1.5:
		return article.PriorityHigh
	case boost > 0 && boost < 1:
		return article.PriorityLow
	default:
		return article.PriorityMedium
	}
}

func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

func (c *Config) ScoringConfig() scoring.Config {
	return scoring.Config{
		Weights:        c.Scoring.Weights,
		PriorityBoosts: c.Scoring.PriorityBoosts,
		MaxAge:         c.MaxAge(),
		RecencyFloor:   c.Scoring.RecencyFloor,
		Regional:       scoring.NewRegional(c.Scoring.RegionalKeywords, c.Scoring.RegionalBoost),
	}
}

// ScoringTopics converts the configured topics, folding keywords once.
func (c *Config) ScoringTopics() []scoring.Topic {
	topics := make([]scoring.Topic, 0, len(c.Topics))
	for _, t := range c.Topics {
		priority, _ := article.ParsePriority(t.Priority)
		topics = append(topics, scoring.NewTopic(t.Name, t.Keywords, priority, t.Category))
	}
	return topics
}

func (c *Config) BuilderConfig() personalization.Config {
	return personalization.Config{
		MinSamples:          c.Personalization.MinSamples,
		ThresholdPercentile: c.Personalization.ThresholdPercentile,
		PreferredLimit:      c.Personalization.PreferredLimit,
	}
}

func (g GeminiConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSecs) * time.Second
}
