package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
)

type RebuildProfileTask struct {
	Task
	profiles *personalization.ProfileCache
	source   review.RecordSource
}

func NewRebuildProfileTask(profiles *personalization.ProfileCache, source review.RecordSource) *RebuildProfileTask {
	return &RebuildProfileTask{
		Task:     NewTask(TaskTypeRebuildProfile, "profile"),
		profiles: profiles,
		source:   source,
	}
}

// Execute rebuilds the cached profile. On failure the previous profile
// stays active.
func (t *RebuildProfileTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	profile, err := t.profiles.Refresh(ctx, t.source)
	if err != nil {
		return fmt.Errorf("failed to rebuild profile: %w", err)
	}

	slog.Info("Task completed",
		"type", "RebuildProfile",
		"duration", t.GetDuration(),
		"records", profile.RecordCount,
		"selections", profile.TotalSelections,
		"preferred_sources", profile.PreferredSources)

	return nil
}
