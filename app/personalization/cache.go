package personalization

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-curator/app/review"
)

// ProfileCache holds the current profile. Readers always see a complete
// profile; a rebuild replaces the whole instance.
type ProfileCache struct {
	mu      sync.RWMutex
	builder *Builder
	profile *Profile
	builtAt time.Time
}

func NewProfileCache(builder *Builder) *ProfileCache {
	return &ProfileCache{
		builder: builder,
		profile: NeutralProfile(),
	}
}

func (c *ProfileCache) Get() *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *ProfileCache) BuiltAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builtAt
}

func (c *ProfileCache) Set(p *Profile) {
	if p == nil {
		p = NeutralProfile()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
	c.builtAt = time.Now()
}

// Refresh rebuilds the profile from the record source. On failure the
// previous profile stays in place and the error is returned.
func (c *ProfileCache) Refresh(ctx context.Context, src review.RecordSource) (*Profile, error) {
	records, err := src.ListRecords(ctx)
	if err != nil {
		return c.Get(), fmt.Errorf("failed to load review history: %w", err)
	}

	profile := c.builder.Build(records)
	c.Set(profile)

	slog.Info("Preference profile refreshed",
		"records", profile.RecordCount,
		"selections", profile.TotalSelections,
		"neutral", profile.IsNeutral())

	return profile, nil
}
