package article

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// New builds an Article from a raw record. It never fails: defective fields
// are repaired and reported with a warning.
func New(raw Raw, now time.Time) *Article {
	a := &Article{
		Source:   strings.TrimSpace(raw.Source),
		Summary:  collapseSpace(coerceString(raw.Summary)),
		Category: strings.TrimSpace(raw.Category),
	}

	a.Title = collapseSpace(raw.Title)
	if a.Title == "" {
		slog.Warn("Article has empty title, using placeholder", "source", a.Source, "url", raw.URL)
		a.Title = UntitledPlaceholder
		a.TitleRepaired = true
	}

	a.URL = normalizeURL(raw.URL)
	if a.URL == "" {
		slog.Warn("Article has missing or invalid URL", "title", a.Title, "url", raw.URL)
	}

	priority, ok := ParsePriority(raw.Priority)
	if !ok && raw.Priority != "" {
		slog.Warn("Invalid article priority, falling back to medium", "title", a.Title, "priority", raw.Priority)
	}
	a.Priority = priority

	published, ok := parsePublished(raw.Published)
	if !ok {
		if raw.Published != nil {
			slog.Warn("Unparsable publish date, using current time", "title", a.Title, "published", raw.Published)
		}
		published = now
	}
	a.PublishedAt = published

	a.ID = cmp.Or(strings.TrimSpace(raw.ID), generateID(a.Title, a.URL))

	return a
}

func generateID(title, link string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, link)))
	return hex.EncodeToString(hash[:])[:16]
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	return u.String()
}

func parsePublished(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
