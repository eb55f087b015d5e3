package feed

import (
	"fmt"
	"strings"
)

var validFilterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"authors":     true,
	"link":        true,
	"categories":  true,
}

// Filterer marks items excluded by per-feed rules or by the global exclude
// patterns, which are matched against title and description.
type Filterer struct {
	excludePatterns []string
}

func NewFilterer(excludePatterns []string) *Filterer {
	patterns := make([]string, 0, len(excludePatterns))
	for _, p := range excludePatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Filterer{excludePatterns: patterns}
}

func (f *Filterer) Run(items []Item, feedConfig *Config) []Item {
	if len(feedConfig.Filters) == 0 && len(f.excludePatterns) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		isFiltered, filterReason := f.applyGlobal(item)
		if !isFiltered {
			isFiltered, filterReason = f.applyFilters(item, feedConfig.Filters)
		}
		item.IsFiltered = isFiltered
		item.FilterReason = filterReason
		filtered = append(filtered, item)
	}

	return filtered
}

func (f *Filterer) applyGlobal(item Item) (bool, string) {
	for _, pattern := range f.excludePatterns {
		if f.matchesFilter(item.Title, pattern) || f.matchesFilter(item.Description, pattern) {
			return true, fmt.Sprintf("Excluded by pattern: contains '%s'", pattern)
		}
	}
	return false, ""
}

func (f *Filterer) applyFilters(item Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
