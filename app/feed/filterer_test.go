package feed

import (
	"strings"
	"testing"
)

func testItems() []Item {
	return []Item{
		{Title: "OpenAI releases new model", Description: "Technical details", Link: "https://example.com/1", Authors: []string{"Jane Doe"}, Categories: []string{"Research"}},
		{Title: "Sponsored: buy our GPU", Description: "Advertisement", Link: "https://example.com/2"},
		{Title: "EU AI Act vote", Description: "Regulation news", Link: "https://example.com/3", Categories: []string{"Policy"}},
	}
}

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer(nil)
	items := testItems()

	result := filterer.Run(items, &Config{})

	if len(result) != len(items) {
		t.Fatalf("Expected %d items, got %d", len(items), len(result))
	}
	for _, item := range result {
		if item.IsFiltered {
			t.Errorf("Expected item '%s' not to be filtered", item.Title)
		}
	}
}

func TestFilterer_GlobalExcludePatterns(t *testing.T) {
	filterer := NewFilterer([]string{"sponsored", "  ", "ADVERTISEMENT"})

	result := filterer.Run(testItems(), &Config{})

	if result[0].IsFiltered || result[2].IsFiltered {
		t.Error("Expected regular items to pass")
	}
	if !result[1].IsFiltered {
		t.Fatal("Expected sponsored item to be filtered")
	}
	if !strings.Contains(result[1].FilterReason, "sponsored") {
		t.Errorf("Expected reason to mention pattern, got '%s'", result[1].FilterReason)
	}
}

func TestFilterer_FeedIncludeAndExclude(t *testing.T) {
	filterer := NewFilterer(nil)
	feedConfig := &Config{
		Filters: []ConfigFilter{
			{Field: "title", Excludes: []string{"gpu"}},
			{Field: "categories", Includes: []string{"research", "policy"}},
		},
	}

	result := filterer.Run(testItems(), feedConfig)

	expected := []bool{false, true, false}
	for i, want := range expected {
		if result[i].IsFiltered != want {
			t.Errorf("Item %d: expected filtered=%v, got %v (%s)", i, want, result[i].IsFiltered, result[i].FilterReason)
		}
	}
}

func TestFilterer_IncludeWithoutMatch(t *testing.T) {
	filterer := NewFilterer(nil)
	feedConfig := &Config{Filters: []ConfigFilter{{Field: "authors", Includes: []string{"john"}}}}

	result := filterer.Run(testItems()[:1], feedConfig)

	if !result[0].IsFiltered {
		t.Error("Expected item without matching author to be filtered")
	}
	if !strings.Contains(result[0].FilterReason, "does not contain") {
		t.Errorf("Unexpected reason: %s", result[0].FilterReason)
	}
}

func TestFilterer_PreservesOriginalData(t *testing.T) {
	filterer := NewFilterer([]string{"sponsored"})
	items := testItems()

	filterer.Run(items, &Config{})

	if items[1].IsFiltered {
		t.Error("Expected input items not to be modified")
	}
}

func TestFilterer_GetFieldValue(t *testing.T) {
	filterer := NewFilterer(nil)
	item := Item{
		Title:       "Title",
		Description: "Description",
		Content:     "Content",
		Link:        "https://example.com",
		Authors:     []string{"A", "B"},
		Categories:  []string{"X", "Y"},
	}

	tests := map[string]string{
		"title":       "Title",
		"description": "Description",
		"content":     "Content",
		"link":        "https://example.com",
		"authors":     "A B",
		"categories":  "X Y",
		"unknown":     "",
	}

	for field, expected := range tests {
		if got := filterer.getFieldValue(item, field); got != expected {
			t.Errorf("Field %s: expected '%s', got '%s'", field, expected, got)
		}
	}
}
