package newsletter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultColor = "#6B7280"

// First matching keyword wins.
var categoryColors = []struct {
	keyword string
	color   string
}{
	{"policy", "#8B5CF6"},
	{"governance", "#8B5CF6"},
	{"research", "#6366F1"},
	{"business", "#10B981"},
	{"industry", "#10B981"},
	{"hardware", "#3B82F6"},
	{"education", "#F59E0B"},
	{"tools", "#EC4899"},
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("newsletter.html").
		Funcs(template.FuncMap{"formatDate": formatDate}).
		ParseFS(templateFS, "templates/newsletter.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse newsletter template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(issue Issue) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, issue); err != nil {
		return "", fmt.Errorf("failed to render newsletter: %w", err)
	}
	return buf.String(), nil
}

// Sections groups articles by category in order of first appearance and
// numbers them consecutively across sections.
func Sections(articles []*article.Article) []Section {
	var sections []Section
	index := make(map[string]int)

	for _, a := range articles {
		if a == nil {
			continue
		}

		category := a.Category
		if category == "" {
			category = article.Uncategorized
		}

		i, ok := index[category]
		if !ok {
			i = len(sections)
			index[category] = i
			sections = append(sections, Section{Category: category, Color: categoryColor(category)})
		}

		sections[i].Entries = append(sections[i].Entries, Entry{Article: a})
	}

	number := 0
	for i := range sections {
		for j := range sections[i].Entries {
			number++
			sections[i].Entries[j].Number = number
		}
	}

	return sections
}

func categoryColor(category string) string {
	lower := strings.ToLower(category)
	for _, c := range categoryColors {
		if strings.Contains(lower, c.keyword) {
			return c.color
		}
	}
	return defaultColor
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
