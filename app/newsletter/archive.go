package newsletter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/review"
)

// Archive renders stored newsletters as an RSS 2.0 feed.
type Archive struct {
	name    string
	tagline string
	baseURL string
	version string
}

func NewArchive(options Options) *Archive {
	return &Archive{
		name:    options.Name,
		tagline: options.Tagline,
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		version: options.Version,
	}
}

func (a *Archive) Run(newsletters []database.Newsletter) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	a.writeElement(&buf, "title", a.name, 4)
	a.writeElement(&buf, "link", a.baseURL, 4)
	a.writeElement(&buf, "description", a.description(), 4)

	if a.baseURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(a.baseURL+"/newsletters/feed.xml")))
	}

	lastBuildDate := time.Now()
	if len(newsletters) > 0 && !newsletters[0].CreatedAt.IsZero() {
		lastBuildDate = newsletters[0].CreatedAt
	}
	a.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	a.writeElement(&buf, "generator", fmt.Sprintf("News-Curator/%s", a.version), 4)

	for _, newsletter := range newsletters {
		a.writeItem(&buf, newsletter)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (a *Archive) writeItem(buf *bytes.Buffer, newsletter database.Newsletter) {
	link := a.issueLink(newsletter.Date)

	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", link != newsletter.Date))
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	a.writeElement(buf, "title", a.issueTitle(newsletter.Date), 6)
	if link != newsletter.Date {
		a.writeElement(buf, "link", link, 6)
	}
	a.writeElement(buf, "description", fmt.Sprintf("%d articles", newsletter.ArticleCount), 6)

	if newsletter.HTML != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(newsletter.HTML, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if !newsletter.CreatedAt.IsZero() {
		a.writeElement(buf, "pubDate", newsletter.CreatedAt.Format(time.RFC1123Z), 6)
	}

	buf.WriteString("    </item>\n")
}

func (a *Archive) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (a *Archive) description() string {
	if a.tagline != "" {
		return a.tagline
	}
	return fmt.Sprintf("%s newsletter archive", a.name)
}

// issueLink falls back to the bare date when no base URL is configured.
func (a *Archive) issueLink(date string) string {
	if a.baseURL == "" {
		return date
	}
	return fmt.Sprintf("%s/newsletters/%s", a.baseURL, date)
}

func (a *Archive) issueTitle(date string) string {
	t, err := time.Parse(review.DateLayout, date)
	if err != nil {
		return fmt.Sprintf("%s - %s", a.name, date)
	}
	return fmt.Sprintf("%s - Week of %s", a.name, formatDate(t))
}
