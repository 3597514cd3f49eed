package api

import (
	"bytes"
	"cmp"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/cfg"
	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/database"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

// FeedGenerator renders stored events of a jurisdiction as an RSS 2.0
// channel.
type FeedGenerator struct {
	baseURL string
}

func NewFeedGenerator(baseURL string) *FeedGenerator {
	return &FeedGenerator{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (g *FeedGenerator) Run(jc *jurisdiction.Config, events []database.Event) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", fmt.Sprintf("%s meetings", jc.Organization), 4)
	g.writeElement(&buf, "link", cmp.Or(jc.EventsPage, jc.WebURL), 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Meetings of the %s", jc.Organization), 4)

	selfLink := fmt.Sprintf("%s/jurisdictions/%s/feed", g.baseURL, jc.Name)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(events) > 0 {
		lastBuildDate = cmp.Or(events[0].UpdatedAt, lastBuildDate)
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Legistar-Comb/%s", cfg.GetVersion()), 4)

	for _, event := range events {
		if err := g.writeItem(&buf, jc, event); err != nil {
			return "", err
		}
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *FeedGenerator) writeItem(buf *bytes.Buffer, jc *jurisdiction.Config, stored database.Event) error {
	var event civic.Event
	if err := json.Unmarshal(stored.Data, &event); err != nil {
		return fmt.Errorf("failed to decode event %s: %w", stored.ExternalID, err)
	}

	start := event.StartDate.In(jc.Location())

	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(jc.Name+"/"+event.ExternalID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", fmt.Sprintf("%s - %s", event.Name, start.Format("Jan 2, 2006 3:04 PM")), 6)
	g.writeElement(buf, "link", webSource(event.Sources), 6)

	description := event.LocationName
	if event.Status == civic.StatusCancelled {
		description = "Cancelled. " + description
	}
	g.writeElement(buf, "description", cmp.Or(description, "No description available"), 6)

	g.writeElement(buf, "pubDate", start.Format(time.RFC1123Z), 6)

	for _, doc := range event.Documents {
		if doc.URL != "" && doc.MediaType != "" {
			buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
				html.EscapeString(doc.URL),
				html.EscapeString(doc.MediaType)))
			break
		}
	}

	buf.WriteString("    </item>\n")
	return nil
}

func webSource(sources []civic.Source) string {
	for _, s := range sources {
		if s.Note == "web" {
			return s.URL
		}
	}
	if len(sources) > 0 {
		return sources[0].URL
	}
	return ""
}

func (g *FeedGenerator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
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
