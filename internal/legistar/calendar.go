package legistar

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"
)

// Calendar maps meeting ids to the detail links published in a Legistar
// calendar RSS feed.
type Calendar struct {
	links map[string]string
}

func ParseCalendar(data []byte) (*Calendar, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar feed: %w", err)
	}

	calendar := &Calendar{links: make(map[string]string, len(feed.Items))}
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		u, err := url.Parse(item.Link)
		if err != nil {
			continue
		}
		if id := u.Query().Get("ID"); id != "" {
			calendar.links[id] = item.Link
		}
	}

	return calendar, nil
}

// Link returns the detail link of meeting id.
func (c *Calendar) Link(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	link, ok := c.links[id]
	return link, ok
}

func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.links)
}

// Calendar fetches and parses the calendar feed at feedURL.
func (c *Client) Calendar(ctx context.Context, feedURL string) (*Calendar, error) {
	data, err := c.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar feed: %w", err)
	}
	return ParseCalendar(data)
}
