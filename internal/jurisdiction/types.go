package jurisdiction

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Name         string       `yaml:"-"` // derived from the file name
	Organization string       `yaml:"organization"`
	Timezone     string       `yaml:"timezone"`
	APIURL       string       `yaml:"api_url"`
	WebURL       string       `yaml:"web_url"`
	EventsPage   string       `yaml:"events_page"`
	CalendarFeed string       `yaml:"calendar_feed"`
	Settings     Settings     `yaml:"settings"`
	Bills        BillConfig   `yaml:"bills"`
	Events       EventConfig  `yaml:"events"`
	Status       StatusConfig `yaml:"status"`

	location *time.Location
}

type Settings struct {
	Enabled         bool   `yaml:"enabled"`
	Timeout         int    `yaml:"timeout"` // seconds
	ScrapeBills     bool   `yaml:"bills"`
	ScrapeEvents    bool   `yaml:"events"`
	EventWindow     int    `yaml:"event_window"`  // days
	CreatedAfter    string `yaml:"created_after"` // YYYY-MM-DD
	StrictBillTypes bool   `yaml:"strict_bill_types"`
}

type BillConfig struct {
	Sessions            []int             `yaml:"sessions"`
	OrganizationAliases map[string]string `yaml:"organization_aliases"`
	SponsorAliases      map[string]string `yaml:"sponsor_aliases"`
	Types               map[string]string `yaml:"types"`
	Actions             map[string]string `yaml:"actions"`
	VoteOptions         map[string]string `yaml:"vote_options"`
	VoteResults         map[string]string `yaml:"vote_results"`
}

type EventConfig struct {
	Locations           map[string]string `yaml:"locations"`
	Names               map[string]string `yaml:"names"`
	Participants        map[string]string `yaml:"participants"`
	VideoURL            string            `yaml:"video_url"`
	ItemVideoURL        string            `yaml:"item_video_url"`
	Documents           []string          `yaml:"documents"`
	PublicCommentMarker string            `yaml:"public_comment_marker"`
}

// StatusConfig holds the phrase lists used to reconcile event status detail
// text. All comparisons are case-insensitive.
type StatusConfig struct {
	CancelContains []string `yaml:"cancel_contains"`
	CancelExact    []string `yaml:"cancel_exact"`
	ResumedExact   []string `yaml:"resumed_exact"`
	AmendedExact   []string `yaml:"amended_exact"`
	LocationMarker string   `yaml:"location_marker"`
	SkipExact      []string `yaml:"skip_exact"`
}

// Location returns the jurisdiction time zone. It falls back to UTC for a
// config that was not validated by the cache.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Settings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

func (s *Settings) GetEventWindow() time.Duration {
	if s.EventWindow <= 0 {
		return 3 * 24 * time.Hour
	}
	return time.Duration(s.EventWindow) * 24 * time.Hour
}

// GetCreatedAfter returns the lower bound for legislation enumeration in loc.
func (s *Settings) GetCreatedAfter(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s.CreatedAfter, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_after %q: %w", s.CreatedAfter, err)
	}
	return t, nil
}
