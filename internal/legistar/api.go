package legistar

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

const (
	pageSize = 1000

	apiDateLayout = "2006-01-02T15:04:05"
	apiTimeLayout = "3:04 PM"

	historyDateLayout = "01/02/2006"
)

// routineAgendaStatuses are agenda status names that carry no information
// about whether the meeting takes place.
var routineAgendaStatuses = map[string]bool{
	"":                           true,
	"final":                      true,
	"draft":                      true,
	"final-revised":              true,
	"final-addendum":             true,
	"not viewable by the public": true,
	"cancelled":                  true,
}

// API reads one jurisdiction from the Legistar web API and shapes the results
// the way the Legistar web pages present them.
type API struct {
	client  *Client
	config  *jurisdiction.Config
	baseURL string
	webURL  string
	now     func() time.Time

	agendaEventID string
	agendaItems   []civic.RawRecord
}

func NewAPI(client *Client, jc *jurisdiction.Config) *API {
	return &API{
		client:  client.WithTimeout(jc.Settings.GetTimeout()),
		config:  jc,
		baseURL: strings.TrimSuffix(jc.APIURL, "/"),
		webURL:  strings.TrimSuffix(jc.WebURL, "/"),
		now:     time.Now,
	}
}

// Exists reports whether url answers a HEAD request with 200.
func (a *API) Exists(ctx context.Context, url string) bool {
	return a.client.Exists(ctx, url)
}

// ExtractVotes reads the vote grid of a history detail page.
func (a *API) ExtractVotes(ctx context.Context, url string) (string, []civic.VotePosition, error) {
	return a.client.ExtractVotes(ctx, url)
}

// pages walks an OData collection in pages of pageSize records.
func (a *API) pages(ctx context.Context, path string, query url.Values, fn func(civic.RawRecord) error) error {
	for skip := 0; ; skip += pageSize {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("$top", strconv.Itoa(pageSize))
		q.Set("$skip", strconv.Itoa(skip))

		var page []civic.RawRecord
		if err := a.client.GetJSON(ctx, a.baseURL+path+"?"+q.Encode(), &page); err != nil {
			return err
		}

		for _, record := range page {
			if err := fn(record); err != nil {
				return err
			}
		}

		if len(page) < pageSize {
			return nil
		}
	}
}

func (a *API) list(ctx context.Context, path string) ([]civic.RawRecord, error) {
	var records []civic.RawRecord
	if err := a.client.GetJSON(ctx, a.baseURL+path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Events enumerates events dated on or after since, each paired with the
// calendar row the web site shows for it.
func (a *API) Events(ctx context.Context, since time.Time, fn func(civic.EventRecord) error) error {
	loc := a.config.Location()

	var calendar *Calendar
	if a.config.CalendarFeed != "" {
		c, err := a.client.Calendar(ctx, a.config.CalendarFeed)
		if err != nil {
			slog.Warn("Calendar feed unavailable, using in-site links", "jurisdiction", a.config.Name, "error", err)
		} else {
			calendar = c
			slog.Debug("Calendar feed loaded", "jurisdiction", a.config.Name, "links", c.Len())
		}
	}

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("EventDate ge datetime'%s'", since.In(loc).Format(apiDateLayout)))
	query.Set("$orderby", "EventDate asc")

	return a.pages(ctx, "/events", query, func(event civic.RawRecord) error {
		start, err := eventStart(event, loc)
		if err != nil {
			slog.Warn("Event with unreadable date", "jurisdiction", a.config.Name, "event_id", event.String("EventId"), "error", err)
			// Unreadable dates pass through raw
			if raw := event.String("EventDate"); raw != "" {
				event["start"] = strings.TrimSpace(raw + " " + event.String("EventTime"))
			}
		} else {
			event["start"] = start.Format(time.RFC3339)
		}

		event["status"] = []any{a.defaultStatus(event, start), agendaStatusDetail(event)}

		return fn(civic.EventRecord{API: event, Web: a.webRecord(event, calendar)})
	})
}

func eventStart(event civic.RawRecord, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(apiDateLayout, event.String("EventDate"), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid EventDate: %w", err)
	}

	clock := strings.TrimSpace(event.String("EventTime"))
	if clock == "" {
		return day, nil
	}

	t, err := time.ParseInLocation(apiTimeLayout, strings.ToUpper(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid EventTime %q: %w", clock, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func (a *API) defaultStatus(event civic.RawRecord, start time.Time) string {
	if strings.EqualFold(event.String("EventAgendaStatusName"), "cancelled") {
		return civic.StatusCancelled
	}
	if !start.IsZero() && start.Before(a.now()) {
		return "passed"
	}
	return "confirmed"
}

func agendaStatusDetail(event civic.RawRecord) string {
	name := strings.TrimSpace(event.String("EventAgendaStatusName"))
	if routineAgendaStatuses[strings.ToLower(name)] {
		return ""
	}
	return name
}

func (a *API) webRecord(event civic.RawRecord, calendar *Calendar) civic.RawRecord {
	id := event.String("EventId")

	web := civic.RawRecord{
		"Meeting Name":      event.String("EventBodyName"),
		"Meeting Details":   civic.NotAvailable,
		"Meeting video":     civic.NotAvailable,
		"Published agenda":  linkOrNotAvailable("Agenda", event.String("EventAgendaFile")),
		"Published minutes": linkOrNotAvailable("Minutes", event.String("EventMinutesFile")),
	}

	if link, ok := calendar.Link(id); ok {
		web["Meeting Details"] = linkOrNotAvailable("Meeting details", link)
	} else if link := event.String("EventInSiteURL"); link != "" {
		web["Meeting Details"] = linkOrNotAvailable("Meeting details", link)
	}

	if media := event.String("EventMedia"); media != "" && a.webURL != "" {
		q := url.Values{}
		q.Set("Mode", "Granicus")
		q.Set("ID1", media)
		q.Set("Mode2", "Video")
		web["Meeting video"] = linkOrNotAvailable("Video", a.webURL+"/Video.aspx?"+q.Encode())
	}

	return web
}

func linkOrNotAvailable(label, link string) any {
	if link == "" {
		return civic.NotAvailable
	}
	return civic.RawRecord{"label": label, "url": link}
}

// Agenda returns the items of an event. The last result is kept for the
// roll call lookup that follows it.
func (a *API) Agenda(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error) {
	id := event.String("EventId")
	if id == "" {
		return nil, fmt.Errorf("event without EventId")
	}
	if id == a.agendaEventID {
		return a.agendaItems, nil
	}

	items, err := a.list(ctx, "/events/"+url.PathEscape(id)+"/eventitems?AgendaNote=1&MinutesNote=1&Attachments=0")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sequence(items[i], "EventItemAgendaSequence") < sequence(items[j], "EventItemAgendaSequence")
	})

	a.agendaEventID, a.agendaItems = id, items
	return items, nil
}

// RollCalls returns the roll call entries of every event item flagged with a
// roll call.
func (a *API) RollCalls(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error) {
	items, err := a.Agenda(ctx, event)
	if err != nil {
		return nil, err
	}

	var calls []civic.RawRecord
	for _, item := range items {
		if item.String("EventItemRollCallFlag") != "1" {
			continue
		}

		records, err := a.list(ctx, "/eventitems/"+url.PathEscape(item.String("EventItemId"))+"/rollcalls")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch roll calls: %w", err)
		}
		calls = append(calls, records...)
	}
	return calls, nil
}

// Legislation enumerates matters introduced on or after createdAfter, shaped
// like rows of the legislation search page.
func (a *API) Legislation(ctx context.Context, createdAfter time.Time, fn func(civic.RawRecord) error) error {
	loc := a.config.Location()

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("MatterIntroDate ge datetime'%s'", createdAfter.In(loc).Format(apiDateLayout)))
	query.Set("$orderby", "MatterIntroDate asc")

	return a.pages(ctx, "/matters", query, func(matter civic.RawRecord) error {
		return fn(a.legislationSummary(matter))
	})
}

func (a *API) legislationSummary(matter civic.RawRecord) civic.RawRecord {
	title := matter.String("MatterTitle")
	if title == "" {
		title = matter.String("MatterName")
	}

	q := url.Values{}
	q.Set("ID", matter.String("MatterId"))
	q.Set("GUID", matter.String("MatterGuid"))

	return civic.RawRecord{
		civic.KeyFileNumber: matter.String("MatterFile"),
		"Title":             title,
		"Type":              matter.String("MatterTypeName"),
		"Status":            matter.String("MatterStatusName"),
		"url":               a.webURL + "/LegislationDetail.aspx?" + q.Encode(),
		"MatterId":          matter.String("MatterId"),
	}
}

// Details returns the sponsors and attachments of a matter and its action
// history in legislation detail page form.
func (a *API) Details(ctx context.Context, summary civic.RawRecord) (civic.RawRecord, []civic.RawRecord, error) {
	id := summary.String("MatterId")
	if id == "" {
		return nil, nil, fmt.Errorf("summary without MatterId")
	}
	base := "/matters/" + url.PathEscape(id)

	sponsors, err := a.list(ctx, base+"/sponsors")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch sponsors: %w", err)
	}
	sort.SliceStable(sponsors, func(i, j int) bool {
		return sequence(sponsors[i], "MatterSponsorSequence") < sequence(sponsors[j], "MatterSponsorSequence")
	})

	attachments, err := a.list(ctx, base+"/attachments")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch attachments: %w", err)
	}

	histories, err := a.list(ctx, base+"/histories")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch histories: %w", err)
	}

	sponsorRows := make([]civic.RawRecord, 0, len(sponsors))
	for _, s := range sponsors {
		sponsorRows = append(sponsorRows, civic.RawRecord{"label": s.String("MatterSponsorName")})
	}

	attachmentRows := make([]civic.RawRecord, 0, len(attachments))
	for _, att := range attachments {
		attachmentRows = append(attachmentRows, civic.RawRecord{
			"label": att.String("MatterAttachmentName"),
			"url":   att.String("MatterAttachmentHyperlink"),
		})
	}

	details := civic.RawRecord{
		"Sponsors":    sponsorRows,
		"Attachments": attachmentRows,
	}

	history := make([]civic.RawRecord, 0, len(histories))
	for _, h := range histories {
		history = append(history, a.historyRow(h))
	}

	return details, history, nil
}

func (a *API) historyRow(h civic.RawRecord) civic.RawRecord {
	date := h.String("MatterHistoryActionDate")
	if t, err := time.Parse(apiDateLayout, date); err == nil {
		date = t.Format(historyDateLayout)
	}

	row := civic.RawRecord{
		"Date":                 date,
		"Action":               h.String("MatterHistoryActionName"),
		civic.KeyActionBy:      h.String("MatterHistoryActionBodyName"),
		civic.KeyActionDetails: civic.NotAvailable,
	}

	if h.String("MatterHistoryRollCallFlag") == "1" || h.String("MatterHistoryPassedFlag") != "" {
		q := url.Values{}
		q.Set("ID", h.String("MatterHistoryId"))
		q.Set("GUID", h.String("MatterHistoryGuid"))
		row[civic.KeyActionDetails] = civic.RawRecord{
			"label": "Action details",
			"url":   a.webURL + "/HistoryDetail.aspx?" + q.Encode(),
		}
	}

	return row
}

func sequence(r civic.RawRecord, key string) int {
	n, err := strconv.Atoi(r.String(key))
	if err != nil {
		return 0
	}
	return n
}
