package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

// EventDetailSource enumerates the agenda items and roll calls of an event.
type EventDetailSource interface {
	Agenda(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error)
	RollCalls(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error)
}

// LinkChecker reports whether a URL currently resolves with a success status.
type LinkChecker interface {
	Exists(ctx context.Context, url string) bool
}

const rollCallPresent = "Present"

type EventNormalizer struct {
	jurisdiction string
	apiURL       string
	eventsPage   string
	loc          *time.Location
	cfg          jurisdiction.EventConfig
	status       *StatusReconciler
	details      EventDetailSource
	checker      LinkChecker
}

func NewEventNormalizer(jc *jurisdiction.Config, status *StatusReconciler, details EventDetailSource, checker LinkChecker) *EventNormalizer {
	return &EventNormalizer{
		jurisdiction: jc.Name,
		apiURL:       strings.TrimSuffix(jc.APIURL, "/"),
		eventsPage:   jc.EventsPage,
		loc:          jc.Location(),
		cfg:          jc.Events,
		status:       status,
		details:      details,
		checker:      checker,
	}
}

// Run builds an event from an API record and its calendar row. A nil event
// with a nil error means the record was skipped on purpose.
func (n *EventNormalizer) Run(ctx context.Context, record civic.EventRecord) (*civic.Event, error) {
	api, web := record.API, record.Web
	if web == nil {
		web = civic.RawRecord{}
	}

	location := strings.TrimSpace(api.String("EventLocation"))
	if alias, ok := n.cfg.Locations[location]; ok {
		location = alias
	}
	if location == "" {
		slog.Debug("Event without location skipped", "jurisdiction", n.jurisdiction, "event_id", api.String("EventId"))
		return nil, nil
	}

	resolution := n.status.Run(RawStatusFrom(api.Strings("status")), location)
	switch {
	case resolution.Outcome == Skip:
		slog.Debug("Event skipped by status", "jurisdiction", n.jurisdiction, "event_id", api.String("EventId"), "phrase", resolution.Phrase)
		return nil, nil
	case resolution.Unrecognized:
		slog.Warn("Unrecognized event status", "jurisdiction", n.jurisdiction, "event_id", api.String("EventId"), "phrase", resolution.Phrase, "needs_review", true)
	}

	externalID := api.String("EventId")
	if externalID == "" {
		return nil, missingField("event", "EventId")
	}

	rawStart := api.String("start")
	if rawStart == "" {
		return nil, missingField("event", "start")
	}
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return nil, malformedField("event", "start", rawStart)
	}

	body := strings.TrimSpace(web.String("Meeting Name"))
	if body == "" {
		body = strings.TrimSpace(api.String("EventBodyName"))
	}
	if body == "" {
		return nil, missingField("event", "Meeting Name")
	}

	name := body
	if alias, ok := n.cfg.Names[body]; ok {
		name = alias
	}

	event := &civic.Event{
		Jurisdiction: n.jurisdiction,
		ExternalID:   externalID,
		Name:         name,
		StartDate:    start.In(n.loc),
		Description:  strings.TrimSpace(api.String("EventComment")),
		LocationName: resolution.Location,
		Status:       resolution.Status,
		Media:        []civic.Link{},
		Documents:    []civic.Link{},
		Participants: []civic.Participant{},
		AgendaItems:  []civic.AgendaItem{},
	}

	meetingID := n.meetingID(web)
	if meetingID != "" && n.cfg.VideoURL != "" {
		event.Media = append(event.Media, recordingLink(expandTemplate(n.cfg.VideoURL, meetingID, "")))
	}

	for _, category := range n.cfg.Documents {
		doc, ok := web.Record(category)
		if !ok || doc.String("url") == "" {
			continue
		}
		note := doc.String("label")
		if note == "" {
			note = category
		}
		event.Documents = append(event.Documents, civic.Link{
			Note:      note,
			URL:       doc.String("url"),
			MediaType: civic.MediaTypePDF,
		})
	}

	if n.details != nil {
		items, err := n.details.Agenda(ctx, api)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch agenda for event %s: %w", externalID, err)
		}
		event.AgendaItems = n.agendaItems(items, meetingID)
	}

	participant := body
	if alias, ok := n.cfg.Participants[body]; ok {
		participant = alias
	}
	event.AddParticipant(participant, civic.EntityOrganization)

	if n.details != nil {
		calls, err := n.details.RollCalls(ctx, api)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch roll calls for event %s: %w", externalID, err)
		}
		for _, person := range presentMembers(calls) {
			event.AddParticipant(person, civic.EntityPerson)
		}
	}

	event.AddSource(n.apiURL+"/events/"+externalID, "api")
	n.addWebSource(ctx, event, web)

	return event, nil
}

func (n *EventNormalizer) addWebSource(ctx context.Context, event *civic.Event, web civic.RawRecord) {
	if details, ok := web.Record("Meeting Details"); ok {
		if detailURL := details.String("url"); detailURL != "" {
			if n.checker != nil && n.checker.Exists(ctx, detailURL) {
				event.AddSource(detailURL, "web")
				return
			}
			slog.Debug("Meeting details unavailable, using events page", "jurisdiction", n.jurisdiction, "event_id", event.ExternalID, "url", detailURL)
		}
	}

	if n.eventsPage != "" {
		event.AddSource(n.eventsPage, "web")
	}
}

// meetingID extracts the video meeting id from the ID1 query parameter of
// the calendar row video link.
func (n *EventNormalizer) meetingID(web civic.RawRecord) string {
	video, ok := web.Record("Meeting video")
	if !ok {
		return ""
	}

	raw := video.String("url")
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("ID1")
}

func presentMembers(calls []civic.RawRecord) []string {
	seen := make(map[string]struct{})
	for _, call := range calls {
		if call.String("RollCallValueName") != rollCallPresent {
			continue
		}
		if person := strings.TrimSpace(call.String("RollCallPersonName")); person != "" {
			seen[person] = struct{}{}
		}
	}

	members := make([]string, 0, len(seen))
	for person := range seen {
		members = append(members, person)
	}
	sort.Strings(members)
	return members
}
