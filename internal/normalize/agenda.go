package normalize

import (
	"strings"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

// cleanAgendaTitle collapses titles containing marker to the marker itself
// and strips one trailing colon.
func cleanAgendaTitle(title, marker string) string {
	title = strings.TrimSpace(title)
	if marker != "" && strings.Contains(title, marker) {
		title = marker
	}
	return strings.TrimSuffix(title, ":")
}

func (n *EventNormalizer) agendaItems(items []civic.RawRecord, meetingID string) []civic.AgendaItem {
	agenda := []civic.AgendaItem{}
	for _, item := range items {
		title := cleanAgendaTitle(item.String("EventItemTitle"), n.cfg.PublicCommentMarker)
		if title == "" {
			continue
		}

		agendaItem := civic.AgendaItem{
			Title:          title,
			BillIdentifier: strings.TrimSpace(item.String("EventItemMatterFile")),
		}

		if itemID := item.String("EventItemVideo"); itemID != "" && meetingID != "" && n.cfg.ItemVideoURL != "" {
			agendaItem.Media = append(agendaItem.Media, recordingLink(expandTemplate(n.cfg.ItemVideoURL, meetingID, itemID)))
		}

		agenda = append(agenda, agendaItem)
	}
	return agenda
}

func recordingLink(url string) civic.Link {
	return civic.Link{
		Note:      "Recording",
		URL:       url,
		MediaType: civic.MediaTypeHTML,
		Type:      "recording",
	}
}

func expandTemplate(template, meetingID, itemID string) string {
	return strings.NewReplacer("{meeting_id}", meetingID, "{item_id}", itemID).Replace(template)
}
