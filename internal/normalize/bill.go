package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

// HistoryDateLayout is the date format of legislation history rows.
const HistoryDateLayout = "01/02/2006"

const actionDateLayout = "2006-01-02"

type BillNormalizer struct {
	jurisdiction   string
	organization   string
	loc            *time.Location
	tables         *Tables
	sessions       *SessionResolver
	orgAliases     map[string]string
	sponsorAliases map[string]string
	votes          *VoteLinker
}

// NewBillNormalizer returns a normalizer for jc. votes may be nil, in which
// case action detail links are not followed.
func NewBillNormalizer(jc *jurisdiction.Config, tables *Tables, votes *VoteLinker) *BillNormalizer {
	loc := jc.Location()
	return &BillNormalizer{
		jurisdiction:   jc.Name,
		organization:   jc.Organization,
		loc:            loc,
		tables:         tables,
		sessions:       NewSessionResolver(jc.Bills.Sessions, loc),
		orgAliases:     jc.Bills.OrganizationAliases,
		sponsorAliases: jc.Bills.SponsorAliases,
		votes:          votes,
	}
}

// Run builds a bill from a legislation summary, its detail record and its
// action history, together with the votes linked from its actions. Nothing
// is returned unless the whole bill normalized.
func (n *BillNormalizer) Run(ctx context.Context, summary, details civic.RawRecord, history []civic.RawRecord) (*civic.Bill, []*civic.Vote, error) {
	identifier := strings.TrimSpace(summary.String(civic.KeyFileNumber))
	if identifier == "" {
		return nil, nil, missingField("bill", civic.KeyFileNumber)
	}

	title := summary.String("Title")
	if title == "" {
		return nil, nil, missingField("bill", "Title")
	}

	sourceURL := summary.String("url")
	if sourceURL == "" {
		return nil, nil, missingField("bill", "url")
	}

	classification, err := n.tables.BillType(summary.String("Type"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to classify bill %s: %w", identifier, err)
	}

	bill := &civic.Bill{
		Jurisdiction:     n.jurisdiction,
		Identifier:       identifier,
		Title:            title,
		Classification:   classification,
		FromOrganization: n.organization,
		Sponsorships:     n.sponsorships(details.Records("Sponsors")),
		Versions:         []civic.Link{},
		Documents:        []civic.Link{},
		Actions:          []civic.Action{},
	}
	bill.AddSource(sourceURL, "")

	for _, attachment := range details.Records("Attachments") {
		link := civic.Link{
			Note:      attachment.String("label"),
			URL:       attachment.String("url"),
			MediaType: civic.MediaTypePDF,
		}
		if link.URL == "" {
			continue
		}
		if len(bill.Versions) == 0 {
			bill.Versions = append(bill.Versions, link)
		} else {
			bill.Documents = append(bill.Documents, link)
		}
	}

	if len(history) == 0 {
		return nil, nil, fmt.Errorf("bill %s: %w", identifier, ErrEmptyHistory)
	}

	dates := make([]time.Time, len(history))
	for i, row := range history {
		raw := strings.TrimSpace(row.String("Date"))
		d, err := time.ParseInLocation(HistoryDateLayout, raw, n.loc)
		if err != nil {
			return nil, nil, fmt.Errorf("bill %s: %w", identifier, malformedField("action", "Date", raw))
		}
		dates[i] = d
	}

	earliest := dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}

	session, err := n.sessions.Run(earliest)
	if err != nil {
		return nil, nil, fmt.Errorf("bill %s earliest action %s: %w", identifier, earliest.Format(actionDateLayout), err)
	}
	bill.LegislativeSession = session

	type voteLink struct {
		action civic.Action
		url    string
	}
	var links []voteLink

	for i, row := range history {
		description := row.String("Action")

		action := civic.Action{
			Description:  description,
			Date:         dates[i].Format(actionDateLayout),
			Organization: n.responsibleOrganization(row.String(civic.KeyActionBy)),
		}

		code, err := n.tables.Action(description)
		if err != nil {
			slog.Warn("Unclassified action", "jurisdiction", n.jurisdiction, "bill", identifier, "action", description)
		}
		action.Classification = code

		bill.Actions = append(bill.Actions, action)

		if detail, ok := row.Record(civic.KeyActionDetails); ok {
			if url := detail.String("url"); url != "" {
				links = append(links, voteLink{action: action, url: url})
			}
		}
	}

	var votes []*civic.Vote
	if n.votes != nil {
		for _, link := range links {
			vote, err := n.votes.Run(ctx, bill, link.action, link.url)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				slog.Warn("Failed to link vote", "jurisdiction", n.jurisdiction, "bill", identifier, "url", link.url, "error", err)
				continue
			}
			if vote != nil {
				votes = append(votes, vote)
			}
		}
	}

	return bill, votes, nil
}

func (n *BillNormalizer) sponsorships(sponsors []civic.RawRecord) []civic.Sponsorship {
	sponsorships := []civic.Sponsorship{}
	for _, sponsor := range sponsors {
		name := strings.TrimSpace(sponsor.String("label"))
		if name == "" {
			continue
		}
		if alias, ok := n.sponsorAliases[name]; ok {
			name = alias
		}

		s := civic.Sponsorship{
			Name:           name,
			EntityType:     civic.EntityPerson,
			Classification: civic.SponsorshipRegular,
		}
		if len(sponsorships) == 0 {
			s.Classification = civic.SponsorshipPrimary
			s.Primary = true
		}
		sponsorships = append(sponsorships, s)
	}
	return sponsorships
}

func (n *BillNormalizer) responsibleOrganization(label string) string {
	label = strings.TrimSpace(label)
	if alias, ok := n.orgAliases[label]; ok {
		return alias
	}
	if label == "" {
		return n.organization
	}
	return label
}
