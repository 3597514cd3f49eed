package legistar

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/legistar-comb/internal/civic"
)

const (
	resultSelector   = `span[id$="lblResult2"]`
	voteGridSelector = `table[id$="gridVote_ctl00"]`
	noRecordsClass   = "rgNoRecords"
)

// ExtractVotes reads the result label and the member vote grid of a
// legislation history detail page.
func (c *Client) ExtractVotes(ctx context.Context, url string) (string, []civic.VotePosition, error) {
	doc, err := c.Document(ctx, url)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load history detail: %w", err)
	}

	result, positions := parseVotes(doc)
	return result, positions, nil
}

func parseVotes(doc *goquery.Document) (string, []civic.VotePosition) {
	result := strings.TrimSpace(doc.Find(resultSelector).First().Text())

	var positions []civic.VotePosition
	doc.Find(voteGridSelector).First().Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		if row.HasClass(noRecordsClass) {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		voter := strings.TrimSpace(cells.Eq(0).Text())
		option := strings.TrimSpace(cells.Eq(1).Text())
		if voter == "" || option == "" {
			return
		}

		positions = append(positions, civic.VotePosition{Voter: voter, Option: option})
	})

	return result, positions
}
