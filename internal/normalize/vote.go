package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

// VoteFetcher extracts the result label and member positions from an action
// detail page.
type VoteFetcher interface {
	ExtractVotes(ctx context.Context, url string) (string, []civic.VotePosition, error)
}

type VoteLinker struct {
	fetcher VoteFetcher
	tables  *Tables
}

func NewVoteLinker(fetcher VoteFetcher, tables *Tables) *VoteLinker {
	return &VoteLinker{fetcher: fetcher, tables: tables}
}

// Run returns the vote recorded behind url for the given bill action, or nil
// when the page lists no member positions.
func (l *VoteLinker) Run(ctx context.Context, bill *civic.Bill, action civic.Action, url string) (*civic.Vote, error) {
	result, positions, err := l.fetcher.ExtractVotes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract votes: %w", err)
	}

	if len(positions) == 0 {
		return nil, nil
	}

	vote := &civic.Vote{
		Jurisdiction:       bill.Jurisdiction,
		LegislativeSession: bill.LegislativeSession,
		MotionText:         action.Description,
		Organization:       action.Organization,
		StartDate:          action.Date,
		BillIdentifier:     bill.Identifier,
		Bill:               bill,
		Positions:          make([]civic.VotePosition, 0, len(positions)),
		Sources:            []civic.Source{{URL: url}},
	}

	mappedResult, err := l.tables.VoteResult(result)
	if err != nil {
		slog.Warn("Unclassified vote result", "bill", bill.Identifier, "result", result, "url", url)
	}
	vote.Result = mappedResult

	counts := make(map[string]int)
	for _, p := range positions {
		voter := strings.TrimSpace(p.Voter)
		if voter == "" {
			continue
		}

		option, err := l.tables.VoteOption(p.Option)
		if err != nil {
			slog.Warn("Unclassified vote option", "bill", bill.Identifier, "voter", voter, "option", p.Option)
		}

		vote.Positions = append(vote.Positions, civic.VotePosition{Voter: voter, Option: option})
		counts[option]++
	}

	if len(vote.Positions) == 0 {
		return nil, nil
	}

	vote.Counts = make([]civic.VoteCount, 0, len(counts))
	for option, value := range counts {
		vote.Counts = append(vote.Counts, civic.VoteCount{Option: option, Value: value})
	}
	sort.Slice(vote.Counts, func(i, j int) bool {
		return vote.Counts[i].Option < vote.Counts[j].Option
	})

	return vote, nil
}
