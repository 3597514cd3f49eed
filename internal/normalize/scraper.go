package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

// LegislationSource enumerates legislation summaries and fetches the detail
// record and action history of one summary.
type LegislationSource interface {
	Legislation(ctx context.Context, createdAfter time.Time, fn func(civic.RawRecord) error) error
	Details(ctx context.Context, summary civic.RawRecord) (civic.RawRecord, []civic.RawRecord, error)
}

// EventSource enumerates events starting on or after since.
type EventSource interface {
	Events(ctx context.Context, since time.Time, fn func(civic.EventRecord) error) error
}

type Stats struct {
	Seen    int
	Emitted int
	Votes   int
	Skipped int
	Failed  int
}

// Scraper drives the normalizers over a source one record at a time. A record
// that fails to normalize is logged and counted; it never stops the run.
type Scraper struct {
	name            string
	strictBillTypes bool
	bills           *BillNormalizer
	events          *EventNormalizer
}

func NewScraper(jc *jurisdiction.Config, votes VoteFetcher, details EventDetailSource, checker LinkChecker) (*Scraper, error) {
	tables, err := NewTables(jc.Bills)
	if err != nil {
		return nil, fmt.Errorf("failed to build classification tables for %s: %w", jc.Name, err)
	}

	var linker *VoteLinker
	if votes != nil {
		linker = NewVoteLinker(votes, tables)
	}

	return &Scraper{
		name:            jc.Name,
		strictBillTypes: jc.Settings.StrictBillTypes,
		bills:           NewBillNormalizer(jc, tables, linker),
		events:          NewEventNormalizer(jc, NewStatusReconciler(jc.Status), details, checker),
	}, nil
}

func (s *Scraper) ScrapeBills(ctx context.Context, src LegislationSource, since time.Time, out civic.Emitter) (Stats, error) {
	var stats Stats

	err := src.Legislation(ctx, since, func(summary civic.RawRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Seen++

		identifier := summary.String(civic.KeyFileNumber)

		details, history, err := src.Details(ctx, summary)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			slog.Error("Failed to fetch bill details", "jurisdiction", s.name, "bill", identifier, "error", err)
			return nil
		}

		bill, votes, err := s.bills.Run(ctx, summary, details, history)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.strictBillTypes && errors.Is(err, ErrUnknownClassification) {
				return err
			}
			stats.Failed++
			slog.Error("Failed to normalize bill", "jurisdiction", s.name, "bill", identifier, "error", err)
			return nil
		}

		for _, vote := range votes {
			if err := out.Emit(ctx, vote); err != nil {
				return fmt.Errorf("failed to emit vote for bill %s: %w", bill.Identifier, err)
			}
			stats.Votes++
		}

		if err := out.Emit(ctx, bill); err != nil {
			return fmt.Errorf("failed to emit bill %s: %w", bill.Identifier, err)
		}
		stats.Emitted++

		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to scrape bills for %s: %w", s.name, err)
	}

	return stats, nil
}

func (s *Scraper) ScrapeEvents(ctx context.Context, src EventSource, since time.Time, out civic.Emitter) (Stats, error) {
	var stats Stats

	err := src.Events(ctx, since, func(record civic.EventRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Seen++

		event, err := s.events.Run(ctx, record)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			slog.Error("Failed to normalize event", "jurisdiction", s.name, "event_id", record.API.String("EventId"), "error", err)
			return nil
		}
		if event == nil {
			stats.Skipped++
			return nil
		}

		if err := out.Emit(ctx, event); err != nil {
			return fmt.Errorf("failed to emit event %s: %w", event.ExternalID, err)
		}
		stats.Emitted++

		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to scrape events for %s: %w", s.name, err)
	}

	return stats, nil
}
