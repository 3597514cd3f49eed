package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

// Store persists emitted entities. It implements civic.Emitter.
type Store struct {
	bills  BillRepositoryInterface
	votes  VoteRepositoryInterface
	events EventRepositoryInterface
}

func NewStore(bills BillRepositoryInterface, votes VoteRepositoryInterface, events EventRepositoryInterface) *Store {
	return &Store{bills: bills, votes: votes, events: events}
}

func (s *Store) Emit(ctx context.Context, entity civic.Entity) error {
	switch e := entity.(type) {
	case *civic.Bill:
		if err := s.bills.UpsertBill(ctx, e); err != nil {
			return err
		}
		slog.Debug("Bill stored", "jurisdiction", e.Jurisdiction, "identifier", e.Identifier)
	case *civic.Vote:
		id, err := s.votes.UpsertVote(ctx, e)
		if err != nil {
			return err
		}
		slog.Debug("Vote stored", "jurisdiction", e.Jurisdiction, "bill", e.BillIdentifier, "id", id)
	case *civic.Event:
		if err := s.events.UpsertEvent(ctx, e); err != nil {
			return err
		}
		slog.Debug("Event stored", "jurisdiction", e.Jurisdiction, "external_id", e.ExternalID)
	default:
		return fmt.Errorf("unsupported entity type %T", entity)
	}
	return nil
}

// Counts returns stored entity totals for jurisdiction, or for all
// jurisdictions when it is empty.
func (s *Store) Counts(jurisdiction string) (Counts, error) {
	counts := Counts{Jurisdiction: jurisdiction}

	var err error
	if counts.Bills, err = s.bills.GetBillCount(jurisdiction); err != nil {
		return counts, err
	}
	if counts.Votes, err = s.votes.GetVoteCount(jurisdiction); err != nil {
		return counts, err
	}
	if counts.Events, err = s.events.GetEventCount(jurisdiction); err != nil {
		return counts, err
	}

	return counts, nil
}
