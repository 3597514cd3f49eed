package database

import (
	"context"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

type BillRepositoryInterface interface {
	UpsertBill(ctx context.Context, bill *civic.Bill) error
	GetBill(jurisdiction, identifier string) (*Bill, error)
	ListBills(jurisdiction, session string, limit int) ([]Bill, error)
	GetBillCount(jurisdiction string) (int, error)
}

type VoteRepositoryInterface interface {
	UpsertVote(ctx context.Context, vote *civic.Vote) (string, error)
	ListVotesForBill(jurisdiction, identifier string) ([]Vote, error)
	GetVoteCount(jurisdiction string) (int, error)
}

type EventRepositoryInterface interface {
	UpsertEvent(ctx context.Context, event *civic.Event) error
	GetEvent(jurisdiction, externalID string) (*Event, error)
	ListEvents(jurisdiction string, limit int) ([]Event, error)
	GetEventCount(jurisdiction string) (int, error)
}
