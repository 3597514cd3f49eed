package database

import (
	"context"
	"testing"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

type unknownEntity struct{}

func (unknownEntity) EntityKind() civic.Kind { return "unknown" }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := newTestDB(t)
	return NewStore(NewBillRepository(db), NewVoteRepository(db), NewEventRepository(db))
}

func TestStoreEmit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var emitter civic.Emitter = store

	bill := testBill("Res 0001-2011", "2010")
	entities := []civic.Entity{
		&civic.Vote{
			Jurisdiction:   "nyc",
			BillIdentifier: bill.Identifier,
			Bill:           bill,
			Sources:        []civic.Source{{URL: "http://legistar.council.nyc.gov/HistoryDetail.aspx?ID=1"}},
		},
		bill,
		&civic.Event{Jurisdiction: "nyc", ExternalID: "1", StartDate: time.Now()},
	}

	for _, e := range entities {
		if err := emitter.Emit(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := store.Counts("nyc")
	if err != nil {
		t.Fatal(err)
	}
	expected := Counts{Jurisdiction: "nyc", Bills: 1, Votes: 1, Events: 1}
	if counts != expected {
		t.Errorf("Expected counts %+v, got %+v", expected, counts)
	}

	if err := emitter.Emit(ctx, unknownEntity{}); err == nil {
		t.Error("Expected error for unsupported entity")
	}
}

func TestStoreEmitCancelled(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Emit(ctx, testBill("Res 0001-2011", "2010")); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
