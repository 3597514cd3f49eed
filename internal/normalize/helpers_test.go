package normalize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

func loadJurisdiction(t *testing.T, name string) *jurisdiction.Config {
	t.Helper()

	configCache := jurisdiction.NewConfigCache(jurisdiction.Defaults())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig(name)
	if err != nil {
		t.Fatal(err)
	}
	return config
}

type fakeVote struct {
	result    string
	positions []civic.VotePosition
	err       error
}

type fakeVoteFetcher struct {
	votes map[string]fakeVote
	calls []string
}

func (f *fakeVoteFetcher) ExtractVotes(ctx context.Context, url string) (string, []civic.VotePosition, error) {
	f.calls = append(f.calls, url)
	v, ok := f.votes[url]
	if !ok {
		return "", nil, nil
	}
	return v.result, v.positions, v.err
}

type fakeDetails struct {
	agenda       []civic.RawRecord
	rollCalls    []civic.RawRecord
	agendaErr    error
	rollCallErr  error
	agendaCalls  int
	rollCallCall int
}

func (f *fakeDetails) Agenda(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error) {
	f.agendaCalls++
	return f.agenda, f.agendaErr
}

func (f *fakeDetails) RollCalls(ctx context.Context, event civic.RawRecord) ([]civic.RawRecord, error) {
	f.rollCallCall++
	return f.rollCalls, f.rollCallErr
}

type fakeChecker struct {
	ok map[string]bool
}

func (f *fakeChecker) Exists(ctx context.Context, url string) bool {
	return f.ok[url]
}

type recordingEmitter struct {
	mu       sync.Mutex
	entities []civic.Entity
	failOn   civic.Kind
}

func (r *recordingEmitter) Emit(ctx context.Context, entity civic.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failOn != "" && entity.EntityKind() == r.failOn {
		return errors.New("storage unavailable")
	}
	r.entities = append(r.entities, entity)
	return nil
}

func (r *recordingEmitter) kinds() []civic.Kind {
	kinds := make([]civic.Kind, 0, len(r.entities))
	for _, e := range r.entities {
		kinds = append(kinds, e.EntityKind())
	}
	return kinds
}
