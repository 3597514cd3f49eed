package normalize

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
)

type fakeLegislation struct {
	summaries  []civic.RawRecord
	details    map[string]civic.RawRecord
	histories  map[string][]civic.RawRecord
	detailErrs map[string]error
}

func (f *fakeLegislation) Legislation(ctx context.Context, createdAfter time.Time, fn func(civic.RawRecord) error) error {
	for _, s := range f.summaries {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLegislation) Details(ctx context.Context, summary civic.RawRecord) (civic.RawRecord, []civic.RawRecord, error) {
	id := summary.String(civic.KeyFileNumber)
	if err := f.detailErrs[id]; err != nil {
		return nil, nil, err
	}
	return f.details[id], f.histories[id], nil
}

type fakeEvents struct {
	records []civic.EventRecord
}

func (f *fakeEvents) Events(ctx context.Context, since time.Time, fn func(civic.EventRecord) error) error {
	for _, r := range f.records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func legislationFixture() *fakeLegislation {
	src := &fakeLegislation{
		details:    map[string]civic.RawRecord{},
		histories:  map[string][]civic.RawRecord{},
		detailErrs: map[string]error{},
	}

	add := func(id, billType string) {
		summary, details, history := resolutionFixture()
		summary[civic.KeyFileNumber] = id
		summary["Type"] = billType
		src.summaries = append(src.summaries, summary)
		src.details[id] = details
		src.histories[id] = history
	}

	add("Res 0001-2011", "Resolution")
	add("Int 0002-2011", "Local Law")
	add("Int 0003-2011", "Introduction")
	add("Int 0004-2011", "Introduction")
	src.detailErrs["Int 0004-2011"] = errors.New("detail page timed out")
	add("Int 0005-2011", "Introduction")

	return src
}

func newTestScraper(t *testing.T, name string, strict bool) *Scraper {
	t.Helper()

	jc := *loadJurisdiction(t, name)
	jc.Settings.StrictBillTypes = strict

	fetcher := &fakeVoteFetcher{votes: map[string]fakeVote{
		detailURL: {result: "Pass", positions: []civic.VotePosition{{Voter: "Jane Doe", Option: "Affirmative"}}},
	}}
	checker := &fakeChecker{ok: map[string]bool{meetingDetailURL: true}}

	scraper, err := NewScraper(&jc, fetcher, detailsFixture(), checker)
	if err != nil {
		t.Fatal(err)
	}
	return scraper
}

func TestScraperBillsContinuesAfterFailures(t *testing.T) {
	scraper := newTestScraper(t, "nyc", false)
	out := &recordingEmitter{}

	stats, err := scraper.ScrapeBills(context.Background(), legislationFixture(), time.Time{}, out)
	if err != nil {
		t.Fatal(err)
	}

	expected := Stats{Seen: 5, Emitted: 3, Votes: 3, Failed: 2}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}

	wantKinds := []civic.Kind{
		civic.KindVote, civic.KindBill,
		civic.KindVote, civic.KindBill,
		civic.KindVote, civic.KindBill,
	}
	if !reflect.DeepEqual(out.kinds(), wantKinds) {
		t.Errorf("Expected emit order %v, got %v", wantKinds, out.kinds())
	}

	var ids []string
	for _, e := range out.entities {
		if bill, ok := e.(*civic.Bill); ok {
			ids = append(ids, bill.Identifier)
		}
	}
	if !reflect.DeepEqual(ids, []string{"Res 0001-2011", "Int 0003-2011", "Int 0005-2011"}) {
		t.Errorf("Unexpected emitted bills: %v", ids)
	}
}

func TestScraperBillsStrictTypes(t *testing.T) {
	scraper := newTestScraper(t, "nyc", true)
	out := &recordingEmitter{}

	stats, err := scraper.ScrapeBills(context.Background(), legislationFixture(), time.Time{}, out)
	if !errors.Is(err, ErrUnknownClassification) {
		t.Fatalf("Expected run to abort on unknown bill type, got %v", err)
	}

	if stats.Emitted != 1 {
		t.Errorf("Expected the prefix before the failure to be emitted, got %d bills", stats.Emitted)
	}
	if len(out.entities) != 2 {
		t.Errorf("Expected vote and bill of the first record, got %d entities", len(out.entities))
	}
}

func TestScraperBillsEmitFailureAborts(t *testing.T) {
	scraper := newTestScraper(t, "nyc", false)
	out := &recordingEmitter{failOn: civic.KindBill}

	stats, err := scraper.ScrapeBills(context.Background(), legislationFixture(), time.Time{}, out)
	if err == nil {
		t.Fatal("Expected emit failure to abort the run")
	}
	if stats.Seen != 1 {
		t.Errorf("Expected run to stop at the first record, saw %d", stats.Seen)
	}
}

func TestScraperBillsCancelled(t *testing.T) {
	scraper := newTestScraper(t, "nyc", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.ScrapeBills(ctx, legislationFixture(), time.Time{}, &recordingEmitter{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestScraperEvents(t *testing.T) {
	scraper := newTestScraper(t, "pittsburgh", false)
	out := &recordingEmitter{}

	noLocation := eventFixture()
	noLocation.API["EventLocation"] = ""

	badStart := eventFixture()
	badStart.API["start"] = "tomorrow"

	second := eventFixture()
	second.API["EventId"] = float64(1235)

	src := &fakeEvents{records: []civic.EventRecord{eventFixture(), noLocation, badStart, second}}

	stats, err := scraper.ScrapeEvents(context.Background(), src, time.Time{}, out)
	if err != nil {
		t.Fatal(err)
	}

	expected := Stats{Seen: 4, Emitted: 2, Skipped: 1, Failed: 1}
	if stats != expected {
		t.Errorf("Expected stats %+v, got %+v", expected, stats)
	}

	if len(out.entities) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(out.entities))
	}
	if out.entities[1].(*civic.Event).ExternalID != "1235" {
		t.Errorf("Expected second event 1235, got %s", out.entities[1].(*civic.Event).ExternalID)
	}
}
