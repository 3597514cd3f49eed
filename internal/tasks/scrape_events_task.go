package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/legistar"
	"github.com/lysyi3m/legistar-comb/internal/normalize"
)

type ScrapeEventsTask struct {
	Task
	Config  *jurisdiction.Config
	client  *legistar.Client
	emitter civic.Emitter
	now     func() time.Time
}

func NewScrapeEventsTask(jc *jurisdiction.Config, client *legistar.Client, emitter civic.Emitter) *ScrapeEventsTask {
	return &ScrapeEventsTask{
		Task:    NewTask(TaskTypeScrapeEvents, jc.Name),
		Config:  jc,
		client:  client,
		emitter: emitter,
		now:     time.Now,
	}
}

func (t *ScrapeEventsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled || !t.Config.Settings.ScrapeEvents {
		slog.Debug("Event scraping disabled, skipping", "jurisdiction", t.Jurisdiction)
		return nil
	}

	since := t.now().Add(-t.Config.Settings.GetEventWindow())

	api := legistar.NewAPI(t.client, t.Config)
	scraper, err := normalize.NewScraper(t.Config, api, api, api)
	if err != nil {
		return err
	}

	stats, err := scraper.ScrapeEvents(ctx, api, since, t.emitter)
	if err != nil {
		return err
	}

	slog.Info("Task completed", "type", string(t.Type), "jurisdiction", t.Jurisdiction,
		"seen", stats.Seen, "events", stats.Emitted, "skipped", stats.Skipped, "failed", stats.Failed,
		"duration", t.GetDuration())

	return nil
}
