package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/legistar"
	"github.com/lysyi3m/legistar-comb/internal/normalize"
)

type ScrapeBillsTask struct {
	Task
	Config  *jurisdiction.Config
	client  *legistar.Client
	emitter civic.Emitter
}

func NewScrapeBillsTask(jc *jurisdiction.Config, client *legistar.Client, emitter civic.Emitter) *ScrapeBillsTask {
	return &ScrapeBillsTask{
		Task:    NewTask(TaskTypeScrapeBills, jc.Name),
		Config:  jc,
		client:  client,
		emitter: emitter,
	}
}

func (t *ScrapeBillsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled || !t.Config.Settings.ScrapeBills {
		slog.Debug("Bill scraping disabled, skipping", "jurisdiction", t.Jurisdiction)
		return nil
	}

	createdAfter, err := t.Config.Settings.GetCreatedAfter(t.Config.Location())
	if err != nil {
		return err
	}

	api := legistar.NewAPI(t.client, t.Config)
	scraper, err := normalize.NewScraper(t.Config, api, api, api)
	if err != nil {
		return err
	}

	stats, err := scraper.ScrapeBills(ctx, api, createdAfter, t.emitter)
	if err != nil {
		return err
	}

	slog.Info("Task completed", "type", string(t.Type), "jurisdiction", t.Jurisdiction,
		"seen", stats.Seen, "bills", stats.Emitted, "votes", stats.Votes, "failed", stats.Failed,
		"duration", t.GetDuration())

	return nil
}
