package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/lysyi3m/legistar-comb/internal/api"
	"github.com/lysyi3m/legistar-comb/internal/cfg"
	"github.com/lysyi3m/legistar-comb/internal/database"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"github.com/lysyi3m/legistar-comb/internal/legistar"
	"github.com/lysyi3m/legistar-comb/internal/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("Legistar Comb stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg := cfg.Get()

	slog.Info("Starting Legistar Comb", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	configCache := jurisdiction.NewConfigCache(jurisdiction.Dir(appCfg.JurisdictionsDir))
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load jurisdiction configurations: %w", err)
	}
	slog.Info("Jurisdiction configurations loaded", "count", configCache.GetConfigCount(), "names", configCache.Names())

	billRepo := database.NewBillRepository(db)
	voteRepo := database.NewVoteRepository(db)
	eventRepo := database.NewEventRepository(db)
	store := database.NewStore(billRepo, voteRepo, eventRepo)

	client := legistar.NewClient(&http.Client{}, appCfg.UserAgent, 30*time.Second)

	if appCfg.Once {
		return scrapeOnce(configCache, client, store, appCfg.TaskTimeout)
	}

	runner := tasks.NewRunner(appCfg.QueueSize, appCfg.TaskTimeout)
	runner.Start()
	defer runner.Stop()

	if appCfg.ScrapeOnStart {
		n := tasks.EnqueueJurisdictions(runner, configCache.GetEnabledConfigs(), client, store)
		slog.Info("Startup scrape enqueued", "tasks", n)
	}

	if interval := appCfg.GetScrapeInterval(); interval > 0 {
		runner.Every(interval, func() {
			n := tasks.EnqueueJurisdictions(runner, configCache.GetEnabledConfigs(), client, store)
			slog.Debug("Scheduled scrape enqueued", "tasks", n)
		})
		slog.Info("Periodic scraping enabled", "interval", interval)
	}

	newTasks := func(jc *jurisdiction.Config, kind string) ([]tasks.TaskInterface, error) {
		return tasks.NewScrapeTasks(jc, kind, client, store)
	}

	baseURL := appCfg.BaseUrl
	if baseURL == "" {
		baseURL = "http://localhost:" + appCfg.Port
	}

	handler := api.NewHandler(configCache, billRepo, voteRepo, eventRepo, store, runner, newTasks, api.NewFeedGenerator(baseURL))
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}

// scrapeOnce runs every scrape of the enabled jurisdictions in order and
// reports whether any of them failed.
func scrapeOnce(configCache *jurisdiction.ConfigCache, client *legistar.Client, store *database.Store, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configs := configCache.GetEnabledConfigs()
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		scrapeTasks, err := tasks.NewScrapeTasks(configs[name], tasks.KindAll, client, store)
		if err != nil {
			return err
		}

		for _, task := range scrapeTasks {
			if err := tasks.RunTask(ctx, task, timeout); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed++
			}
		}
	}

	counts, err := store.Counts("")
	if err != nil {
		return err
	}
	slog.Info("Scrape finished", "bills", counts.Bills, "votes", counts.Votes, "events", counts.Events, "failed_tasks", failed)

	if failed > 0 {
		return fmt.Errorf("%d scrape tasks failed", failed)
	}
	return nil
}
