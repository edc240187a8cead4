package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedkeep/feedkeep/app/cfg"
	"github.com/feedkeep/feedkeep/app/collector"
	"github.com/feedkeep/feedkeep/app/config"
	"github.com/feedkeep/feedkeep/app/database"
	"github.com/feedkeep/feedkeep/app/feed"
	"github.com/feedkeep/feedkeep/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting feedkeep", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appConfig.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	if err := registerSubscriptions(db, appConfig.SubscriptionsFile); err != nil {
		slog.Error("Failed to register subscriptions", "error", err)
		os.Exit(1)
	}

	fetcher := feed.NewFetcher(time.Duration(appConfig.RequestTimeout)*time.Second, appConfig.UserAgent)
	parser := feed.NewParser()
	extractor := feed.NewExtractor()
	feedCollector := collector.New(db, fetcher, parser, extractor, appConfig.WorkerCount)

	scheduler := tasks.NewScheduler(feedCollector)
	scheduler.Start()
	defer scheduler.Stop()

	slog.Info("Scheduler started",
		"workers", appConfig.WorkerCount,
		"collection_interval_min", appConfig.CollectionInterval,
		"cleanup_interval_h", appConfig.CleanupInterval,
		"retention_days", appConfig.RetentionDays)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig.String())
}

// registerSubscriptions upserts the configured feeds. This is the
// administrative creation path; collection afterwards only touches health
// and metadata fields.
func registerSubscriptions(db *database.DB, path string) error {
	subs, err := config.Load(path)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	ctx := context.Background()
	feedRepo := database.NewFeedRepository(db)

	registered := 0
	for _, sub := range subs {
		id, err := feedRepo.UpsertFeed(ctx, sub.Name, sub.URL)
		if err != nil {
			slog.Warn("Failed to register feed", "url", sub.URL, "error", err)
			continue
		}

		if sub.Active != nil {
			if err := feedRepo.SetActive(ctx, id, *sub.Active); err != nil {
				slog.Warn("Failed to set feed active flag", "url", sub.URL, "error", err)
			}
		}

		slog.Info("Registered feed", "id", id, "name", sub.Name, "url", sub.URL)
		registered++
	}

	slog.Info("Subscriptions registered", "registered", registered, "total", len(subs))

	return nil
}
