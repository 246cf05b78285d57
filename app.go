package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"rankwatch/config"
	"rankwatch/httputil"
	"rankwatch/notify"
	"rankwatch/scheduler"
	"rankwatch/scraper"
	"rankwatch/services"
	"rankwatch/storage"
)

// monitor is the fully wired process: browser, stores, orchestrator and loop.
type monitor struct {
	cfg       *config.Config
	browser   *scraper.Browser
	history   *storage.SQLiteStore
	stats     *services.StatsManager
	scheduler *scheduler.Scheduler
	closeOnce sync.Once
}

func newMonitor(ctx context.Context, cfg *config.Config) (*monitor, error) {
	history, err := storage.NewSQLiteStore(cfg.Files.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", cfg.Files.DBPath, err)
	}
	log.Info().Str("path", cfg.Files.DBPath).Msg("History database ready")

	snapshotStore := storage.NewSnapshotStore(cfg.Files.Snapshot)
	statsStore := storage.NewStatsStore(cfg.Files.Stats)

	detector := services.NewChangeDetector(snapshotStore.Load(), cfg.Now)
	stats := services.NewStatsManager(statsStore.Load(), statsStore, cfg.Now)

	clients := httputil.NewClients(cfg.ProxyURL, cfg.ChatWork.Timeout)
	notifier := notify.NewChatWork(cfg.ChatWork.Token, cfg.ChatWork.BaseURL, clients.API, cfg.ChatWork.Timeout)

	artifacts, err := newArtifactSink(ctx, cfg.Debug)
	if err != nil {
		history.Close()
		return nil, err
	}

	browser, err := scraper.LaunchBrowser(scraper.BrowserOptions{
		Headless:    cfg.Scraper.Headless,
		UserAgent:   cfg.Scraper.UserAgent,
		ProxyURL:    cfg.ProxyURL,
		PageTimeout: cfg.Scraper.PageTimeout,
		SettleDelay: cfg.Scraper.SettleDelay,
	})
	if err != nil {
		history.Close()
		return nil, err
	}

	extractor := scraper.NewExtractor(browser, artifacts, scraper.ExtractorOptionsFrom(cfg.Scraper))

	orchestrator := scraper.NewOrchestrator(cfg, extractor, detector, notifier, snapshotStore, stats)
	orchestrator.SetHistory(history)

	sched := scheduler.New(cfg, orchestrator, scheduler.NewThrottle(cfg.Monitor, stats), stats)

	return &monitor{
		cfg:       cfg,
		browser:   browser,
		history:   history,
		stats:     stats,
		scheduler: sched,
	}, nil
}

func newArtifactSink(ctx context.Context, cfg config.DebugConfig) (scraper.ArtifactSink, error) {
	sinks := scraper.MultiSink{scraper.FileSink{Dir: cfg.Dir}}
	if cfg.S3Bucket == "" {
		return sinks, nil
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Prefix:          "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("debug artifact bucket: %w", err)
	}
	log.Info().Str("bucket", cfg.S3Bucket).Msg("Uploading debug artifacts to S3")
	return append(sinks, uploader), nil
}

// Close releases the browser and the history database exactly once.
func (m *monitor) Close() {
	m.closeOnce.Do(func() {
		m.scheduler.Stop()
		if err := m.browser.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing browser")
		}
		if err := m.history.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing history database")
		}
	})
}

func logBanner(cfg *config.Config) {
	log.Info().
		Dur("interval", cfg.Monitor.CheckInterval).
		Int("sleep_start", cfg.Monitor.SleepStart).
		Int("sleep_end", cfg.Monitor.SleepEnd).
		Str("timezone", cfg.Location.String()).
		Msgf("Monitoring %d targets", len(cfg.Targets))
	for _, t := range cfg.Targets {
		log.Info().Str("target", t.Key()).Str("room", t.ChannelID).Msg(t.URL)
	}
}
