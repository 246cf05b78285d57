package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"rankwatch/config"
	"rankwatch/logging"
	"rankwatch/scheduler"
	"rankwatch/storage"
)

var recentLimit int

var rootCmd = &cobra.Command{
	Use:   "rankwatch",
	Short: "Watch marketplace search pages and alert when the top listing changes",
	RunE:  runDaemon,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring loop until interrupted",
	RunE:  runDaemon,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Check every target once and exit",
	RunE:  runOnce,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print collected stats and recent rank-1 changes",
	RunE:  printStats,
}

func init() {
	statsCmd.Flags().IntVarP(&recentLimit, "limit", "n", 10, "number of recent changes to show")
	rootCmd.AddCommand(runCmd, onceCmd, statsCmd)
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads settings and points logging at the configured file.
// The returned closer flushes the log file.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := logging.Setup(cfg.LogFile, cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		log.Warn().Err(err).Msg("Could not set up file logging")
		return cfg, func() {}, nil
	}
	return cfg, func() { logFile.Close() }, nil
}

func startMonitor(ctx context.Context) (*monitor, func(), error) {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return nil, closeLog, err
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, closeLog, err
	}

	logBanner(cfg)

	m, err := newMonitor(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Initialization failed")
		return nil, closeLog, err
	}
	return m, closeLog, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, closeLog, err := startMonitor(ctx)
	defer closeLog()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.scheduler.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start scheduler")
		return err
	}

	log.Info().Msg("Monitor running. Press Ctrl+C to stop.")
	m.scheduler.Run(ctx)

	log.Info().Msg("Shutting down...")
	scheduler.LogStats(m.stats.Snapshot())
	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, closeLog, err := startMonitor(ctx)
	defer closeLog()
	if err != nil {
		return err
	}
	defer m.Close()

	found := m.scheduler.RunOnce(ctx)
	log.Info().Int("new_items", found).Msg("Check complete")
	return nil
}

func printStats(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	defer closeLog()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := storage.NewStatsStore(cfg.Files.Stats).Load()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		return err
	}

	history, err := storage.NewSQLiteStore(cfg.Files.DBPath)
	if err != nil {
		return fmt.Errorf("open history db: %w", err)
	}
	defer history.Close()

	changes, err := history.RecentChanges(recentLimit)
	if err != nil {
		return fmt.Errorf("read recent changes: %w", err)
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "\nNo rank-1 changes recorded yet.")
		return nil
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DETECTED\tTARGET\tNEW\tPRICE\tNOTIFIED")
	for _, ev := range changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			ev.DetectedAt.In(cfg.Location).Format("2006-01-02 15:04:05"),
			ev.TargetKey, ev.NewName, ev.Price, ev.Notified)
	}
	return tw.Flush()
}
