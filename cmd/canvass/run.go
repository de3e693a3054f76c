package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"canvass-hq/canvass/pkg/archive"
	"canvass-hq/canvass/pkg/config"
	"canvass-hq/canvass/pkg/engine"
	"canvass-hq/canvass/pkg/schema/provider"
	"canvass-hq/canvass/pkg/session"
	"canvass-hq/canvass/pkg/telemetry/logging"
	"canvass-hq/canvass/pkg/telemetry/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine with scheduled sweeping and definition watching",
	Long: `Run the engine as a long-lived process.

Survey definitions are loaded from the configured directory, expired
drafts are swept on the configured cron schedule, and (when enabled) the
definitions directory is watched so new survey versions publish without a
restart. The process runs until interrupted.`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		RedactAnswers: cfg.Telemetry.Logging.RedactAnswers,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := newStore(cfg.Session)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, err := newSink(cfg.Archive)
	if err != nil {
		return err
	}
	defer sink.Close()

	var engineMetrics *metrics.EngineMetrics
	if cfg.Telemetry.Metrics.Enabled {
		engineMetrics = metrics.NewEngineMetrics(cfg.Telemetry.Metrics.Namespace, prometheus.NewRegistry())
	}

	registry := provider.NewRegistry()
	eng := engine.New(registry, store, sink, &engine.Config{
		InactivityWindow: cfg.Session.InactivityWindow,
		Metrics:          engineMetrics,
		Logger:           logger,
	})
	registry.OnPublish(eng.Invalidate)

	loader := provider.NewLoader(registry, logger)
	loaded, failures := loader.LoadDirectory(cfg.Definitions.Dir)
	logger.Info("survey definitions loaded",
		"dir", cfg.Definitions.Dir,
		"loaded", loaded,
		"failed", len(failures),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Session.SweepSchedule != "" {
		sweeper, err := eng.StartSweeper(ctx, cfg.Session.SweepSchedule)
		if err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	if cfg.Definitions.Watch {
		watcher, err := provider.NewWatcher(cfg.Definitions.Dir, loader, cfg.Definitions.DebounceInterval, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("definition watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	logger.Info("engine running", "versions", registry.Versions())
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// newStore builds the draft store selected by configuration.
func newStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "sqlite":
		return session.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// newSink builds the archive sink selected by configuration.
func newSink(cfg config.ArchiveConfig) (archive.Sink, error) {
	switch cfg.Backend {
	case "memory":
		return archive.NewMemorySink(), nil
	case "sqlite":
		return archive.NewSQLiteSink(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
