package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/httpapi"
	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/internal/jsearch"
	"github.com/careercardinal/jobtracker/internal/persistence"
	"github.com/careercardinal/jobtracker/internal/service"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronRunner interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	settingsPath := cfg.SettingsFilePath()
	saved, err := config.LoadRuntimeSettingsFile(settingsPath)
	switch {
	case err == nil:
		config.WithRuntimeSettings(saved)(cfg)
		log.Info("Loaded runtime settings from %s", settingsPath)
	case !errors.Is(err, os.ErrNotExist):
		log.Warn("Ignoring runtime settings file %s: %v", settingsPath, err)
	}
	settings, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		return fmt.Errorf("invalid runtime settings: %w", err)
	}

	store, err := persistence.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer store.Close()

	searchClient := jsearch.NewClient(cfg.JSearch.APIKey,
		jsearch.WithBaseURL(cfg.JSearch.BaseURL),
		jsearch.WithHost(cfg.JSearch.Host),
		jsearch.WithTimeout(time.Duration(cfg.JSearch.Timeout)*time.Second),
	)
	svc := service.NewJobService(store, searchClient, cfg.Columns())

	queue := ingest.NewQueue(cfg.Ingest.Workers, store)
	queue.Start(svc.IngestExecutor())
	defer queue.Stop()

	cronEngine := cron.New()
	ingestScheduler := service.NewIngestScheduler(cronEngine, queue, cfg.RuntimeSettings())

	httpSrv := httpapi.NewServer(svc,
		httpapi.WithUI(cfg.HTTP.UIStaticDir, cfg.HTTP.UIEnabled),
		httpapi.WithCORSOrigin(cfg.HTTP.CORSAllowedOrigin),
		httpapi.WithIngestQueue(queue),
		httpapi.WithIngestScheduler(ingestScheduler),
		httpapi.WithRuntimeSettingsStore(settings),
		httpapi.WithRuntimeSettingsApplier(ingestScheduler.ApplyRuntimeSettings),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithComponents(ctx, cfg, ingestScheduler, cronEngine, httpSrv)
}

// runWithComponents registers the ingest schedule, starts cron and serves
// HTTP until ctx is cancelled or the server fails.
func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, cronEngine cronRunner, httpSrv httpServer) error {
	if err := sched.Schedule(ctx); err != nil {
		return fmt.Errorf("failed to schedule ingest: %w", err)
	}
	cronEngine.Start()
	defer cronEngine.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server is running on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
