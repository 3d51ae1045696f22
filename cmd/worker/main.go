package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-coach/internal/app"
	"github.com/dvloznov/finance-coach/internal/config"
	"github.com/dvloznov/finance-coach/internal/jobs/inmemory"
	"github.com/dvloznov/finance-coach/internal/logger"
)

// The worker runs scheduled snapshot exports without the HTTP API. It is
// meant for the shared backends; with the memory store it sees no users.
func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}

	schedule := flag.String("schedule", cfg.SnapshotSchedule, "Cron spec for snapshot exports (or set SNAPSHOT_SCHEDULE env)")
	runNow := flag.Bool("run-now", false, "Enqueue one export per user at startup")
	workers := flag.Int("workers", inmemory.DefaultWorkers, "Concurrent job workers")
	flag.Parse()
	cfg.SnapshotSchedule = *schedule

	log := app.NewLogger(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	jobQueue := inmemory.NewQueue(100, *workers, inmemory.NewStore(), log)
	if err := jobQueue.Start(ctx, a.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	scheduler, err := a.StartSchedule(ctx, jobQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start snapshot schedule")
	}
	if scheduler == nil && !*runNow {
		log.Warn().Msg("No schedule configured and -run-now not set, worker is idle")
	}

	if *runNow {
		n, err := a.EnqueueSnapshots(ctx, a.Service, jobQueue)
		if err != nil {
			log.Error().Err(err).Msg("Failed to enqueue snapshot exports")
		} else {
			log.Info().Int("jobs", n).Msg("Snapshot exports enqueued")
		}
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	log.Info().Msg("Worker service exited")
}
