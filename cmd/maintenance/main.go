package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/kalusugan-health/condition-screening/internal/adapters/database"
	"github.com/kalusugan-health/condition-screening/internal/application/services"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/icd11"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	"github.com/kalusugan-health/condition-screening/pkg/config"
)

// Maintenance worker for the local entity cache: periodically re-fetches
// stale ICD-11 entities and prunes inactive rows. Runs alongside the API so
// request paths never pay for refresh round-trips.
func main() {
	var refreshSpec string
	var cleanupSpec string
	var refreshLimit int
	var retentionDays int
	var once bool
	flag.StringVar(&refreshSpec, "refresh-schedule", "@hourly", "cron schedule for stale entity refresh")
	flag.StringVar(&cleanupSpec, "cleanup-schedule", "@daily", "cron schedule for inactive entity cleanup")
	flag.IntVar(&refreshLimit, "refresh-limit", 50, "maximum entities refreshed per run")
	flag.IntVar(&retentionDays, "retention-days", 30, "days to keep inactive entities before deletion")
	flag.BoolVar(&once, "once", false, "run one refresh and cleanup pass, then exit")
	flag.Parse()

	_ = godotenv.Load()

	if env := os.Getenv("REFRESH_SCHEDULE"); env != "" && refreshSpec == "@hourly" {
		refreshSpec = env
	}
	if env := os.Getenv("CLEANUP_SCHEDULE"); env != "" && cleanupSpec == "@daily" {
		cleanupSpec = env
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-maintenance", os.Getenv("APP_ENV"))

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	gate := services.NewRemoteGate(&cfg.ICD11)
	icd11Client := icd11.NewClient(&cfg.ICD11)
	if !icd11Client.HasCredentials() {
		log.Println("Warning: ICD-11 credentials not set; refresh runs will be no-ops")
	}

	entityService := services.NewEntityService(
		database.NewEntityAdapter(pgClient),
		icd11Client,
		gate,
		time.Duration(cfg.Detection.LocalCacheTimeoutDays)*24*time.Hour,
	)

	retention := time.Duration(retentionDays) * 24 * time.Hour

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresh := func() {
		refreshed, err := entityService.RefreshStale(ctx, refreshLimit)
		if err != nil {
			log.Printf("Refresh failed: %v", err)
			return
		}
		log.Printf("Refreshed %d stale entities", refreshed)
	}

	cleanup := func() {
		removed, err := entityService.CleanupInactive(ctx, retention)
		if err != nil {
			log.Printf("Cleanup failed: %v", err)
			return
		}
		log.Printf("Removed %d inactive entities", removed)
	}

	if once {
		refresh()
		cleanup()
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(refreshSpec, refresh); err != nil {
		log.Fatalf("Invalid refresh schedule %q: %v", refreshSpec, err)
	}
	if _, err := scheduler.AddFunc(cleanupSpec, cleanup); err != nil {
		log.Fatalf("Invalid cleanup schedule %q: %v", cleanupSpec, err)
	}

	scheduler.Start()
	log.Printf("Maintenance worker started (refresh %s, cleanup %s)", refreshSpec, cleanupSpec)

	<-ctx.Done()
	log.Println("Maintenance worker shutting down")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Timed out waiting for running jobs")
	}
}
