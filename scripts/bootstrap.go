package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kalusugan-health/condition-screening/internal/adapters/database"
	"github.com/kalusugan-health/condition-screening/internal/adapters/search"
	"github.com/kalusugan-health/condition-screening/internal/application/services"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/typesense"
	"github.com/kalusugan-health/condition-screening/pkg/config"
)

// Bootstrap creates the schema and seeds the curated condition mappings.
// Safe to run repeatedly; existing mappings are left untouched.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				condition_trending,
				icd_entities,
				condition_mappings
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS condition_mappings (
			id              TEXT PRIMARY KEY,
			code            TEXT NOT NULL UNIQUE,
			description     TEXT NOT NULL,
			surface_forms   TEXT[] NOT NULL DEFAULT '{}',
			base_confidence DOUBLE PRECISION NOT NULL,
			source          TEXT NOT NULL,
			active          BOOLEAN NOT NULL DEFAULT TRUE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS icd_entities (
			entity_id         TEXT PRIMARY KEY,
			payload           JSONB NOT NULL,
			last_refreshed_at TIMESTAMPTZ NOT NULL,
			active            BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS condition_trending (
			id          TEXT PRIMARY KEY,
			trend_date  DATE NOT NULL,
			code        TEXT NOT NULL,
			source_type TEXT NOT NULL,
			count       BIGINT NOT NULL DEFAULT 0,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (trend_date, code, source_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_condition_trending_date ON condition_trending (trend_date)`,
		`CREATE INDEX IF NOT EXISTS idx_icd_entities_stale ON icd_entities (active, last_refreshed_at)`,
	}

	for _, stmt := range schema {
		if _, err := pgClient.DB().ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}
	log.Println("Schema applied")

	var searchRepo repositories.MappingSearchRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: Typesense unavailable, skipping search index: %v", err)
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Printf("Warning: Failed to init Typesense schema: %v", err)
			} else {
				searchRepo = adapter
			}
		}
	}

	mappingService := services.NewMappingService(
		database.NewMappingAdapter(pgClient),
		searchRepo,
		lexicon.Default(),
	)

	if err := mappingService.EnsureSeeded(ctx); err != nil {
		log.Fatalf("Failed to seed condition mappings: %v", err)
	}

	count, err := mappingService.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count mappings: %v", err)
	}
	log.Printf("Seeding complete: %d active condition mappings", count)
}
