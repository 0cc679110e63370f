package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kalusugan-health/condition-screening/internal/adapters/cache"
	"github.com/kalusugan-health/condition-screening/internal/adapters/database"
	"github.com/kalusugan-health/condition-screening/internal/adapters/search"
	"github.com/kalusugan-health/condition-screening/internal/api/handlers"
	"github.com/kalusugan-health/condition-screening/internal/api/routes"
	"github.com/kalusugan-health/condition-screening/internal/application/services"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/embedding"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/evidence"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/icd11"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/inference"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/postgres"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/redis"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/clients/typesense"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	"github.com/kalusugan-health/condition-screening/pkg/config"
)

func main() {

	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - detection falls back to uncached operation
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	mappingAdapter := database.NewMappingAdapter(pgClient)
	entityAdapter := database.NewEntityAdapter(pgClient)
	trendingAdapter := database.NewTrendingAdapter(pgClient)

	var searchRepo repositories.MappingSearchRepository
	if cfg.Typesense.URL != "" {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		} else {
			adapter := search.NewTypesenseAdapter(typesenseClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Printf("Warning: Failed to init Typesense schema: %v", err)
			}
			searchRepo = adapter
			log.Println("Typesense client initialized successfully")
		}
	}

	// Remote ICD-11 terminology access, guarded by the failure gate
	gate := services.NewRemoteGate(&cfg.ICD11)
	icd11Client := icd11.NewClient(&cfg.ICD11)
	if !icd11Client.HasCredentials() {
		log.Println("Warning: ICD-11 credentials not set; running in local-only mode")
	}

	var evidenceProvider providers.EvidenceProvider
	if cfg.ICD11.GuidelinesURL != "" {
		evidenceClient, err := evidence.NewClient(cfg.ICD11.GuidelinesURL, time.Duration(cfg.ICD11.TimeoutSeconds)*time.Second)
		if err != nil {
			log.Printf("Warning: guidelines client not configured: %v", err)
		} else {
			evidenceProvider = evidenceClient
		}
	}

	// Model sidecars: both optional, detection degrades to lexical matching
	var embeddingProvider providers.EmbeddingProvider
	if cfg.Embedding.Enabled && cfg.Embedding.ServiceURL != "" {
		embeddingClient, err := embedding.NewClient(cfg.Embedding.ServiceURL, cfg.Embedding.ModelName, 15*time.Second)
		if err != nil {
			log.Printf("Warning: embedding sidecar not configured: %v", err)
		} else {
			embeddingProvider = embeddingClient
			log.Println("Embedding sidecar configured")
		}
	} else {
		log.Println("Warning: embedding sidecar not configured; semantic detection disabled")
	}

	var classifierProvider providers.ClassifierProvider
	if cfg.Classifier.Enabled && cfg.Classifier.ServiceURL != "" {
		classifierClient := inference.NewClient(cfg.Classifier.ServiceURL, cfg.Classifier.ArtifactPath, 15*time.Second)
		if classifierClient.Ready() {
			classifierProvider = classifierClient
			log.Println("Classifier sidecar configured")
		} else {
			log.Println("Warning: classifier artifact not loaded; classifier detection disabled")
		}
	}

	// Initialize services
	lex := lexicon.Default()

	entityService := services.NewEntityService(
		entityAdapter,
		icd11Client,
		gate,
		time.Duration(cfg.Detection.LocalCacheTimeoutDays)*24*time.Hour,
	)

	mappingService := services.NewMappingService(mappingAdapter, searchRepo, lex)
	if err := mappingService.EnsureSeeded(ctx); err != nil {
		log.Printf("Warning: Failed to seed condition mappings: %v", err)
	}

	detectionService := services.NewDetectionService(
		services.NewLexicalDetector(lex, mappingAdapter),
		services.NewSemanticDetector(embeddingProvider, lex),
		services.NewClassifierDetector(classifierProvider, lex, mappingAdapter, cfg.Classifier.MinProbability),
		entityService,
		gate,
		trendingAdapter,
		cacheProvider,
		cfg.Detection,
		metrics,
	)

	mentalHealthService := services.NewMentalHealthService(
		detectionService,
		services.NewRiskService(),
		services.NewInterventionService(evidenceProvider, gate, cacheProvider),
	)

	// Initialize handlers
	detectionHandler := handlers.NewDetectionHandler(detectionService, mentalHealthService)
	mappingHandler := handlers.NewMappingHandler(mappingService, entityService, handlers.Capabilities{
		Embedding:  embeddingProvider != nil,
		Classifier: classifierProvider != nil,
	})
	adminHandler := handlers.NewAdminHandler(entityService)

	router := routes.NewRouter(
		detectionHandler,
		mappingHandler,
		adminHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
