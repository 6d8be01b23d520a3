package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/cache"
	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/database"
	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/events"
	"github.com/holocron-labs/swapi-explorer/backend/internal/api/handlers"
	"github.com/holocron-labs/swapi-explorer/backend/internal/api/routes"
	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/providers"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/postgres"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/redis"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/swapi"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/observability"
	"github.com/holocron-labs/swapi-explorer/backend/internal/jobs"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

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
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The service runs without it: every cache read
	// becomes a miss and statistics events are not broadcast.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client, running without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Initialize adapters
	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}
	failsafeCache := cache.NewFailsafeCache(cacheProvider, metrics)

	queryLogRepo := database.NewQueryLogAdapter(pgClient)
	statisticsRepo := database.NewStatisticsAdapter(pgClient)

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized")
	} else {
		log.Info().Msg("Event bus disabled (Redis not available)")
	}

	// Initialize services
	swapiClient := swapi.NewClient(&cfg.Swapi)
	searchService := services.NewSearchService(swapiClient, failsafeCache, &cfg.Swapi, metrics)
	analyticsService := services.NewQueryAnalyticsService(queryLogRepo)
	statisticsService := services.NewStatisticsService(queryLogRepo, statisticsRepo, cfg.Statistics.SnapshotKeepCount)

	// Start the statistics scheduler
	scheduler := jobs.NewStatisticsScheduler(statisticsService, eventBus, cfg.Statistics)
	scheduler.Start(ctx)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService, analyticsService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	var redisPinger handlers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	healthHandler := handlers.NewHealthHandler(pgClient, redisPinger)

	// Set up router
	router := routes.NewRouter(
		searchHandler,
		statisticsHandler,
		sseHandler,
		healthHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server. WriteTimeout stays 0 so SSE connections are not
	// severed mid-stream.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Error during server shutdown")
	}

	scheduler.Stop()

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
