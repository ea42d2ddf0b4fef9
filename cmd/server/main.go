package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/datalyr/foresight-go/internal/api"
	"github.com/datalyr/foresight-go/internal/cache"
	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/logging"
	"github.com/datalyr/foresight-go/internal/metrics"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/services"
	"github.com/datalyr/foresight-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize telemetry first so spans and OTLP logs cover everything below.
	// Service name and version come from the telemetry package defaults.
	if err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		Enabled:      cfg.Telemetry.Enabled,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Telemetry.SampleRate,
		LogLevel:     cfg.Telemetry.LogLevel,
	}); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown telemetry: %v\n", err)
		}
	}()

	logLevel := cfg.Telemetry.LogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := logging.NewStandardOTLPLogger(logging.OTLPConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: telemetry.ServiceVersion,
		Environment:    cfg.Environment,
		LogLevel:       logLevel,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(shutdownCtx)
	}()

	// Initialize database
	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize Redis with retry. The service stays up without it; forecast
	// caching degrades to the in-process tier only.
	redisClient, err := database.NewRedisConnectionWithRetry(cfg.Redis, cfg.Cache.MaxRetries)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to Redis, continuing without Redis cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Repositories run over the traced pool so every statement gets a client span
	tracedDB := database.NewTracedDB(db.Pool)
	datasets := database.NewDatasetRepository(tracedDB)
	forecasts := database.NewForecastRepository(tracedDB)
	users := database.NewUserRepository(tracedDB)

	// Metrics collector
	collector := metrics.NewMetricsCollector(logger, telemetry.ServiceName)

	// Forecast result cache: in-process LRU tier plus Redis when available
	var forecastCache *cache.ForecastCache
	if cfg.Cache.Enabled {
		// Load already validated the TTL string.
		ttl, _ := time.ParseDuration(cfg.Cache.TTL)
		var redisCmdable redis.Cmdable
		if redisClient != nil {
			redisCmdable = redisClient.Client
		}
		forecastCache, err = cache.NewForecastCache(redisCmdable, ttl, cfg.Cache.LRUSize, cfg.Cache.KeyPrefix)
		if err != nil {
			return fmt.Errorf("failed to create forecast cache: %w", err)
		}
	}

	// Notification service; stays disabled when no bot token is configured
	notifier := services.NewNotificationService(users, cfg.Telegram.BotToken)

	// Core services
	forecastService := services.NewForecastService(cfg, datasets, forecasts, forecastCache, notifier, collector)
	evaluationService := services.NewEvaluationService(cfg, datasets, collector)

	// Start retention sweeps for stored forecasts
	retention := services.NewRetentionService(forecasts)
	retention.Start(cfg.Retention)
	defer retention.Stop()

	// Resource monitor backing the health and stats endpoints
	monitor := services.NewResourceMonitor(30 * time.Second)
	monitor.Start()
	defer monitor.Stop()

	// Authentication middleware. Load already validated the expiry string.
	jwtExpiry, _ := time.ParseDuration(cfg.Security.JWTExpiry)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecret, jwtExpiry)
	adminMiddleware := middleware.NewAdminMiddleware(cfg.Security.AdminAPIKey)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(telemetry.ServiceName))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	// Setup routes
	api.SetupRoutes(router, &api.Dependencies{
		DB:                db,
		Redis:             redisClient,
		Users:             users,
		Datasets:          datasets,
		ForecastService:   forecastService,
		EvaluationService: evaluationService,
		ResourceMonitor:   monitor,
		RetentionService:  retention,
		RetentionDefaults: cfg.Retention,
		ForecastCache:     forecastCache,
		Auth:              authMiddleware,
		AdminAuth:         adminMiddleware,
		BcryptCost:        cfg.Security.BcryptCost,
	})

	// Create HTTP server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.LogStartup(telemetry.ServiceName, telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.LogShutdown(telemetry.ServiceName, "signal received")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Logger().Info("Server exited gracefully")
	return nil
}
