package api

import (
	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/api/handlers"
	"github.com/datalyr/foresight-go/internal/cache"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/services"
)

// Dependencies bundles everything the HTTP surface needs. The composition
// root fills it once and hands it to SetupRoutes.
type Dependencies struct {
	DB                *database.PostgresDB
	Redis             *database.RedisClient
	Users             *database.UserRepository
	Datasets          *database.DatasetRepository
	ForecastService   *services.ForecastService
	EvaluationService *services.EvaluationService
	ResourceMonitor   *services.ResourceMonitor
	RetentionService  *services.RetentionService
	RetentionDefaults services.RetentionConfig
	ForecastCache     *cache.ForecastCache
	Auth              *middleware.AuthMiddleware
	AdminAuth         *middleware.AdminMiddleware
	BcryptCost        int
}

// SetupRoutes registers the full route table. Mutating routes require a
// bearer token; read and analyze routes take an optional one so requests
// can be attributed when a user is present. The admin group is gated by
// the shared admin API key instead.
func SetupRoutes(router *gin.Engine, deps *Dependencies) {
	forecastHandler := handlers.NewForecastHandler(deps.ForecastService)
	datasetHandler := handlers.NewDatasetHandler(deps.Datasets)
	evaluationHandler := handlers.NewEvaluationHandler(deps.EvaluationService)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Auth, deps.BcryptCost)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis, deps.ResourceMonitor, deps.ForecastCache)
	cacheHandler := handlers.NewCacheHandler(deps.ForecastCache)
	retentionHandler := handlers.NewRetentionHandler(deps.RetentionService, deps.RetentionDefaults)

	health := router.Group("/health")
	health.Use(middleware.HealthCheckTelemetryMiddleware())
	{
		health.GET("", healthHandler.Health)
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelemetryMiddleware())
	{
		forecasts := v1.Group("/forecasts")
		{
			forecasts.POST("/analyze", deps.Auth.OptionalAuth(), forecastHandler.Analyze)
			forecasts.POST("/analyze/display", deps.Auth.OptionalAuth(), forecastHandler.AnalyzeDisplay)
			forecasts.GET("/:id", deps.Auth.OptionalAuth(), forecastHandler.GetForecast)
		}

		datasets := v1.Group("/datasets")
		{
			datasets.POST("", deps.Auth.RequireAuth(), datasetHandler.CreateDataset)
			datasets.POST("/upload", deps.Auth.RequireAuth(), datasetHandler.UploadDataset)
			datasets.GET("", deps.Auth.OptionalAuth(), datasetHandler.ListDatasets)
			datasets.GET("/:id", deps.Auth.OptionalAuth(), datasetHandler.GetDataset)
			datasets.GET("/:id/forecasts", deps.Auth.OptionalAuth(), forecastHandler.ListDatasetForecasts)
			datasets.DELETE("/:id", deps.Auth.RequireAuth(), datasetHandler.DeleteDataset)
		}

		evaluations := v1.Group("/evaluations")
		{
			evaluations.POST("", deps.Auth.OptionalAuth(), evaluationHandler.Evaluate)
		}

		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/profile", deps.Auth.RequireAuth(), userHandler.Profile)
			users.PUT("/profile", deps.Auth.RequireAuth(), userHandler.UpdateProfile)
		}

		system := v1.Group("/system")
		{
			system.GET("/stats", healthHandler.SystemStats)
		}

		admin := v1.Group("/admin")
		admin.Use(deps.AdminAuth.RequireAdminAuth())
		{
			admin.GET("/cache/stats", cacheHandler.GetCacheStats)
			admin.POST("/cache/clear", cacheHandler.ClearCache)
			admin.POST("/retention/run", retentionHandler.TriggerRetention)
		}
	}
}
