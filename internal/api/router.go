package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xeerfiles/filetools/internal/api/handler"
	"github.com/xeerfiles/filetools/internal/api/middleware"
	"github.com/xeerfiles/filetools/internal/config"
	"github.com/xeerfiles/filetools/internal/repository"
	"github.com/xeerfiles/filetools/internal/service"
	"github.com/xeerfiles/filetools/internal/storage"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	jobService *service.JobService,
	repo *repository.JobRepository,
	store storage.ObjectStorage,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(repo, store,
		cfg.Storage.UploadsBucket, cfg.Storage.ResultsBucket)
	jobHandler := handler.NewJobHandler(jobService)

	// Health check and metrics
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Tool catalog
		v1.GET("/tools", jobHandler.ListTools)

		// Jobs
		v1.POST("/jobs", jobHandler.SubmitJob)
		v1.POST("/jobs/:id/process", jobHandler.ProcessJob)
		v1.GET("/jobs/:id", jobHandler.GetJob)
	}

	return r
}
