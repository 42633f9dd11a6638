package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	JobHandler     *handlers.JobHandler
	HealthHandler  *handlers.HealthHandler
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        bool // expose /metrics
}

func init() {
	// request bodies are decoded strictly; unknown fields are a 400
	binding.EnableDecoderDisallowUnknownFields = true
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		cfg.Logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("request_id", middleware.GetRequestID(c)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"code":  handlers.ErrCodeInternal,
		})
	}))
	if cfg.Metrics {
		r.Use(middleware.Prometheus())
	}
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Check)
	} else {
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	if cfg.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/jobs", cfg.JobHandler.CreateJob)
		api.GET("/jobs", cfg.JobHandler.ListJobs)
		api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		api.GET("/organization", cfg.JobHandler.ListJobs)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": handlers.ErrCodeNotFound})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	return config
}
