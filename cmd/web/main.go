package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/cache"
	"github.com/justsurfingit/jobboard/internal/client"
	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/identity"
	"github.com/justsurfingit/jobboard/internal/locations"
	"github.com/justsurfingit/jobboard/internal/membership"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"github.com/justsurfingit/jobboard/internal/web"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration & logging
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.OTelCollectorURL != "" {
		shutdown, err := telemetry.InitTracer(context.Background(), "jobboard-web", cfg.OTelCollectorURL)
		if err != nil {
			logger.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// 2. Cache (redis when configured, otherwise process memory)
	var store cache.Cache
	var redisCheck handlers.Pinger
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cache.Options{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			DefaultTTL:    cfg.LocationsCacheTTL,
		})
		defer redisCache.Close()
		store = redisCache
		redisCheck = redisCache
	} else {
		store = cache.NewMemory(cache.Options{DefaultTTL: cfg.LocationsCacheTTL})
	}

	// 3. Job API client
	jobs := client.New(cfg.APIBaseURL, cfg.HTTPClientTimeout, logger)

	// 4. Identity
	var ident identity.Provider = identity.SignedOut{}
	sessions, err := identity.NewSessionProvider(cfg.SessionSecret)
	if err != nil {
		logger.Warn("SESSION_SECRET not set; everyone is signed out")
		sessions = nil
	} else {
		ident = sessions
	}

	// 5. Location suggestions
	var suggester locations.Suggester = locations.None{}
	if cfg.LocationsURL != "" {
		suggester = locations.NewCachedSuggester(
			locations.NewHTTPSuggester(cfg.LocationsURL, cfg.HTTPClientTimeout, logger),
			store,
			cfg.LocationsCacheTTL,
			logger,
		)
	}

	// 6. Router
	router := web.NewRouter(web.Config{
		Jobs:        jobs,
		Identity:    ident,
		Sessions:    sessions,
		Memberships: membership.NewMemoryProvider(),
		Suggester:   suggester,
		Drafts:      store,
		Health:      handlers.NewHealthHandler(jobs, redisCheck),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("web server starting", zap.String("addr", srv.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("web server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("web server shutdown", zap.Error(err))
	}
}
