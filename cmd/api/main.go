package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/cache"
	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/events"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/server"
	"github.com/justsurfingit/jobboard/internal/services"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.OTelCollectorURL == "" {
		return nil
	}
	shutdown, err := telemetry.InitTracer(context.Background(), "jobboard-api", cfg.OTelCollectorURL)
	if err != nil {
		return err
	}
	logger.Info("tracing enabled", zap.String("collector", cfg.OTelCollectorURL))
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}

func newRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repository.JobRepository, error) {
	repo, err := repository.NewJobRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// warm the connection; requests will retry if this fails
			if err := repo.Ping(ctx); err != nil {
				logger.Warn("job store not reachable at startup", zap.Error(err))
			}
			return nil
		},
		OnStop: repo.Close,
	})
	return repo, nil
}

// newPublisher falls back to a noop publisher when NATS is not configured or
// cannot be reached; job creation never depends on it.
func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NewNoopPublisher()
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSConnTimeout, logger)
	if err != nil {
		logger.Warn("NATS unavailable, job events disabled", zap.Error(err))
		return events.NewNoopPublisher()
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pub.Close()
			return nil
		},
	})
	return pub
}

func newHealthHandler(lc fx.Lifecycle, cfg *config.Config, repo repository.JobRepository) *handlers.HealthHandler {
	if cfg.RedisAddr == "" {
		return handlers.NewHealthHandler(repo, nil)
	}
	redis := cache.NewRedis(cache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return redis.Close()
		},
	})
	return handlers.NewHealthHandler(repo, redis)
}

func newRouter(cfg *config.Config, logger *zap.Logger, jobs *handlers.JobHandler, health *handlers.HealthHandler) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return server.NewRouter(server.RouterConfig{
		JobHandler:     jobs,
		HealthHandler:  health,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
		Metrics:        true,
	})
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, router *gin.Engine) *http.Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("API server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("API server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newRepository,
			newPublisher,
			services.NewJobService,
			handlers.NewJobHandler,
			newHealthHandler,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(
			newTracing,
			func(*http.Server) {},
		),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
