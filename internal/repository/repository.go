package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/database"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is wrapped by every "no such job" result, including ids that
// are not in the backend's id format.
var ErrNotFound = errors.New("job not found")

// JobRepository persists Job documents. Create normalizes and validates the
// job before writing and fills in ID and CreatedAt.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	FindAll(ctx context.Context) ([]models.Job, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func notFound() error {
	return apperrors.NotFound("job not found", ErrNotFound)
}

func prepare(job *models.Job) error {
	job.Normalize()
	return job.Validate()
}

// NewJobRepository picks a backend from the DATABASE_URL scheme.
func NewJobRepository(cfg *config.Config, logger *zap.Logger) (JobRepository, error) {
	opts := database.Options{
		URI:            cfg.DatabaseURL,
		Database:       cfg.DatabaseName,
		ConnectTimeout: cfg.DBConnectTimeout,
		MaxPoolSize:    cfg.DBMaxPoolSize,
	}

	uri := strings.ToLower(strings.TrimSpace(cfg.DatabaseURL))
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return NewMongoJobRepository(database.NewMongoConnector(opts, logger), logger), nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresJobRepository(database.NewPostgresConnector(opts, logger, &jobRow{}), logger), nil
	case strings.HasPrefix(uri, "memory://"):
		logger.Warn("using in-memory job repository; jobs are lost on restart")
		return NewMemoryJobRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", redactURI(cfg.DatabaseURL))
	}
}

func redactURI(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3] + "..."
	}
	return "..."
}
