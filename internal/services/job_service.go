package services

import (
	"context"
	"strings"

	"github.com/justsurfingit/jobboard/internal/dtos"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/events"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var jobsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "jobboard_jobs_created_total",
	Help: "Total job postings created",
})

type JobService struct {
	repo      repository.JobRepository
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewJobService(repo repository.JobRepository, publisher events.Publisher, logger *zap.Logger) *JobService {
	return &JobService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		tracer:    telemetry.GetTracer("jobboard/services"),
	}
}

// CreateJob maps the request onto a Job and stores it. A missing title,
// description or organization name is rejected before the store is touched.
func (s *JobService) CreateJob(ctx context.Context, req *dtos.CreateJobRequest) (*models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "CreateJob")
	defer span.End()

	if !req.HasRequiredFields() {
		return nil, apperrors.InvalidInput(dtos.MissingRequiredFieldsMessage, nil)
	}

	job := req.ToModel()
	if err := s.repo.Create(ctx, job); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create job")
		return nil, err
	}
	jobsCreated.Inc()

	span.SetAttributes(
		telemetry.String("job.id", job.ID),
		telemetry.String("job.organization", job.Organization.Name),
	)

	// the job is already stored; a lost event must not fail the request
	if err := s.publisher.PublishJobCreated(ctx, job); err != nil {
		s.logger.Warn("failed to publish job created event",
			zap.String("id", job.ID),
			zap.Error(err))
	}

	s.logger.Info("job created",
		zap.String("id", job.ID),
		zap.String("organization", job.Organization.Name))
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id string) (*models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "GetJob")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Job ID is required.", nil)
	}
	span.SetAttributes(telemetry.String("job.id", id))

	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "get job")
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context) ([]models.Job, error) {
	ctx, span := s.tracer.Start(ctx, "ListJobs")
	defer span.End()

	jobs, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list jobs")
		return nil, err
	}
	span.SetAttributes(telemetry.Int("jobs.count", len(jobs)))
	return jobs, nil
}
