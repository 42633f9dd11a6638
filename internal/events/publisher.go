package events

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/events")

const (
	JobCreatedSubject = "jobs.created"
)

type Publisher interface {
	PublishJobCreated(ctx context.Context, job *models.Job) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(url string, timeout time.Duration, logger *zap.Logger) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("jobboard-api"),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, apperrors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

func (p *natsPublisher) PublishJobCreated(ctx context.Context, job *models.Job) error {
	_, span := tracer.Start(ctx, "PublishJobCreated")
	defer span.End()

	data, err := json.Marshal(job)
	if err != nil {
		span.RecordError(err)
		return apperrors.Internal("marshaling job", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobCreatedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(JobCreatedSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job",
			zap.String("id", job.ID),
			zap.Error(err))
		return apperrors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published job created event",
		zap.String("id", job.ID),
		zap.String("subject", JobCreatedSubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}

// NoopPublisher discards events when NATS_URL is not set.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) PublishJobCreated(ctx context.Context, job *models.Job) error {
	return nil
}

func (NoopPublisher) Close() {}

var _ Publisher = (*NoopPublisher)(nil)
