package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobboard/internal/database"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// jobRow flattens the embedded organization and poster into columns; the
// list fields are stored as JSON.
type jobRow struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	JobTitle         string    `gorm:"not null"`
	JobDescription   string    `gorm:"type:text;not null"`
	Location         string    `gorm:"not null"`
	JobType          string    `gorm:"size:16"`
	Salary           string    `gorm:"not null"`
	OrganizationName string    `gorm:"not null;index"`
	PosterName       string    `gorm:"not null"`
	PosterEmail      string    `gorm:"not null"`
	Requirements     []string  `gorm:"serializer:json;type:jsonb"`
	Benefits         []string  `gorm:"serializer:json;type:jsonb"`
	CreatedAt        time.Time `gorm:"<-:create;not null;index"`
}

func (jobRow) TableName() string {
	return "jobs"
}

func (row *jobRow) toModel() models.Job {
	return models.Job{
		ID:             row.ID,
		JobTitle:       row.JobTitle,
		JobDescription: row.JobDescription,
		Location:       row.Location,
		JobType:        models.JobType(row.JobType),
		Salary:         row.Salary,
		Organization:   models.Organization{Name: row.OrganizationName},
		Poster:         models.Poster{Name: row.PosterName, Email: row.PosterEmail},
		Requirements:   row.Requirements,
		Benefits:       row.Benefits,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}

type PostgresJobRepository struct {
	conn   *database.Connector[*gorm.DB]
	logger *zap.Logger
}

func NewPostgresJobRepository(conn *database.Connector[*gorm.DB], logger *zap.Logger) *PostgresJobRepository {
	return &PostgresJobRepository{conn: conn, logger: logger}
}

func (r *PostgresJobRepository) db(ctx context.Context) (*gorm.DB, error) {
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("connecting to postgres", err)
	}
	return db.WithContext(ctx), nil
}

func (r *PostgresJobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := prepare(job); err != nil {
		return err
	}

	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	row := &jobRow{
		ID:               uuid.NewString(),
		JobTitle:         job.JobTitle,
		JobDescription:   job.JobDescription,
		Location:         job.Location,
		JobType:          string(job.JobType),
		Salary:           job.Salary,
		OrganizationName: job.Organization.Name,
		PosterName:       job.Poster.Name,
		PosterEmail:      job.Poster.Email,
		Requirements:     job.Requirements,
		Benefits:         job.Benefits,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := db.Create(row).Error; err != nil {
		return apperrors.Internal("inserting job", err)
	}

	job.ID = row.ID
	job.CreatedAt = row.CreatedAt
	return nil
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, notFound()
	}

	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var row jobRow
	if err := db.First(&row, "id = ?", parsed.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, apperrors.Internal("finding job", err)
	}

	job := row.toModel()
	return &job, nil
}

func (r *PostgresJobRepository) FindAll(ctx context.Context) ([]models.Job, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []jobRow
	if err := db.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, apperrors.Internal("listing jobs", err)
	}

	jobs := make([]models.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].toModel())
	}
	return jobs, nil
}

func (r *PostgresJobRepository) Ping(ctx context.Context) error {
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresJobRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

var _ JobRepository = (*PostgresJobRepository)(nil)
