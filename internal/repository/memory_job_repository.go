package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/jobboard/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryJobRepository keeps jobs in process memory. Suitable for local runs
// and tests; ids use the same 24-hex shape as the mongo backend.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
	now  func() time.Time
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[string]models.Job),
		now:  time.Now,
	}
}

func (r *MemoryJobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := prepare(job); err != nil {
		return err
	}

	job.ID = primitive.NewObjectID().Hex()
	job.CreatedAt = r.now().UTC()

	r.mu.Lock()
	r.jobs[job.ID] = clone(*job)
	r.mu.Unlock()
	return nil
}

func (r *MemoryJobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	r.mu.RLock()
	job, ok := r.jobs[strings.TrimSpace(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, notFound()
	}
	out := clone(job)
	return &out, nil
}

func (r *MemoryJobRepository) FindAll(ctx context.Context) ([]models.Job, error) {
	r.mu.RLock()
	jobs := make([]models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, clone(job))
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID > jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (r *MemoryJobRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryJobRepository) Close(ctx context.Context) error {
	return nil
}

func clone(job models.Job) models.Job {
	if job.Requirements != nil {
		job.Requirements = append([]string(nil), job.Requirements...)
	}
	if job.Benefits != nil {
		job.Benefits = append([]string(nil), job.Benefits...)
	}
	return job
}

var _ JobRepository = (*MemoryJobRepository)(nil)
