package client

import (
	"context"
	"sync"

	"github.com/justsurfingit/jobboard/internal/models"
)

// State is what a Resource exposes to views.
type State[K comparable, T any] struct {
	Key     K
	Loading bool
	Err     error
	Data    T
}

type FetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Resource loads one value at a time. Every Load starts a new generation and
// cancels the previous in-flight fetch; a result that arrives for an older
// generation is dropped, so State never shows data for a superseded key.
// Share one Resource across the loads of a single long-lived view; a
// per-request Resource only ever sees one generation.
type Resource[K comparable, T any] struct {
	fetch FetchFunc[K, T]

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[K, T]
}

func NewResource[K comparable, T any](fetch FetchFunc[K, T]) *Resource[K, T] {
	return &Resource[K, T]{fetch: fetch}
}

// Load fetches key and blocks until the fetch finishes. It returns the
// resource state afterwards, which belongs to a newer Load if this one was
// superseded while in flight.
func (r *Resource[K, T]) Load(ctx context.Context, key K) State[K, T] {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	r.cancel = cancel
	if r.state.Key != key {
		var zero T
		r.state.Data = zero
	}
	r.state.Key = key
	r.state.Loading = true
	r.state.Err = nil
	r.mu.Unlock()

	data, err := r.fetch(ctx, key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return r.state
	}
	r.cancel = nil
	r.state.Loading = false
	r.state.Err = err
	if err == nil {
		r.state.Data = data
	} else {
		var zero T
		r.state.Data = zero
	}
	return r.state
}

func (r *Resource[K, T]) Snapshot() State[K, T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Jobs is the listing hook.
func (c *Client) Jobs() *Resource[struct{}, []models.Job] {
	return NewResource(func(ctx context.Context, _ struct{}) ([]models.Job, error) {
		return c.ListJobs(ctx)
	})
}

// Job is the detail hook, keyed by job id.
func (c *Client) Job() *Resource[string, *models.Job] {
	return NewResource(c.GetJob)
}
