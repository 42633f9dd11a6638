package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second, zap.NewNop()), &calls
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateJob(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dtos.CreateJobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, dtos.CreateJobResponse{NewJob: &models.Job{
			ID:           "64b7f0c2a1b2c3d4e5f60718",
			JobTitle:     req.Title,
			Organization: models.Organization{Name: req.OrganizationName},
		}})
	})

	job, err := c.CreateJob(context.Background(), &dtos.CreateJobRequest{Title: "Backend Engineer", OrganizationName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.JobTitle)
	assert.Equal(t, "Acme", job.Organization.Name)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		message string
	}{
		{name: "server message", status: http.StatusBadRequest, body: dtos.ErrorResponse{Error: "poster.email: Please enter a valid email address"}, message: "poster.email: Please enter a valid email address"},
		{name: "not found", status: http.StatusNotFound, body: dtos.ErrorResponse{Error: "Job not found."}, message: "Job not found."},
		{name: "no json body", status: http.StatusBadGateway, body: nil, message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.GetJob(context.Background(), "abc")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.NotEmpty(t, apiErr.Error())
			// no retries
			assert.EqualValues(t, 1, atomic.LoadInt32(calls))
		})
	}
}

func TestListJobsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/organization", r.URL.Path)
		_, _ = w.Write([]byte("null"))
	})

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, zap.NewNop())
	_, err := c.ListJobs(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	assert.NoError(t, c.Ping(context.Background()))

	down, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	})
	assert.Error(t, down.Ping(context.Background()))
}
