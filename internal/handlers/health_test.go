package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthRedisCheck(t *testing.T) {
	tests := []struct {
		name   string
		redis  Pinger
		status int
		body   string
	}{
		{
			name:   "redis up",
			redis:  pingerFunc(func(context.Context) error { return nil }),
			status: http.StatusOK,
			body:   `"redis":"ok"`,
		},
		{
			name:   "redis down",
			redis:  pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
			status: http.StatusServiceUnavailable,
			body:   `"redis":"down"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", NewHealthHandler(repository.NewMemoryJobRepository(), tt.redis).Check)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotContains(t, w.Body.String(), "refused")
		})
	}
}
