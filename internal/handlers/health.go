package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything /health can probe. The job repository and the redis
// cache both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /health with a store check and an optional Redis check.
type HealthHandler struct {
	store Pinger
	redis Pinger
}

// NewHealthHandler creates a health handler (redis optional).
func NewHealthHandler(store Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{store: store, redis: redis}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if err := h.store.Ping(ctx); err != nil {
		checks["database"] = "down"
		allOK = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "down"
			allOK = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !allOK {
		c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
