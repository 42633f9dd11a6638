package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/dtos"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/services"
	"go.uber.org/zap"
)

const (
	createJobFailedMessage = "An error occurred while posting the job. Please try again later."
	getJobFailedMessage    = "An internal server error occurred while retrieving the job. Please try again later."
	listJobsFailedMessage  = "Failed to fetch jobs"
	invalidJSONMessage     = "Invalid JSON format."
)

type JobHandler struct {
	JobService *services.JobService
	logger     *zap.Logger
}

func NewJobHandler(j *services.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		JobService: j,
		logger:     logger,
	}
}

// CreateJob is POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("create job rejected: undecodable body", zap.Error(err))
		writeErr(c, http.StatusBadRequest, ErrCodeInvalidRequest, invalidJSONMessage)
		return
	}

	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		h.logFailure("create job", err)
		writeDomainErr(c, err, createJobFailedMessage)
		return
	}
	c.JSON(http.StatusCreated, dtos.CreateJobResponse{NewJob: job})
}

// GetJob is GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.JobService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logFailure("get job", err, zap.String("id", c.Param("id")))
		writeDomainErr(c, err, getJobFailedMessage)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs is GET /api/organization (and its /api/jobs alias)
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("list jobs failed", zap.Error(err))
		writeErr(c, http.StatusInternalServerError, ErrCodeInternal, listJobsFailedMessage)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

// client mistakes are logged at info, everything else at error
func (h *JobHandler) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	de, ok := apperrors.As(err)
	if ok && (de.Type == apperrors.ErrTypeInvalidInput || de.Type == apperrors.ErrTypeNotFound) {
		h.logger.Info(op+" rejected", fields...)
		return
	}
	h.logger.Error(op+" failed", fields...)
}
