package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/dtos"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
)

const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnavailable    = "unavailable"
)

// writeErr sends { "error": message, "code": errCode }. An empty errCode is
// derived from the status.
func writeErr(c *gin.Context, status int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(status)
	}
	c.AbortWithStatusJSON(status, dtos.ErrorResponse{Error: message, Code: errCode})
}

func defaultErrCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// writeDomainErr maps err onto a status. Invalid input and not-found
// messages are returned as-is; anything else gets internalMsg.
func writeDomainErr(c *gin.Context, err error, internalMsg string) {
	de, ok := apperrors.As(err)
	if !ok {
		writeErr(c, http.StatusInternalServerError, ErrCodeInternal, internalMsg)
		return
	}
	switch de.Type {
	case apperrors.ErrTypeInvalidInput:
		writeErr(c, http.StatusBadRequest, ErrCodeInvalidRequest, de.Message)
	case apperrors.ErrTypeNotFound:
		writeErr(c, http.StatusNotFound, ErrCodeNotFound, "Job not found.")
	case apperrors.ErrTypeUnavailable:
		writeErr(c, http.StatusInternalServerError, ErrCodeUnavailable, internalMsg)
	default:
		writeErr(c, http.StatusInternalServerError, ErrCodeInternal, internalMsg)
	}
}
