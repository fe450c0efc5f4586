package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudy/internal/domain/apperr"
)

// statusOf maps a service error onto an HTTP status and a client message.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrInvalidQuery),
		errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "storage temporarily unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, "internal error"
}

// respondError writes err to the client and logs the ones the client can't
// fix.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" error", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
