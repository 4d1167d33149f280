// Package handler exposes the HTTP surface over gin.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/venuebook/venuebook/internal/domain"
	"github.com/venuebook/venuebook/pkg/logger"
	"github.com/venuebook/venuebook/pkg/response"
)

// handleError maps domain errors onto the HTTP error taxonomy. Anything
// unrecognized is logged and reported as a generic 500 without leaking
// internals.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, err.Error())
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, err.Error())
	case domain.IsForbiddenError(err):
		response.Error(c, http.StatusForbidden, err.Error())
	case domain.IsUnauthenticatedError(err):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case domain.IsUnavailableError(err):
		response.Error(c, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Error())
	default:
		logger.Get().Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
