package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/httputil"
	"github.com/jsfong/model-parser/internal/metrics"
	"github.com/jsfong/model-parser/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeUnprocessableModel = "unprocessable_model"
	ErrCodeInternalError      = "internal_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto its HTTP status. Only
// unexpected errors are logged at error level; their text is not exposed.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, action string) {
	switch {
	case errors.Is(err, models.ErrModelNotFound), errors.Is(err, models.ErrElementNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, models.ErrDecode), errors.Is(err, models.ErrParse), errors.Is(err, models.ErrGraphBuild):
		log.WithError(err).WithField("model_id", c.Param("id")).Warn(action)
		respondError(c, http.StatusUnprocessableEntity, ErrCodeUnprocessableModel, err.Error())
	default:
		log.WithError(err).WithField("model_id", c.Param("id")).Error(action)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
