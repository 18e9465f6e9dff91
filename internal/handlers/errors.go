package handlers

import (
	"errors"
	"net/http"

	"bms_telemetry/internal/service"

	"github.com/gin-gonic/gin"
)

// Client facing messages; storage details never leave the server.
const (
	errInternal        = "Internal server error"
	errInvalidMetric   = "Invalid metric"
	errInvalidType     = "Invalid event type"
	errInvalidHours    = "Invalid hours"
	errInvalidID       = "Invalid id"
	errInvalidRequest  = "Invalid request"
	errBatteryNotFound = "Battery not found"
	errNoExportData    = "No data to export for this battery"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", requestID(c)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// notFoundMsg is the body used for service.ErrNotFound.
func (h *Handler) respondServiceError(c *gin.Context, err error, notFoundMsg, logKey string, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrInvalidMetric):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidMetric})
	case errors.Is(err, service.ErrInvalidEventType):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidType})
	case errors.Is(err, service.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidHours})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}
