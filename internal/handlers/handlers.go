package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"simcha/internal/apperr"
	"simcha/internal/cache"
	"simcha/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// handleServiceError translates service-layer errors into HTTP responses.
// Validation and capacity failures carry their detail out; anything
// unrecognized is logged and hidden behind a 500.
func (h *Handlers) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})

	case apperr.IsValidation(err):
		var ve *apperr.ValidationError
		errors.As(err, &ve)
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})

	case apperr.IsCapacity(err):
		var ce *apperr.CapacityError
		errors.As(err, &ce)
		c.JSON(http.StatusConflict, gin.H{
			"error":     ce.Error(),
			"available": ce.Available,
			"requested": ce.Requested,
		})

	case errors.Is(err, apperr.ErrInvalidStage):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, apperr.ErrPhoneUnconfirmed):
		c.JSON(http.StatusConflict, gin.H{
			"error":            err.Error(),
			"confirm_required": true,
		})

	default:
		slog.Error("Request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// invalidateTableCache drops the cached table overviews after any change
// to seat ownership or layout. Cache trouble never fails the request.
func (h *Handlers) invalidateTableCache(c *gin.Context) {
	if h.valkeyClient == nil {
		return
	}
	if err := h.valkeyClient.InvalidateTables(c.Request.Context()); err != nil {
		slog.Warn("Failed to invalidate table cache", "error", err)
	}
}
