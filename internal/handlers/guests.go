package handlers

import (
	"net/http"
	"strconv"

	"simcha/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateGuest - POST /api/guests
func (h *Handlers) CreateGuest(c *gin.Context) {
	var req models.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.services.Guests.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewGuestResponse(*guest, 0))
}

// ListGuests - GET /api/guests?q=
// Matches the query against names and phone numbers; an empty query
// returns everyone.
func (h *Handlers) ListGuests(c *gin.Context) {
	guests, err := h.services.Guests.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	responses, err := h.services.Guests.Responses(c.Request.Context(), guests)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// GetGuest - GET /api/guests/:id
func (h *Handlers) GetGuest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guest id"})
		return
	}

	guest, err := h.services.Guests.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp, err := h.services.Guests.Response(c.Request.Context(), guest)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateGuest - PUT /api/guests/:id
// Sparse update: absent fields keep their stored values. The whole
// request is validated before anything is written.
func (h *Handlers) UpdateGuest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guest id"})
		return
	}

	var req models.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.services.Guests.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp, err := h.services.Guests.Response(c.Request.Context(), guest)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReserveList - GET /api/guests/reserve
// The admin worklist: everyone attending with a positive party count and
// no seats yet. Computed live on every call.
func (h *Handlers) ReserveList(c *gin.Context) {
	responses, err := h.services.Lifecycle.ReserveList(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}
