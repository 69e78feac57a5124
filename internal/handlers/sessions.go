package handlers

import (
	"net/http"
	"strconv"

	"simcha/internal/models"

	"github.com/gin-gonic/gin"
)

func guestIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("guestID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guest id"})
		return 0, false
	}
	return id, true
}

// StartSession - POST /api/admin/sessions/:guestID
// Opens (or reopens) an editing session at the details stage.
func (h *Handlers) StartSession(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	resp, err := h.services.Lifecycle.Start(c.Request.Context(), guestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SaveSessionDetails - PUT /api/admin/sessions/:guestID/details
// Saves only the changed fields and advances to the seats stage when the
// guest is attending with a positive party count.
func (h *Handlers) SaveSessionDetails(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	var req models.SessionDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Lifecycle.SaveDetails(c.Request.Context(), guestID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.invalidateTableCache(c)
	c.JSON(http.StatusOK, resp)
}

// SessionTables - GET /api/admin/sessions/:guestID/tables
// The seat picker view for the seats stage: tables in the guest's area
// with free counts computed for that guest.
func (h *Handlers) SessionTables(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	tables, err := h.services.Lifecycle.ListTables(c.Request.Context(), guestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tables)
}

// ConfirmSession - POST /api/admin/sessions/:guestID/confirm
// Seats the whole party at the chosen table and moves to confirmed.
func (h *Handlers) ConfirmSession(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	var req models.SessionConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Lifecycle.Confirm(c.Request.Context(), guestID, req.Area, req.TableNumber)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.invalidateTableCache(c)
	c.JSON(http.StatusOK, resp)
}

// SessionBack - POST /api/admin/sessions/:guestID/back
// Returns from the seats stage to details. Held seats stay held.
func (h *Handlers) SessionBack(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	resp, err := h.services.Lifecycle.Back(c.Request.Context(), guestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// EndSession - DELETE /api/admin/sessions/:guestID
// Drops the session state. Guest record and seats are untouched.
func (h *Handlers) EndSession(c *gin.Context) {
	guestID, ok := guestIDParam(c)
	if !ok {
		return
	}

	h.services.Lifecycle.Reset(guestID)
	c.Status(http.StatusNoContent)
}
