package handlers

import (
	"net/http"

	"simcha/internal/models"

	"github.com/gin-gonic/gin"
)

// RSVPLogin - POST /api/rsvp/login
// Resolves a name + phone to a guest record. An unknown phone returns a
// 409 with confirm_required until the caller repeats the request with
// confirm_new set; only then is a record created.
func (h *Handlers) RSVPLogin(c *gin.Context) {
	var req models.RSVPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, created, err := h.services.RSVP.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"guest": guest, "created": created})
}

// RSVPAttendance - PATCH /api/rsvp/attendance
func (h *Handlers) RSVPAttendance(c *gin.Context) {
	var req models.RSVPAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.services.RSVP.SetAttendance(c.Request.Context(), req.GuestID, req.Coming)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}

// RSVPParty - PATCH /api/rsvp/party
// Saves the declared party details for an attending guest.
func (h *Handlers) RSVPParty(c *gin.Context) {
	var req models.RSVPPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.services.RSVP.SaveParty(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}
