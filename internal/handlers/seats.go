package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"simcha/internal/cache"
	"simcha/internal/models"

	"github.com/gin-gonic/gin"
)

// ListSeats - GET /api/seats?area=&owner=
func (h *Handlers) ListSeats(c *gin.Context) {
	var ownerID *int64
	if raw := c.Query("owner"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
			return
		}
		ownerID = &id
	}

	seats, err := h.services.Tables.ListSeats(c.Request.Context(), c.Query("area"), ownerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, seats)
}

// ListTables - GET /api/tables?area=&guest=
// The table overview is cached per area, but only for the neutral view:
// a guest parameter changes the free counts, so those requests always go
// to the database.
func (h *Handlers) ListTables(c *gin.Context) {
	area := c.Query("area")

	var forGuest int64
	if raw := c.Query("guest"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guest id"})
			return
		}
		forGuest = id
	}

	useCache := forGuest == 0 && h.valkeyClient != nil

	if useCache {
		raw, err := h.valkeyClient.GetTables(c.Request.Context(), area)
		if err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
		if !cache.IsMiss(err) {
			slog.Warn("Table cache read failed", "error", err)
		}
	}

	tables, err := h.services.Tables.ListTables(c.Request.Context(), area, forGuest)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if useCache {
		if data, err := json.Marshal(tables); err == nil {
			if err := h.valkeyClient.SetTables(c.Request.Context(), area, data); err != nil {
				slog.Warn("Table cache write failed", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, tables)
}

// OpenTable - POST /api/tables
// Adds the next numbered table to an area as a block of free seats.
func (h *Handlers) OpenTable(c *gin.Context) {
	var req models.OpenTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seats, err := h.services.Tables.OpenTable(c.Request.Context(), req.Area, req.Capacity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.invalidateTableCache(c)
	c.JSON(http.StatusCreated, seats)
}

// AssignSeats - PATCH /api/seats/assign
// Seats the guest's whole declared party at one table, releasing any
// seats held elsewhere.
func (h *Handlers) AssignSeats(c *gin.Context) {
	var req models.AssignSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, seats, err := h.services.Allocation.AssignToTable(
		c.Request.Context(), req.GuestID, req.Area, req.TableNumber)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.invalidateTableCache(c)
	c.JSON(http.StatusOK, gin.H{"guest": guest, "seats": seats})
}

// ReleaseSeats - PATCH /api/seats/release
// Frees every seat the guest holds. Releasing a guest with no seats is a
// successful no-op.
func (h *Handlers) ReleaseSeats(c *gin.Context) {
	var req models.ReleaseSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	released, err := h.services.Allocation.ReleaseArea(c.Request.Context(), req.GuestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.invalidateTableCache(c)
	c.JSON(http.StatusOK, gin.H{"released": len(released), "seat_ids": released})
}
