package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type reservationRequest struct {
	VehicleID     string    `json:"vehicle_id" binding:"required"`
	ReservedTime  time.Time `json:"reserved_time"`
	DurationHours float64   `json:"duration_hours"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ReservedTime.IsZero() {
		req.ReservedTime = time.Now()
	}
	if req.DurationHours <= 0 {
		req.DurationHours = 1
	}
	res, err := h.reservations.Create(req.VehicleID, req.ReservedTime, req.DurationHours)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

// CancelReservation handles DELETE /api/reservations/:id.
func (h *Handler) CancelReservation(c *gin.Context) {
	id := c.Param("id")
	if !h.reservations.Cancel(id) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "cancelled": true})
}

// ListReservations handles GET /api/reservations.
func (h *Handler) ListReservations(c *gin.Context) {
	c.JSON(http.StatusOK, h.reservations.ActiveReservations())
}
