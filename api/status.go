package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	infranotify "github.com/avstation/stationd/infra/notify"
)

// StationStatus handles GET /api/station/status.
func (h *Handler) StationStatus(c *gin.Context) {
	snap, err := h.station.Status()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Slots handles GET /api/slots.
func (h *Handler) Slots(c *gin.Context) {
	slots, err := h.station.Slots()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// Queue handles GET /api/queue, returning waitlisted vehicles in serving
// order.
func (h *Handler) Queue(c *gin.Context) {
	entries, err := h.station.QueueSnapshot()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// SessionReport handles GET /api/sessions/report.
func (h *Handler) SessionReport(c *gin.Context) {
	rep, err := h.station.SessionReport()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Notifications handles GET /api/notifications?n=50.
func (h *Handler) Notifications(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, []infranotify.HistoryEntry{})
		return
	}
	n := 50
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}
	c.JSON(http.StatusOK, h.history.Recent(n))
}
