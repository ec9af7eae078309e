package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/avstation/stationd/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, limit rate.Limit, burst int) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	api.Use(mw.RateLimiter(limit, burst))
	{
		api.POST("/vehicles", h.AdmitVehicle)
		api.DELETE("/vehicles/:id", h.ReleaseVehicle)
		api.POST("/charge", h.Charge)

		api.GET("/station/status", h.StationStatus)
		api.GET("/slots", h.Slots)
		api.GET("/queue", h.Queue)
		api.GET("/sessions/report", h.SessionReport)
		api.GET("/notifications", h.Notifications)

		api.GET("/billing/stats", h.BillingStats)
		api.PUT("/billing/rates/:category", h.UpdateRate)

		api.POST("/reservations", h.CreateReservation)
		api.DELETE("/reservations/:id", h.CancelReservation)
		api.GET("/reservations", h.ListReservations)
	}

	return r
}
