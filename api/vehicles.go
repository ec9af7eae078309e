package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avstation/stationd/core/billing"
	"github.com/avstation/stationd/core/model"
	"github.com/avstation/stationd/core/station"
)

type admitRequest struct {
	VehicleID      string  `json:"vehicle_id"`
	Category       string  `json:"category" binding:"required"`
	BatteryKWh     float64 `json:"battery_kwh"`
	CurrentCharge  float64 `json:"current_charge"`
	HasReservation bool    `json:"has_reservation"`
}

// AdmitVehicle handles POST /api/vehicles. The vehicle is assigned to a
// slot or queued; an active reservation for the vehicle grants it priority
// and is fulfilled once a slot is assigned.
func (h *Handler) AdmitVehicle(c *gin.Context) {
	var req admitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := model.ParseVehicleType(req.Category)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.VehicleID == "" {
		req.VehicleID = "AV-" + uuid.NewString()
	}
	if req.BatteryKWh == 0 {
		req.BatteryKWh = category.TypicalCapacityKWh()
	}

	var reservationID string
	if res, ok := h.reservations.Lookup(req.VehicleID); ok && !res.Expired() {
		req.HasReservation = true
		reservationID = res.ID
	}

	v, err := model.NewVehicle(req.VehicleID, category, req.BatteryKWh, req.CurrentCharge, req.HasReservation)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.station.Admit(v)
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	if result.SlotID != "" && reservationID != "" {
		h.reservations.Fulfill(reservationID)
	}
	c.JSON(http.StatusCreated, result)
}

type releaseResponse struct {
	station.ReleaseResult
	Invoice  billing.Invoice `json:"invoice"`
	Refilled string          `json:"refilled_vehicle_id,omitempty"`
}

// ReleaseVehicle handles DELETE /api/vehicles/:id. A charging vehicle is
// released and billed, then the freed slot is offered to the head of the
// waitlist. A queued vehicle is simply removed.
func (h *Handler) ReleaseVehicle(c *gin.Context) {
	vehicleID := c.Param("id")

	slots, err := h.station.Slots()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	var slotID string
	for _, s := range slots {
		if s.VehicleID == vehicleID {
			slotID = s.SlotID
			break
		}
	}

	if slotID == "" {
		removed, err := h.station.RemoveVehicle(vehicleID)
		if err != nil {
			h.abortStationError(c, err)
			return
		}
		if !removed {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "removed_from_queue": true})
		return
	}

	rel, err := h.station.Release(slotID)
	if err != nil {
		h.abortStationError(c, err)
		return
	}

	invoice := h.billing.GenerateInvoice(rel.Vehicle, rel.DurationHours, rel.EnergyKWh, h.billing.IsPeakHour(time.Now()))
	if err := h.billing.RecordPayment(rel.Vehicle, invoice.TotalCost); err != nil {
		h.log.Warnf("payment for %s not recorded: %v", rel.VehicleID, err)
	}

	resp := releaseResponse{ReleaseResult: rel, Invoice: invoice}
	if next, err := h.station.DequeueNext(); err == nil {
		if res, err := h.station.Admit(next); err == nil {
			resp.Refilled = res.VehicleID
			if r, ok := h.reservations.Lookup(next.ID); ok {
				h.reservations.Fulfill(r.ID)
			}
		} else {
			h.log.Errorf("refill of %s failed: %v", next.ID, err)
		}
	} else if !errors.Is(err, station.ErrQueueEmpty) {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type chargeRequest struct {
	DurationHours float64 `json:"duration_hours"`
}

// Charge handles POST /api/charge, advancing every occupied slot by the
// requested simulated duration.
func (h *Handler) Charge(c *gin.Context) {
	req := chargeRequest{DurationHours: 1}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DurationHours <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "duration_hours must be positive"})
		return
	}
	if err := h.station.Tick(req.DurationHours); err != nil {
		h.abortStationError(c, err)
		return
	}
	slots, err := h.station.Slots()
	if err != nil {
		h.abortStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duration_hours": req.DurationHours, "slots": slots})
}

func (h *Handler) abortStationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, station.ErrVehiclePresent):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, station.ErrSlotNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, station.ErrStationBusy):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
