package station

import (
	"time"

	"github.com/avstation/stationd/core/model"
)

// AdmitResult reports where an admitted vehicle ended up: a slot, or a
// position on the waitlist.
type AdmitResult struct {
	VehicleID string `json:"vehicle_id"`
	SlotID    string `json:"slot_id,omitempty"`
	Queued    bool   `json:"queued"`
	QueueRank int    `json:"queue_rank"`
}

// ReleaseResult carries the session figures captured at release time, before
// the slot reset them. The caller bills the returned vehicle from these.
type ReleaseResult struct {
	VehicleID     string  `json:"vehicle_id"`
	DurationHours float64 `json:"duration_hours"`
	EnergyKWh     float64 `json:"energy_kwh"`

	Vehicle *model.Vehicle `json:"-"`
}

// Snapshot is the aggregate read-only station view.
type Snapshot struct {
	StationID      string    `json:"station_id"`
	Location       string    `json:"location"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	OccupiedSlots  int       `json:"occupied_slots"`
	Utilization    float64   `json:"utilization_rate"`
	QueueDepth     int       `json:"queue_depth"`
	VehiclesServed int       `json:"total_vehicles_served"`
	TotalRevenue   float64   `json:"total_revenue"`
	SinkCount      int       `json:"observers_count"`
	Time           time.Time `json:"time"`
}

// SlotStatus is the per-slot view.
type SlotStatus struct {
	SlotID           string  `json:"slot_id"`
	PowerKW          float64 `json:"power_kw"`
	Occupied         bool    `json:"occupied"`
	VehicleID        string  `json:"vehicle_id,omitempty"`
	Category         string  `json:"category,omitempty"`
	ChargePercent    float64 `json:"charge_percent,omitempty"`
	SessionEnergyKWh float64 `json:"session_energy_kwh"`
	DurationHours    float64 `json:"duration_hours"`
	Complete         bool    `json:"complete"`
}

// QueueEntry is one waitlisted vehicle, in serving order.
type QueueEntry struct {
	VehicleID      string  `json:"vehicle_id"`
	Category       string  `json:"category"`
	ChargePercent  float64 `json:"charge_percent"`
	Priority       int     `json:"priority"`
	HasReservation bool    `json:"has_reservation"`
}
