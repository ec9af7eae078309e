package station

// Event is a station lifecycle event published on the internal bus. The bus
// stream is best-effort and decoupled from the synchronous sink fan-out.
type Event interface {
	eventName() string
}

// VehicleAssigned is published when a vehicle takes a slot.
type VehicleAssigned struct {
	VehicleID string
	SlotID    string
}

// VehicleQueued is published when admission falls back to the waitlist.
type VehicleQueued struct {
	VehicleID string
	Rank      int
}

// ChargeProgress is published for every occupied slot on each tick.
type ChargeProgress struct {
	VehicleID     string
	SlotID        string
	ChargePercent float64
	DeliveredKWh  float64
}

// ChargingComplete is published when a vehicle reaches the completion
// threshold. The slot stays occupied until an explicit release.
type ChargingComplete struct {
	VehicleID string
	SlotID    string
}

// VehicleReleased is published when a slot is vacated.
type VehicleReleased struct {
	VehicleID     string
	SlotID        string
	DurationHours float64
	EnergyKWh     float64
}

func (VehicleAssigned) eventName() string  { return "vehicle_assigned" }
func (VehicleQueued) eventName() string    { return "vehicle_queued" }
func (ChargeProgress) eventName() string   { return "charge_progress" }
func (ChargingComplete) eventName() string { return "charging_complete" }
func (VehicleReleased) eventName() string  { return "vehicle_released" }

// Name returns a stable label for the event type, usable as a log or metric
// tag.
func Name(e Event) string {
	if e == nil {
		return "unknown"
	}
	return e.eventName()
}
