package model

import (
	"fmt"
	"strings"
	"time"
)

// VehicleType enumerates the supported vehicle categories. Each category
// carries a typical battery capacity and a priority modifier used by the
// waitlist ordering.
type VehicleType int

const (
	Sedan VehicleType = iota
	SUV
	Truck
	Bus
)

type typeInfo struct {
	name        string
	capacityKWh float64
	modifier    int
}

var vehicleTypes = [...]typeInfo{
	Sedan: {"Sedan", 60, 1},
	SUV:   {"SUV", 80, 1},
	Truck: {"Truck", 100, 2},
	Bus:   {"Bus", 150, 3},
}

func (t VehicleType) valid() bool {
	return t >= Sedan && t <= Bus
}

// String returns the display name of the category.
func (t VehicleType) String() string {
	if !t.valid() {
		return "Unknown"
	}
	return vehicleTypes[t].name
}

// TypicalCapacityKWh returns the usual battery size for the category.
func (t VehicleType) TypicalCapacityKWh() float64 {
	if !t.valid() {
		return 0
	}
	return vehicleTypes[t].capacityKWh
}

// PriorityModifier returns the additive waitlist penalty weight for the
// category. Larger vehicle classes wait longer at equal charge levels.
func (t VehicleType) PriorityModifier() int {
	if !t.valid() {
		return 0
	}
	return vehicleTypes[t].modifier
}

// ParseVehicleType resolves a category by its display name,
// case-insensitively.
func ParseVehicleType(s string) (VehicleType, error) {
	for t, info := range vehicleTypes {
		if strings.EqualFold(info.name, s) {
			return VehicleType(t), nil
		}
	}
	return 0, fmt.Errorf("unknown vehicle type %q", s)
}

// Vehicle represents an autonomous vehicle requesting a charging session.
// The charge level is mutated only through AddCharge, which keeps it within
// [0, BatteryKWh].
type Vehicle struct {
	ID             string
	Type           VehicleType
	BatteryKWh     float64
	HasReservation bool
	ArrivalTime    time.Time
	ChargingStart  time.Time
	ChargingEnd    time.Time

	charge float64
}

// NewVehicle creates a vehicle. The battery capacity must be positive; the
// initial charge is clamped into [0, capacity].
func NewVehicle(id string, t VehicleType, capacityKWh, initialCharge float64, hasReservation bool) (*Vehicle, error) {
	if id == "" {
		return nil, fmt.Errorf("vehicle id is required")
	}
	if !t.valid() {
		return nil, fmt.Errorf("invalid vehicle type %d", t)
	}
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("battery capacity must be positive, got %.2f", capacityKWh)
	}
	v := &Vehicle{
		ID:             id,
		Type:           t,
		BatteryKWh:     capacityKWh,
		HasReservation: hasReservation,
		ArrivalTime:    time.Now(),
	}
	v.charge = clamp(initialCharge, 0, capacityKWh)
	return v, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// CurrentCharge returns the charge level in kWh.
func (v *Vehicle) CurrentCharge() float64 { return v.charge }

// AddCharge adds energy to the battery, clamped to its capacity. Negative
// amounts are ignored.
func (v *Vehicle) AddCharge(kwh float64) {
	if kwh <= 0 {
		return
	}
	v.charge = clamp(v.charge+kwh, 0, v.BatteryKWh)
}

// RequiredCharge returns the energy in kWh needed to fill the battery.
func (v *Vehicle) RequiredCharge() float64 {
	return v.BatteryKWh - v.charge
}

// ChargePercent returns the charge level as a percentage of capacity.
func (v *Vehicle) ChargePercent() float64 {
	return v.charge / v.BatteryKWh * 100
}

// Priority computes the waitlist score for the vehicle. Lower scores are
// served sooner. A reservation always scores 0 and pre-empts every
// non-reserved vehicle; otherwise emptier batteries rank ahead, with the
// category modifier as an additive penalty. The score is recomputed on every
// call and never cached.
func (v *Vehicle) Priority() int {
	if v.HasReservation {
		return 0
	}
	return int(v.ChargePercent()) + v.Type.PriorityModifier()*10
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle(%s, %s, %.1f%%)", v.ID, v.Type, v.ChargePercent())
}
