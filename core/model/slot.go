package model

import (
	"errors"
	"fmt"
	"time"
)

// Charging completion is declared slightly below 100% to absorb floating
// point drift in the linear charging model.
const completeChargePercent = 99.0

var (
	// ErrSlotOccupied is returned when assigning to a slot that already
	// holds a vehicle.
	ErrSlotOccupied = errors.New("slot already occupied")
	// ErrSlotVacant is returned when releasing a slot with no vehicle.
	ErrSlotVacant = errors.New("slot is vacant")
)

// SlotState is the occupancy state of a charging slot.
type SlotState int

const (
	SlotAvailable SlotState = iota
	SlotOccupied
)

func (s SlotState) String() string {
	if s == SlotOccupied {
		return "Occupied"
	}
	return "Available"
}

// Slot is a single charging bay with a fixed power rating. A slot owns the
// occupancy relation: it references at most one vehicle, and holds one
// exactly when its state is Occupied.
type Slot struct {
	ID      string
	PowerKW float64

	state         SlotState
	vehicle       *Vehicle
	chargingStart time.Time
	sessionEnergy float64
}

// NewSlot creates an available slot. The power rating must be positive.
func NewSlot(id string, powerKW float64) (*Slot, error) {
	if id == "" {
		return nil, fmt.Errorf("slot id is required")
	}
	if powerKW <= 0 {
		return nil, fmt.Errorf("power rating must be positive, got %.2f", powerKW)
	}
	return &Slot{ID: id, PowerKW: powerKW}, nil
}

// State returns the occupancy state.
func (s *Slot) State() SlotState { return s.state }

// Occupied reports whether a vehicle is currently charging here.
func (s *Slot) Occupied() bool { return s.state == SlotOccupied }

// Vehicle returns the occupying vehicle, or nil when the slot is available.
func (s *Slot) Vehicle() *Vehicle { return s.vehicle }

// SessionEnergy returns the energy in kWh delivered during the current
// session.
func (s *Slot) SessionEnergy() float64 { return s.sessionEnergy }

// Assign binds the vehicle to the slot and stamps the charging start time.
// It fails with ErrSlotOccupied when the slot already holds a vehicle.
func (s *Slot) Assign(v *Vehicle) error {
	if s.state == SlotOccupied {
		return ErrSlotOccupied
	}
	now := time.Now()
	s.vehicle = v
	s.state = SlotOccupied
	s.chargingStart = now
	v.ChargingStart = now
	return nil
}

// TickCharge advances the charging session by the given duration and returns
// the energy delivered. Delivery is linear in power and time, capped by the
// vehicle's remaining capacity. A vacant slot delivers nothing.
func (s *Slot) TickCharge(durationHours float64) float64 {
	if s.state != SlotOccupied || durationHours <= 0 {
		return 0
	}
	delivered := s.PowerKW * durationHours
	if req := s.vehicle.RequiredCharge(); delivered > req {
		delivered = req
	}
	s.vehicle.AddCharge(delivered)
	s.sessionEnergy += delivered
	return delivered
}

// Complete reports whether the current session is finished: a vacant slot
// counts as complete, as does an occupied one whose vehicle reached the
// completion threshold.
func (s *Slot) Complete() bool {
	if s.state != SlotOccupied {
		return true
	}
	return s.vehicle.ChargePercent() >= completeChargePercent
}

// Release detaches the vehicle, stamps its charging end time, resets the
// session energy and returns the slot to Available. Releasing a vacant slot
// fails with ErrSlotVacant.
func (s *Slot) Release() (*Vehicle, error) {
	if s.state != SlotOccupied {
		return nil, ErrSlotVacant
	}
	v := s.vehicle
	v.ChargingEnd = time.Now()
	s.vehicle = nil
	s.state = SlotAvailable
	s.chargingStart = time.Time{}
	s.sessionEnergy = 0
	return v, nil
}

// SessionDuration returns the elapsed hours since charging started, or 0 for
// a vacant slot.
func (s *Slot) SessionDuration() float64 {
	if s.state != SlotOccupied {
		return 0
	}
	return time.Since(s.chargingStart).Hours()
}

func (s *Slot) String() string {
	if s.state == SlotOccupied {
		return fmt.Sprintf("Slot %s (%.0fkW): Occupied by %s", s.ID, s.PowerKW, s.vehicle.ID)
	}
	return fmt.Sprintf("Slot %s (%.0fkW): Available", s.ID, s.PowerKW)
}
