// Package reservation manages advance slot reservations. The only coupling
// to the orchestration core is the vehicle's reservation flag, which the
// waitlist uses for pre-emption; everything else here is bookkeeping.
package reservation

import (
	"fmt"
	"sync"
	"time"

	"github.com/avstation/stationd/core/logger"
)

// GracePeriod is how long after the reserved time a reservation stays
// claimable before it expires.
const GracePeriod = 15 * time.Minute

// Reservation is one advance booking for a vehicle.
type Reservation struct {
	ID            string    `json:"reservation_id"`
	VehicleID     string    `json:"vehicle_id"`
	ReservedTime  time.Time `json:"reserved_time"`
	DurationHours float64   `json:"duration_hours"`
	CreatedAt     time.Time `json:"created_at"`
	Active        bool      `json:"active"`
	Fulfilled     bool      `json:"fulfilled"`
}

// Expired reports whether the reservation's grace period has passed.
func (r Reservation) Expired() bool {
	return time.Now().After(r.ReservedTime.Add(GracePeriod))
}

// Stats summarizes the reservation book.
type Stats struct {
	Total     int `json:"total_reservations"`
	Active    int `json:"active_reservations"`
	Fulfilled int `json:"fulfilled_reservations"`
}

// Service owns the reservation book. Safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	counter   int
	byID      map[string]*Reservation
	byVehicle map[string]string
	log       logger.Logger
}

// NewService creates an empty reservation book.
func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		byID:      make(map[string]*Reservation),
		byVehicle: make(map[string]string),
		log:       log,
	}
}

// Create books a reservation for the vehicle. A vehicle can hold at most one
// active reservation at a time.
func (s *Service) Create(vehicleID string, reservedTime time.Time, durationHours float64) (Reservation, error) {
	if vehicleID == "" {
		return Reservation{}, fmt.Errorf("vehicle id is required")
	}
	if durationHours <= 0 {
		durationHours = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byVehicle[vehicleID]; ok {
		if r := s.byID[id]; r != nil && r.Active && !r.Expired() {
			return Reservation{}, fmt.Errorf("vehicle %s already has an active reservation %s", vehicleID, id)
		}
	}

	s.counter++
	r := &Reservation{
		ID:            fmt.Sprintf("RES-%06d", s.counter),
		VehicleID:     vehicleID,
		ReservedTime:  reservedTime,
		DurationHours: durationHours,
		CreatedAt:     time.Now(),
		Active:        true,
	}
	s.byID[r.ID] = r
	s.byVehicle[vehicleID] = r.ID
	s.log.Infof("created reservation %s for %s at %s", r.ID, vehicleID, reservedTime.Format(time.RFC3339))
	return *r, nil
}

// Cancel deactivates the reservation. It reports whether it was found.
func (s *Service) Cancel(reservationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel(reservationID)
}

func (s *Service) cancel(reservationID string) bool {
	r, ok := s.byID[reservationID]
	if !ok || !r.Active {
		return false
	}
	r.Active = false
	// Only unlink the vehicle if this reservation is still the one on
	// file; a newer booking must keep its link.
	if s.byVehicle[r.VehicleID] == reservationID {
		delete(s.byVehicle, r.VehicleID)
	}
	s.log.Infof("cancelled reservation %s", reservationID)
	return true
}

// Lookup returns the vehicle's active, unexpired reservation if any. The
// admission path uses this to set the vehicle's reservation flag.
func (s *Service) Lookup(vehicleID string) (Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byVehicle[vehicleID]
	if !ok {
		return Reservation{}, false
	}
	r := s.byID[id]
	if r == nil || !r.Active || r.Expired() {
		return Reservation{}, false
	}
	return *r, true
}

// Fulfill marks the reservation consumed when its vehicle starts charging.
func (s *Service) Fulfill(reservationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[reservationID]
	if !ok || !r.Active {
		return false
	}
	r.Fulfilled = true
	r.Active = false
	if s.byVehicle[r.VehicleID] == reservationID {
		delete(s.byVehicle, r.VehicleID)
	}
	s.log.Infof("fulfilled reservation %s", reservationID)
	return true
}

// CleanupExpired cancels every active reservation past its grace period and
// returns how many were removed.
func (s *Service) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for id, r := range s.byID {
		if r.Active && r.Expired() {
			s.cancel(id)
			expired++
		}
	}
	return expired
}

// ActiveReservations lists all active, unexpired reservations.
func (s *Service) ActiveReservations() []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Reservation
	for _, r := range s.byID {
		if r.Active && !r.Expired() {
			out = append(out, *r)
		}
	}
	return out
}

// Stats summarizes the reservation book.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.byID)}
	for _, r := range s.byID {
		if r.Active && !r.Expired() {
			st.Active++
		}
		if r.Fulfilled {
			st.Fulfilled++
		}
	}
	return st
}
