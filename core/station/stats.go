package station

import "gonum.org/v1/gonum/stat"

// SessionRecord is one completed charging session as captured at release.
type SessionRecord struct {
	VehicleID     string
	SlotID        string
	DurationHours float64
	EnergyKWh     float64
}

// SessionLedger accumulates completed sessions for reporting. It is owned by
// the station goroutine and needs no locking.
type SessionLedger struct {
	durations []float64
	energies  []float64
}

// NewSessionLedger creates an empty ledger.
func NewSessionLedger() *SessionLedger { return &SessionLedger{} }

// Record appends a completed session.
func (l *SessionLedger) Record(rec SessionRecord) {
	l.durations = append(l.durations, rec.DurationHours)
	l.energies = append(l.energies, rec.EnergyKWh)
}

// SessionReport aggregates duration and energy statistics over all completed
// sessions. Standard deviations are 0 for fewer than two sessions.
type SessionReport struct {
	Sessions        int     `json:"sessions"`
	TotalEnergyKWh  float64 `json:"total_energy_kwh"`
	MeanDurationH   float64 `json:"mean_duration_hours"`
	StdDevDurationH float64 `json:"stddev_duration_hours"`
	MeanEnergyKWh   float64 `json:"mean_energy_kwh"`
	StdDevEnergyKWh float64 `json:"stddev_energy_kwh"`
}

// Report derives the aggregate view.
func (l *SessionLedger) Report() SessionReport {
	rep := SessionReport{Sessions: len(l.durations)}
	if rep.Sessions == 0 {
		return rep
	}
	for _, e := range l.energies {
		rep.TotalEnergyKWh += e
	}
	rep.MeanDurationH = stat.Mean(l.durations, nil)
	rep.MeanEnergyKWh = stat.Mean(l.energies, nil)
	if rep.Sessions > 1 {
		rep.StdDevDurationH = stat.StdDev(l.durations, nil)
		rep.StdDevEnergyKWh = stat.StdDev(l.energies, nil)
	}
	return rep
}
