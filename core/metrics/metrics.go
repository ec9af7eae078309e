// Package metrics defines the observability contracts for the station
// service. Concrete sinks live under infra/metrics.
package metrics

import "time"

// AdmissionOutcome labels what happened to an admission request.
type AdmissionOutcome string

const (
	OutcomeAssigned AdmissionOutcome = "assigned"
	OutcomeQueued   AdmissionOutcome = "queued"
	OutcomeRejected AdmissionOutcome = "rejected"
)

// AdmissionEvent captures one admission decision.
type AdmissionEvent struct {
	VehicleID string
	Category  string
	Outcome   AdmissionOutcome
	SlotID    string
	QueueRank int
	Time      time.Time
}

// SessionEvent captures a completed charging session at release time.
type SessionEvent struct {
	VehicleID     string
	SlotID        string
	Category      string
	DurationHours float64
	EnergyKWh     float64
	Time          time.Time
}

// StationStateEvent is a periodic snapshot of station occupancy.
type StationStateEvent struct {
	StationID     string
	TotalSlots    int
	OccupiedSlots int
	QueueDepth    int
	Utilization   float64
	Time          time.Time
}

// MetricsSink records station events for observability purposes.
type MetricsSink interface {
	RecordAdmission(ev AdmissionEvent) error
	RecordSession(ev SessionEvent) error
}

// StationStateRecorder is implemented by sinks interested in occupancy
// snapshots.
type StationStateRecorder interface {
	RecordStationState(ev StationStateEvent) error
}

// RevenueRecorder is implemented by sinks tracking cumulative revenue.
type RevenueRecorder interface {
	RecordRevenue(total float64) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordAdmission(AdmissionEvent) error       { return nil }
func (NopSink) RecordSession(SessionEvent) error           { return nil }
func (NopSink) RecordStationState(StationStateEvent) error { return nil }
func (NopSink) RecordRevenue(float64) error                { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port" yaml:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled" yaml:"influx_enabled"`
	InfluxURL         string `json:"influx_url" yaml:"influx_url"`
	InfluxToken       string `json:"influx_token" yaml:"influx_token"`
	InfluxOrg         string `json:"influx_org" yaml:"influx_org"`
	InfluxBucket      string `json:"influx_bucket" yaml:"influx_bucket"`
}
