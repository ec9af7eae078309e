package metrics

import coremetrics "github.com/avstation/stationd/core/metrics"

// MultiSink fans station events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAdmission forwards the admission to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAdmission(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSession forwards completed sessions to all sinks.
func (m *MultiSink) RecordSession(ev coremetrics.SessionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSession(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordStationState forwards occupancy snapshots when supported by the sink.
func (m *MultiSink) RecordStationState(ev coremetrics.StationStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.StationStateRecorder); ok {
			if err := rec.RecordStationState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRevenue forwards revenue totals when supported by the sink.
func (m *MultiSink) RecordRevenue(total float64) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RevenueRecorder); ok {
			if err := rec.RecordRevenue(total); err != nil {
				return err
			}
		}
	}
	return nil
}
