package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/avstation/stationd/core/metrics"
)

// PromSink records station events as Prometheus metrics.
type PromSink struct {
	admissions  *prometheus.CounterVec
	sessions    *prometheus.CounterVec
	energy      prometheus.Counter
	revenue     prometheus.Gauge
	queueDepth  prometheus.Gauge
	utilization prometheus.Gauge
}

// NewPromSink registers the station metrics on the default Prometheus
// registerer. The metrics server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "station_admissions_total",
			Help: "Admission requests by category and outcome",
		}, []string{"category", "outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "station_sessions_completed_total",
			Help: "Charging sessions completed by category",
		}, []string{"category"}),
		energy: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "station_energy_delivered_kwh_total",
			Help: "Total energy delivered across completed sessions",
		}),
		revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "station_revenue_total",
			Help: "Cumulative revenue recorded by the billing engine",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "station_queue_depth",
			Help: "Vehicles currently on the waitlist",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "station_utilization_percent",
			Help: "Occupied slots as a percentage of total slots",
		}),
	}

	collectors := []prometheus.Collector{
		s.admissions, s.sessions, s.energy, s.revenue, s.queueDepth, s.utilization,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.admissions = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				s.sessions = are.ExistingCollector.(*prometheus.CounterVec)
			case 2:
				s.energy = are.ExistingCollector.(prometheus.Counter)
			case 3:
				s.revenue = are.ExistingCollector.(prometheus.Gauge)
			case 4:
				s.queueDepth = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.utilization = are.ExistingCollector.(prometheus.Gauge)
			}
		}
	}
	return s, nil
}

// RecordAdmission increments the admission counter.
func (s *PromSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	s.admissions.WithLabelValues(ev.Category, string(ev.Outcome)).Inc()
	return nil
}

// RecordSession counts the session and accumulates the delivered energy.
func (s *PromSink) RecordSession(ev coremetrics.SessionEvent) error {
	s.sessions.WithLabelValues(ev.Category).Inc()
	s.energy.Add(ev.EnergyKWh)
	return nil
}

// RecordStationState updates the occupancy gauges.
func (s *PromSink) RecordStationState(ev coremetrics.StationStateEvent) error {
	s.queueDepth.Set(float64(ev.QueueDepth))
	s.utilization.Set(ev.Utilization)
	return nil
}

// RecordRevenue sets the revenue gauge.
func (s *PromSink) RecordRevenue(total float64) error {
	s.revenue.Set(total)
	return nil
}
