// Package app assembles the station, billing, reservations, sinks and the
// HTTP surface into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/avstation/stationd/api"
	"github.com/avstation/stationd/config"
	"github.com/avstation/stationd/core/billing"
	coremetrics "github.com/avstation/stationd/core/metrics"
	"github.com/avstation/stationd/core/reservation"
	"github.com/avstation/stationd/core/station"
	"github.com/avstation/stationd/infra/logger"
	"github.com/avstation/stationd/infra/metrics"
	infranotify "github.com/avstation/stationd/infra/notify"
	"github.com/avstation/stationd/internal/eventbus"
)

// Service orchestrates the station and its collaborators.
type Service struct {
	Station      *station.Station
	Billing      *billing.Engine
	Reservations *reservation.Service
	History      *infranotify.HistorySink

	cfg      *config.Config
	bus      *eventbus.Bus[station.Event]
	sink     coremetrics.MetricsSink
	mqttSink *infranotify.MQTTSink
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.NewWithLevel("service", cfg.Logging.Level)

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	eng, err := billing.NewEngine(cfg.Billing)
	if err != nil {
		return nil, fmt.Errorf("billing engine: %w", err)
	}

	st, err := station.New(cfg.Station, logger.NewWithLevel("station", cfg.Logging.Level))
	if err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}
	bus := eventbus.New[station.Event](64)
	st.SetEventBus(bus)
	st.SetRevenueProvider(func() float64 { return eng.RevenueStats().TotalRevenue })
	if sink != nil {
		st.SetMetricsSink(sink)
	}

	svc := &Service{
		Station:      st,
		Billing:      eng,
		Reservations: reservation.NewService(logger.NewWithLevel("reservations", cfg.Logging.Level)),
		History:      infranotify.NewHistorySink(cfg.Notify.HistoryLimit),
		cfg:          cfg,
		bus:          bus,
		sink:         sink,
		log:          log,
	}
	if cfg.Notify.MQTTEnabled {
		mqttSink, err := infranotify.NewMQTTSink(cfg.Notify.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt sink: %w", err)
		}
		svc.mqttSink = mqttSink
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Station.Start(ctx)

	if err := s.Station.AttachSink(s.History); err != nil {
		return fmt.Errorf("attach history sink: %w", err)
	}
	if s.cfg.Notify.LogEnabled {
		if err := s.Station.AttachSink(infranotify.NewLogSink("notifications")); err != nil {
			return fmt.Errorf("attach log sink: %w", err)
		}
	}
	if s.mqttSink != nil {
		if err := s.Station.AttachSink(s.mqttSink); err != nil {
			return fmt.Errorf("attach mqtt sink: %w", err)
		}
	}

	go s.consumeEvents(ctx)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Ticker.Enabled {
		go s.runTicker(ctx)
	}

	if s.cfg.API.Enabled {
		handler := api.NewHandler(s.Station, s.Billing, s.Reservations, s.History, s.log)
		router := api.NewRouter(handler, rate.Limit(s.cfg.API.RateLimit), s.cfg.API.RateBurst)
		srv := &http.Server{Addr: s.cfg.API.Addr, Handler: router}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Errorf("api shutdown: %v", err)
			}
		}()
		s.log.Infof("API listening on %s", s.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	<-ctx.Done()
	return nil
}

// consumeEvents logs the station event stream and forwards revenue totals to
// the metrics sink after each release.
func (s *Service) consumeEvents(ctx context.Context) {
	events, cancel := s.bus.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.log.Debugf("event %s: %+v", station.Name(ev), ev)
			if _, released := ev.(station.VehicleReleased); released && s.sink != nil {
				if rec, ok := s.sink.(coremetrics.RevenueRecorder); ok {
					if err := rec.RecordRevenue(s.Billing.RevenueStats().TotalRevenue); err != nil {
						s.log.Warnf("revenue metric: %v", err)
					}
				}
			}
		}
	}
}

// runTicker periodically advances every occupied slot by the configured
// simulated step. Expired reservations are swept on the same cadence.
func (s *Service) runTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.cfg.Ticker.IntervalSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Station.Tick(s.cfg.Ticker.StepHours); err != nil {
				s.log.Warnf("tick skipped: %v", err)
			}
			if n := s.Reservations.CleanupExpired(); n > 0 {
				s.log.Infof("expired %d reservations", n)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttSink != nil {
		s.mqttSink.Disconnect()
	}
	s.bus.Close()
	return nil
}
