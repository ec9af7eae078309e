package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/avstation/stationd/core/metrics"
	"github.com/avstation/stationd/infra/logger"
)

// InfluxSink writes station events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAdmission writes the admission outcome as a point.
func (s *InfluxSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("admission_event").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("category", ev.Category).
		AddTag("outcome", string(ev.Outcome)).
		AddTag("component", "station")
	if ev.SlotID != "" {
		p = p.AddTag("slot_id", ev.SlotID)
	}
	p = p.AddField("queue_rank", ev.QueueRank).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSession writes a completed charging session.
func (s *InfluxSink) RecordSession(ev coremetrics.SessionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("session_completed").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("category", ev.Category).
		AddTag("slot_id", ev.SlotID).
		AddTag("component", "station").
		AddField("energy_kwh", round3(ev.EnergyKWh)).
		AddField("duration_h", round3(ev.DurationHours)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStationState writes an occupancy snapshot of the station.
func (s *InfluxSink) RecordStationState(ev coremetrics.StationStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("station_state").
		AddTag("station_id", ev.StationID).
		AddTag("component", "station").
		AddField("occupied_slots", ev.OccupiedSlots).
		AddField("total_slots", ev.TotalSlots).
		AddField("queue_depth", ev.QueueDepth).
		AddField("utilization_percent", round3(ev.Utilization)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRevenue writes the cumulative revenue total.
func (s *InfluxSink) RecordRevenue(total float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("billing_revenue").
		AddTag("component", "billing").
		AddField("revenue_total", round3(total)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
