package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/avstation/stationd/core/metrics"
)

type recordingSink struct {
	admissions []coremetrics.AdmissionEvent
	sessions   []coremetrics.SessionEvent
	states     []coremetrics.StationStateEvent
	revenues   []float64
	fail       bool
}

func (r *recordingSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.admissions = append(r.admissions, ev)
	return nil
}

func (r *recordingSink) RecordSession(ev coremetrics.SessionEvent) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.sessions = append(r.sessions, ev)
	return nil
}

func (r *recordingSink) RecordStationState(ev coremetrics.StationStateEvent) error {
	r.states = append(r.states, ev)
	return nil
}

func (r *recordingSink) RecordRevenue(total float64) error {
	r.revenues = append(r.revenues, total)
	return nil
}

// basicSink implements only the mandatory MetricsSink surface.
type basicSink struct {
	admissions int
	sessions   int
}

func (b *basicSink) RecordAdmission(coremetrics.AdmissionEvent) error { b.admissions++; return nil }
func (b *basicSink) RecordSession(coremetrics.SessionEvent) error     { b.sessions++; return nil }

func TestMultiSinkForwardsToAll(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	ev := coremetrics.AdmissionEvent{VehicleID: "AV-1", Category: "sedan", Outcome: coremetrics.OutcomeAssigned, Time: time.Now()}
	require.NoError(t, m.RecordAdmission(ev))
	assert.Len(t, a.admissions, 1)
	assert.Len(t, b.admissions, 1)

	require.NoError(t, m.RecordSession(coremetrics.SessionEvent{VehicleID: "AV-1", Category: "sedan", EnergyKWh: 12}))
	assert.Len(t, a.sessions, 1)
	assert.Len(t, b.sessions, 1)
}

func TestMultiSinkStopsOnFirstError(t *testing.T) {
	a := &recordingSink{fail: true}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	err := m.RecordAdmission(coremetrics.AdmissionEvent{VehicleID: "AV-2"})
	assert.Error(t, err)
	assert.Empty(t, b.admissions)
}

func TestMultiSinkSkipsOptionalInterfaces(t *testing.T) {
	a := &recordingSink{}
	b := &basicSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordStationState(coremetrics.StationStateEvent{StationID: "CS-001", OccupiedSlots: 2, TotalSlots: 3, Utilization: 66.7}))
	assert.Len(t, a.states, 1)

	require.NoError(t, m.RecordRevenue(42.5))
	require.Len(t, a.revenues, 1)
	assert.Equal(t, 42.5, a.revenues[0])
}

func TestPromSinkRegistersOnce(t *testing.T) {
	// Registering twice on the global registerer must reuse the existing
	// collectors instead of failing.
	first, err := NewPromSink()
	require.NoError(t, err)
	second, err := NewPromSink()
	require.NoError(t, err)

	assert.NoError(t, first.RecordAdmission(coremetrics.AdmissionEvent{Category: "truck", Outcome: coremetrics.OutcomeQueued}))
	assert.NoError(t, second.RecordSession(coremetrics.SessionEvent{Category: "bus", EnergyKWh: 30}))
	assert.NoError(t, second.RecordStationState(coremetrics.StationStateEvent{QueueDepth: 4, Utilization: 100}))
	assert.NoError(t, second.RecordRevenue(9.2))
}
