package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/avstation/stationd/core/billing"
	corelogger "github.com/avstation/stationd/core/logger"
	"github.com/avstation/stationd/core/reservation"
	"github.com/avstation/stationd/core/station"
	infranotify "github.com/avstation/stationd/infra/notify"
)

type testEnv struct {
	router  *gin.Engine
	station *station.Station
	billing *billing.Engine
	history *infranotify.HistorySink
}

func newTestEnv(t *testing.T, slots int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := station.Config{ID: "CS-TEST"}
	for i := 0; i < slots; i++ {
		cfg.Slots = append(cfg.Slots, station.SlotConfig{
			ID:      fmt.Sprintf("SLOT-%d", i+1),
			PowerKW: 50,
		})
	}
	st, err := station.New(cfg, corelogger.NopLogger{})
	require.NoError(t, err)

	bcfg := billing.Config{}
	bcfg.SetDefaults()
	eng, err := billing.NewEngine(bcfg)
	require.NoError(t, err)
	st.SetRevenueProvider(func() float64 { return eng.RevenueStats().TotalRevenue })

	history := infranotify.NewHistorySink(100)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	st.Start(ctx)
	require.NoError(t, st.AttachSink(history))

	res := reservation.NewService(corelogger.NopLogger{})
	h := NewHandler(st, eng, res, history, corelogger.NopLogger{})
	return &testEnv{
		router:  NewRouter(h, rate.Limit(1000), 1000),
		station: st,
		billing: eng,
		history: history,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func admitBody(id, category string, charge float64) map[string]any {
	return map[string]any{
		"vehicle_id":     id,
		"category":       category,
		"battery_kwh":    80,
		"current_charge": charge,
	}
}

func TestAdmitAssignsSlot(t *testing.T) {
	env := newTestEnv(t, 2)

	w := env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40))
	require.Equal(t, http.StatusCreated, w.Code)

	var res station.AdmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "AV-1", res.VehicleID)
	assert.Equal(t, "SLOT-1", res.SlotID)
	assert.False(t, res.Queued)
}

func TestAdmitGeneratesVehicleID(t *testing.T) {
	env := newTestEnv(t, 1)

	w := env.do(t, http.MethodPost, "/api/vehicles", map[string]any{"category": "suv", "current_charge": 10})
	require.Equal(t, http.StatusCreated, w.Code)

	var res station.AdmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.VehicleID, "AV-")
}

func TestAdmitQueuesWhenFull(t *testing.T) {
	env := newTestEnv(t, 1)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	w := env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-2", "truck", 10))
	require.Equal(t, http.StatusCreated, w.Code)

	var res station.AdmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Queued)
}

func TestAdmitDuplicateConflict(t *testing.T) {
	env := newTestEnv(t, 2)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	w := env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdmitRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t, 1)
	w := env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "hovercraft", 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReleaseBillsAndRefills(t *testing.T) {
	env := newTestEnv(t, 1)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-2", "suv", 20)).Code)

	// Deliver some energy before releasing.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/charge", map[string]any{"duration_hours": 0.2}).Code)

	w := env.do(t, http.MethodDelete, "/api/vehicles/AV-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VehicleID string  `json:"vehicle_id"`
		EnergyKWh float64 `json:"energy_kwh"`
		Invoice   struct {
			ID        string  `json:"invoice_id"`
			TotalCost float64 `json:"total_cost"`
		} `json:"invoice"`
		Refilled string `json:"refilled_vehicle_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AV-1", resp.VehicleID)
	assert.Equal(t, 10.0, resp.EnergyKWh)
	assert.Equal(t, "INV-000001", resp.Invoice.ID)
	assert.Greater(t, resp.Invoice.TotalCost, 0.0)
	assert.Equal(t, "AV-2", resp.Refilled)

	stats := env.billing.RevenueStats()
	assert.Equal(t, resp.Invoice.TotalCost, stats.TotalRevenue)
}

func TestReleaseRemovesQueuedVehicle(t *testing.T) {
	env := newTestEnv(t, 1)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-2", "suv", 20)).Code)

	w := env.do(t, http.MethodDelete, "/api/vehicles/AV-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "removed_from_queue")

	w = env.do(t, http.MethodDelete, "/api/vehicles/AV-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChargeRejectsNonPositiveDuration(t *testing.T) {
	env := newTestEnv(t, 1)
	w := env.do(t, http.MethodPost, "/api/charge", map[string]any{"duration_hours": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStationStatusAndQueue(t *testing.T) {
	env := newTestEnv(t, 1)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-2", "bus", 20)).Code)

	w := env.do(t, http.MethodGet, "/api/station/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap station.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "CS-TEST", snap.StationID)
	assert.Equal(t, 1, snap.OccupiedSlots)
	assert.Equal(t, 1, snap.QueueDepth)

	w = env.do(t, http.MethodGet, "/api/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []station.QueueEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "AV-2", entries[0].VehicleID)
}

func TestUpdateRate(t *testing.T) {
	env := newTestEnv(t, 1)

	w := env.do(t, http.MethodPut, "/api/billing/rates/truck", map[string]any{"rate": 0.5})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/api/billing/rates/truck", map[string]any{"rate": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/billing/rates/boat", map[string]any{"rate": 0.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationGrantsPriority(t *testing.T) {
	env := newTestEnv(t, 1)

	w := env.do(t, http.MethodPost, "/api/reservations", map[string]any{"vehicle_id": "AV-R"})
	require.Equal(t, http.StatusCreated, w.Code)
	var res reservation.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "RES-000001", res.ID)

	// Fill the slot, then queue a low-charge truck and the reserved sedan.
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-2", "truck", 4)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-R", "sedan", 60)).Code)

	// The reserved vehicle outranks the truck on the waitlist.
	wq := env.do(t, http.MethodGet, "/api/queue", nil)
	var entries []station.QueueEntry
	require.NoError(t, json.Unmarshal(wq.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "AV-R", entries[0].VehicleID)
	assert.True(t, entries[0].HasReservation)

	// Releasing the slot admits the reserved vehicle and fulfills the
	// reservation.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/vehicles/AV-1", nil).Code)

	wl := env.do(t, http.MethodGet, "/api/reservations", nil)
	var active []reservation.Reservation
	require.NoError(t, json.Unmarshal(wl.Body.Bytes(), &active))
	assert.Empty(t, active)
}

func TestReservationCancel(t *testing.T) {
	env := newTestEnv(t, 1)

	w := env.do(t, http.MethodPost, "/api/reservations", map[string]any{"vehicle_id": "AV-R"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/reservations/RES-000001", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/reservations/RES-000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationsHistory(t *testing.T) {
	env := newTestEnv(t, 1)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/vehicles", admitBody("AV-1", "sedan", 40)).Code)

	w := env.do(t, http.MethodGet, "/api/notifications?n=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []infranotify.HistoryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Message, "AV-1")

	w = env.do(t, http.MethodGet, "/api/notifications?n=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t, 1)
	limited := NewRouter(NewHandler(env.station, env.billing, reservation.NewService(corelogger.NopLogger{}), nil, corelogger.NopLogger{}), rate.Limit(1), 1)

	first := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, first)
	require.Equal(t, http.StatusOK, w.Code)

	second := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	w = httptest.NewRecorder()
	limited.ServeHTTP(w, second)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
