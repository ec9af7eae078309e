// Package station composes the slots, the priority waitlist, the notification
// fan-out and the metrics sinks into the admit/release/tick protocol. All
// mutating operations on a Station are serialized through a single command
// goroutine (see actor.go); the per-operation logic in this file therefore
// runs without locks.
package station

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avstation/stationd/core/logger"
	"github.com/avstation/stationd/core/metrics"
	"github.com/avstation/stationd/core/model"
	"github.com/avstation/stationd/core/notify"
	"github.com/avstation/stationd/core/queue"
	"github.com/avstation/stationd/internal/eventbus"
)

var (
	// ErrSlotNotFound is returned for operations on an unknown slot ID.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrVehiclePresent is returned when admitting a vehicle that is
	// already charging or queued.
	ErrVehiclePresent = errors.New("vehicle already present")
	// ErrQueueEmpty is returned by DequeueNext on an empty waitlist.
	ErrQueueEmpty = errors.New("waitlist is empty")
)

// Station owns an ordered set of slots, the waitlist and the notification
// fan-out for one charging site. Create it with New, configure the optional
// collaborators, then Start it.
type Station struct {
	id       string
	location string

	slots    []*model.Slot
	waitlist *queue.PriorityQueue
	notifier *notify.Notifier

	// vehicleSinks tracks the per-vehicle sinks attached on assignment so
	// they can be detached on release.
	vehicleSinks map[string]notify.Sink

	vehiclesServed int
	ledger         *SessionLedger

	log     logger.Logger
	sink    metrics.MetricsSink
	bus     *eventbus.Bus[Event]
	revenue func() float64

	cmds      chan command
	startOnce sync.Once
	started   chan struct{}
	stopped   chan struct{}
}

// New builds a Station from the config. The optional collaborators default
// to no-ops and can be replaced before Start.
func New(cfg Config, log logger.Logger) (*Station, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("station config: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	s := &Station{
		id:           cfg.ID,
		location:     cfg.Location,
		waitlist:     queue.New(),
		notifier:     notify.New(),
		vehicleSinks: make(map[string]notify.Sink),
		ledger:       NewSessionLedger(),
		log:          log,
		sink:         metrics.NopSink{},
		cmds:         make(chan command, cfg.CommandQueueDepth),
		started:      make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	for _, sc := range cfg.Slots {
		slot, err := model.NewSlot(sc.ID, sc.PowerKW)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", sc.ID, err)
		}
		s.slots = append(s.slots, slot)
	}
	return s, nil
}

// SetMetricsSink configures the metrics sink. Must be called before Start.
func (s *Station) SetMetricsSink(sink metrics.MetricsSink) {
	if sink != nil {
		s.sink = sink
	}
}

// SetEventBus configures the lifecycle event bus. Must be called before
// Start.
func (s *Station) SetEventBus(bus *eventbus.Bus[Event]) { s.bus = bus }

// SetRevenueProvider wires the revenue figure reported by Status. The
// billing engine owns revenue; the station only displays it.
func (s *Station) SetRevenueProvider(fn func() float64) { s.revenue = fn }

// ID returns the station identifier.
func (s *Station) ID() string { return s.id }

func (s *Station) publish(ev Event) {
	if s.bus != nil {
		if dropped := s.bus.Publish(ev); dropped > 0 {
			s.log.Debugf("event %s dropped by %d slow subscribers", Name(ev), dropped)
		}
	}
}

func (s *Station) notifyAll(msg string) {
	if err := s.notifier.NotifyAll(msg); err != nil {
		// Sink failures abort the remaining fan-out for this event by
		// contract. The operation itself still succeeds.
		s.log.Warnf("notification fan-out aborted: %v", err)
	}
}

func (s *Station) slotByID(id string) *model.Slot {
	for _, slot := range s.slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

func (s *Station) vehiclePresent(id string) bool {
	if s.waitlist.Contains(id) {
		return true
	}
	for _, slot := range s.slots {
		if v := slot.Vehicle(); v != nil && v.ID == id {
			return true
		}
	}
	return false
}

// vehicleSink adapts an assigned vehicle into a notification sink. The real
// vehicle uplink lives outside the core; logging stands in for delivery.
type vehicleSink struct {
	vehicleID string
	log       logger.Logger
}

func (v *vehicleSink) Receive(msg string) error {
	v.log.Debugf("[vehicle %s] %s", v.vehicleID, msg)
	return nil
}

// doAdmit assigns the vehicle to the first available slot in fixed station
// order, or enqueues it when every slot is busy. Enqueueing is a defined
// outcome, not an error.
func (s *Station) doAdmit(v *model.Vehicle) (AdmitResult, error) {
	if s.vehiclePresent(v.ID) {
		return AdmitResult{}, fmt.Errorf("%w: %s", ErrVehiclePresent, v.ID)
	}
	for _, slot := range s.slots {
		if slot.Occupied() {
			continue
		}
		if err := slot.Assign(v); err != nil {
			return AdmitResult{}, err
		}
		vs := &vehicleSink{vehicleID: v.ID, log: s.log}
		s.vehicleSinks[v.ID] = vs
		s.notifier.Attach(vs)
		s.notifyAll(fmt.Sprintf("Vehicle %s assigned to slot %s", v.ID, slot.ID))
		s.publish(VehicleAssigned{VehicleID: v.ID, SlotID: slot.ID})
		s.recordAdmission(metrics.AdmissionEvent{
			VehicleID: v.ID,
			Category:  v.Type.String(),
			Outcome:   metrics.OutcomeAssigned,
			SlotID:    slot.ID,
		})
		s.log.Infof("vehicle %s assigned to slot %s", v.ID, slot.ID)
		return AdmitResult{VehicleID: v.ID, SlotID: slot.ID}, nil
	}

	rank := s.waitlist.Enqueue(v)
	s.notifyAll(fmt.Sprintf("No slots available for vehicle %s, queued at position %d", v.ID, rank))
	s.publish(VehicleQueued{VehicleID: v.ID, Rank: rank})
	s.recordAdmission(metrics.AdmissionEvent{
		VehicleID: v.ID,
		Category:  v.Type.String(),
		Outcome:   metrics.OutcomeQueued,
		QueueRank: rank,
	})
	s.log.Infof("vehicle %s queued at position %d", v.ID, rank)
	return AdmitResult{VehicleID: v.ID, Queued: true, QueueRank: rank}, nil
}

// doRelease vacates the slot. Session duration and energy are captured
// before the slot resets so the caller can bill them. The freed slot is not
// refilled here: the caller interposes billing and then explicitly dequeues.
func (s *Station) doRelease(slotID string) (ReleaseResult, error) {
	slot := s.slotByID(slotID)
	if slot == nil {
		return ReleaseResult{}, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	duration := slot.SessionDuration()
	energy := slot.SessionEnergy()
	v, err := slot.Release()
	if err != nil {
		return ReleaseResult{}, err
	}
	s.vehiclesServed++
	s.ledger.Record(SessionRecord{
		VehicleID:     v.ID,
		SlotID:        slotID,
		DurationHours: duration,
		EnergyKWh:     energy,
	})
	s.notifyAll(fmt.Sprintf("Vehicle %s completed charging and released from slot %s", v.ID, slotID))
	if vs, ok := s.vehicleSinks[v.ID]; ok {
		s.notifier.Detach(vs)
		delete(s.vehicleSinks, v.ID)
	}
	s.publish(VehicleReleased{VehicleID: v.ID, SlotID: slotID, DurationHours: duration, EnergyKWh: energy})
	s.recordSession(metrics.SessionEvent{
		VehicleID:     v.ID,
		SlotID:        slotID,
		Category:      v.Type.String(),
		DurationHours: duration,
		EnergyKWh:     energy,
	})
	s.log.Infof("vehicle %s released from slot %s after %.2fh, %.2f kWh", v.ID, slotID, duration, energy)
	return ReleaseResult{VehicleID: v.ID, DurationHours: duration, EnergyKWh: energy, Vehicle: v}, nil
}

// doTick advances every occupied slot by the given duration. Completed
// vehicles are announced but never auto-released.
func (s *Station) doTick(durationHours float64) {
	for _, slot := range s.slots {
		if !slot.Occupied() {
			continue
		}
		delivered := slot.TickCharge(durationHours)
		v := slot.Vehicle()
		pct := v.ChargePercent()
		s.notifyAll(fmt.Sprintf("Slot %s: Vehicle %s charged to %.1f%% (%.2f kWh)", slot.ID, v.ID, pct, delivered))
		s.publish(ChargeProgress{VehicleID: v.ID, SlotID: slot.ID, ChargePercent: pct, DeliveredKWh: delivered})
		if slot.Complete() {
			s.notifyAll(fmt.Sprintf("Vehicle %s charging complete", v.ID))
			s.publish(ChargingComplete{VehicleID: v.ID, SlotID: slot.ID})
		}
	}
	s.recordState()
}

func (s *Station) doDequeueNext() (*model.Vehicle, error) {
	v, ok := s.waitlist.DequeueMin()
	if !ok {
		return nil, ErrQueueEmpty
	}
	return v, nil
}

func (s *Station) doStatus() Snapshot {
	occupied := 0
	for _, slot := range s.slots {
		if slot.Occupied() {
			occupied++
		}
	}
	snap := Snapshot{
		StationID:      s.id,
		Location:       s.location,
		TotalSlots:     len(s.slots),
		OccupiedSlots:  occupied,
		AvailableSlots: len(s.slots) - occupied,
		QueueDepth:     s.waitlist.Size(),
		VehiclesServed: s.vehiclesServed,
		SinkCount:      s.notifier.Count(),
		Time:           time.Now(),
	}
	if len(s.slots) > 0 {
		snap.Utilization = float64(occupied) / float64(len(s.slots)) * 100
	}
	if s.revenue != nil {
		snap.TotalRevenue = s.revenue()
	}
	return snap
}

func (s *Station) doSlots() []SlotStatus {
	out := make([]SlotStatus, 0, len(s.slots))
	for _, slot := range s.slots {
		st := SlotStatus{
			SlotID:           slot.ID,
			PowerKW:          slot.PowerKW,
			Occupied:         slot.Occupied(),
			SessionEnergyKWh: slot.SessionEnergy(),
			DurationHours:    slot.SessionDuration(),
		}
		if v := slot.Vehicle(); v != nil {
			st.VehicleID = v.ID
			st.Category = v.Type.String()
			st.ChargePercent = v.ChargePercent()
			st.Complete = slot.Complete()
		}
		out = append(out, st)
	}
	return out
}

func (s *Station) doQueueSnapshot() []QueueEntry {
	vehicles := s.waitlist.SnapshotOrdered()
	out := make([]QueueEntry, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, QueueEntry{
			VehicleID:      v.ID,
			Category:       v.Type.String(),
			ChargePercent:  v.ChargePercent(),
			Priority:       v.Priority(),
			HasReservation: v.HasReservation,
		})
	}
	return out
}

func (s *Station) recordAdmission(ev metrics.AdmissionEvent) {
	ev.Time = time.Now()
	if err := s.sink.RecordAdmission(ev); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
	s.recordState()
}

func (s *Station) recordSession(ev metrics.SessionEvent) {
	ev.Time = time.Now()
	if err := s.sink.RecordSession(ev); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
	s.recordState()
}

func (s *Station) recordState() {
	rec, ok := s.sink.(metrics.StationStateRecorder)
	if !ok {
		return
	}
	occupied := 0
	for _, slot := range s.slots {
		if slot.Occupied() {
			occupied++
		}
	}
	ev := metrics.StationStateEvent{
		StationID:     s.id,
		TotalSlots:    len(s.slots),
		OccupiedSlots: occupied,
		QueueDepth:    s.waitlist.Size(),
		Time:          time.Now(),
	}
	if len(s.slots) > 0 {
		ev.Utilization = float64(occupied) / float64(len(s.slots)) * 100
	}
	if err := rec.RecordStationState(ev); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}
