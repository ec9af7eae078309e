package station

import (
	"context"
	"errors"

	"github.com/avstation/stationd/core/model"
	"github.com/avstation/stationd/core/notify"
)

var (
	// ErrStationBusy is returned when the command mailbox is full. The
	// caller should back off and retry; admission is the expected victim
	// under extreme backlog.
	ErrStationBusy = errors.New("station command queue full")
	// ErrStationStopped is returned once the station's context ended.
	ErrStationStopped = errors.New("station stopped")
	// ErrStationNotStarted is returned when an operation is submitted
	// before Start.
	ErrStationNotStarted = errors.New("station not started")
)

// command is one unit of work for the station goroutine. The closure runs to
// completion, including its notification fan-out, before the next command is
// taken.
type command struct {
	fn   func()
	done chan struct{}
}

// Start launches the command loop. All public operations are processed one
// at a time on that goroutine until ctx is cancelled. Start is idempotent.
func (s *Station) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		close(s.started)
		go s.run(ctx)
	})
}

func (s *Station) run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case cmd := <-s.cmds:
			cmd.fn()
			close(cmd.done)
		case <-ctx.Done():
			return
		}
	}
}

// submit queues fn on the station goroutine and blocks until it completed.
// A full mailbox rejects immediately with ErrStationBusy.
func (s *Station) submit(fn func()) error {
	select {
	case <-s.started:
	default:
		return ErrStationNotStarted
	}
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case <-s.stopped:
		return ErrStationStopped
	case s.cmds <- cmd:
	default:
		return ErrStationBusy
	}
	select {
	case <-cmd.done:
		return nil
	case <-s.stopped:
		return ErrStationStopped
	}
}

// Admit places the vehicle in the first available slot or on the waitlist.
func (s *Station) Admit(v *model.Vehicle) (AdmitResult, error) {
	var (
		res AdmitResult
		err error
	)
	if serr := s.submit(func() { res, err = s.doAdmit(v) }); serr != nil {
		return AdmitResult{}, serr
	}
	return res, err
}

// Release vacates the slot and returns the session figures for billing. The
// freed slot is only refilled by an explicit DequeueNext + Admit follow-up,
// so the caller can interpose billing.
func (s *Station) Release(slotID string) (ReleaseResult, error) {
	var (
		res ReleaseResult
		err error
	)
	if serr := s.submit(func() { res, err = s.doRelease(slotID) }); serr != nil {
		return ReleaseResult{}, serr
	}
	return res, err
}

// Tick advances charging on every occupied slot by durationHours.
func (s *Station) Tick(durationHours float64) error {
	return s.submit(func() { s.doTick(durationHours) })
}

// DequeueNext pops the head of the waitlist. ErrQueueEmpty when nothing
// waits.
func (s *Station) DequeueNext() (*model.Vehicle, error) {
	var (
		v   *model.Vehicle
		err error
	)
	if serr := s.submit(func() { v, err = s.doDequeueNext() }); serr != nil {
		return nil, serr
	}
	return v, err
}

// RemoveVehicle drops a waitlisted vehicle, e.g. when it leaves before being
// served. It reports whether a removal occurred.
func (s *Station) RemoveVehicle(vehicleID string) (bool, error) {
	var removed bool
	if serr := s.submit(func() { removed = s.waitlist.Remove(vehicleID) }); serr != nil {
		return false, serr
	}
	return removed, nil
}

// Status returns the aggregate station view.
func (s *Station) Status() (Snapshot, error) {
	var snap Snapshot
	if serr := s.submit(func() { snap = s.doStatus() }); serr != nil {
		return Snapshot{}, serr
	}
	return snap, nil
}

// Slots returns the per-slot view in fixed station order.
func (s *Station) Slots() ([]SlotStatus, error) {
	var out []SlotStatus
	if serr := s.submit(func() { out = s.doSlots() }); serr != nil {
		return nil, serr
	}
	return out, nil
}

// QueueSnapshot returns the waitlist in serving order.
func (s *Station) QueueSnapshot() ([]QueueEntry, error) {
	var out []QueueEntry
	if serr := s.submit(func() { out = s.doQueueSnapshot() }); serr != nil {
		return nil, serr
	}
	return out, nil
}

// AttachSink registers an external notification sink.
func (s *Station) AttachSink(sink notify.Sink) error {
	return s.submit(func() { s.notifier.Attach(sink) })
}

// DetachSink removes an external notification sink.
func (s *Station) DetachSink(sink notify.Sink) error {
	return s.submit(func() { s.notifier.Detach(sink) })
}

// SessionReport returns aggregate statistics over completed sessions.
func (s *Station) SessionReport() (SessionReport, error) {
	var rep SessionReport
	if serr := s.submit(func() { rep = s.ledger.Report() }); serr != nil {
		return SessionReport{}, serr
	}
	return rep, nil
}
