// Package notify implements the synchronous observer fan-out used by the
// station to keep vehicles and external sinks informed of state transitions.
package notify

import "reflect"

// Sink receives fan-out messages. Message content is opaque to the station;
// formatting is the producer's concern.
type Sink interface {
	Receive(message string) error
}

// sameSink reports sink identity without assuming the dynamic type is
// comparable. Comparable types compare by value; func, map and slice kinds
// compare by pointer.
func sameSink(a, b Sink) bool {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// Notifier maintains an ordered set of sinks keyed by identity. Attach and
// Detach are idempotent. It is not safe for concurrent use; the station
// serializes all access.
type Notifier struct {
	sinks []Sink
}

// New creates an empty notifier.
func New() *Notifier { return &Notifier{} }

// Attach registers the sink. Attaching an already-present sink is a no-op.
func (n *Notifier) Attach(s Sink) {
	if s == nil {
		return
	}
	for _, existing := range n.sinks {
		if sameSink(existing, s) {
			return
		}
	}
	n.sinks = append(n.sinks, s)
}

// Detach removes the sink. Detaching an absent sink is a no-op.
func (n *Notifier) Detach(s Sink) {
	if s == nil {
		return
	}
	for i, existing := range n.sinks {
		if sameSink(existing, s) {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			return
		}
	}
}

// NotifyAll delivers the message to every sink synchronously, in attachment
// order. The first sink error aborts the remaining fan-out and is returned;
// callers that want isolation must wrap their sinks accordingly.
func (n *Notifier) NotifyAll(message string) error {
	for _, s := range n.sinks {
		if err := s.Receive(message); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of attached sinks.
func (n *Notifier) Count() int { return len(n.sinks) }
