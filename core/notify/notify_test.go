package notify

import (
	"errors"
	"testing"
)

type recordingSink struct {
	name     string
	messages []string
	fail     error
}

func (s *recordingSink) Receive(msg string) error {
	if s.fail != nil {
		return s.fail
	}
	s.messages = append(s.messages, msg)
	return nil
}

func TestNotifyAllInAttachmentOrder(t *testing.T) {
	n := New()
	var order []string
	a := sinkFunc(func(string) error { order = append(order, "a"); return nil })
	b := sinkFunc(func(string) error { order = append(order, "b"); return nil })
	c := sinkFunc(func(string) error { order = append(order, "c"); return nil })
	n.Attach(a)
	n.Attach(b)
	n.Attach(c)

	if err := n.NotifyAll("hello"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("delivery order %v", order)
	}
}

type sinkFunc func(string) error

func (f sinkFunc) Receive(msg string) error { return f(msg) }

func TestFuncSinksAttachAndDetach(t *testing.T) {
	// Func-typed sinks are not comparable with ==; membership checks must
	// not panic and must still dedupe the same value.
	n := New()
	var got []string
	a := sinkFunc(func(string) error { got = append(got, "a"); return nil })
	b := sinkFunc(func(string) error { got = append(got, "b"); return nil })
	n.Attach(a)
	n.Attach(b)
	n.Attach(a) // duplicate value: no-op
	if n.Count() != 2 {
		t.Fatalf("count %d after duplicate func attach", n.Count())
	}

	if err := n.NotifyAll("msg"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("deliveries %v", got)
	}

	n.Detach(a)
	if n.Count() != 1 {
		t.Fatalf("count %d after func detach", n.Count())
	}
	got = got[:0]
	if err := n.NotifyAll("again"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("deliveries %v after detach", got)
	}
}

func TestAttachIdempotent(t *testing.T) {
	n := New()
	s := &recordingSink{name: "s"}
	n.Attach(s)
	n.Attach(s)
	if n.Count() != 1 {
		t.Fatalf("count %d after duplicate attach", n.Count())
	}

	if err := n.NotifyAll("once"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(s.messages) != 1 {
		t.Fatalf("sink received %d messages", len(s.messages))
	}
}

func TestDetach(t *testing.T) {
	n := New()
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	n.Attach(a)
	n.Attach(b)

	n.Detach(a)
	n.Detach(a) // absent: no-op
	if n.Count() != 1 {
		t.Fatalf("count %d after detach", n.Count())
	}
	if err := n.NotifyAll("msg"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(a.messages) != 0 || len(b.messages) != 1 {
		t.Fatal("detached sink still receiving")
	}
}

func TestFailureAbortsFanOut(t *testing.T) {
	n := New()
	boom := errors.New("sink down")
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b", fail: boom}
	c := &recordingSink{name: "c"}
	n.Attach(a)
	n.Attach(b)
	n.Attach(c)

	err := n.NotifyAll("msg")
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(a.messages) != 1 {
		t.Fatal("sink before the failure should have been served")
	}
	if len(c.messages) != 0 {
		t.Fatal("fan-out continued past the failing sink")
	}
}

func TestAttachNil(t *testing.T) {
	n := New()
	n.Attach(nil)
	if n.Count() != 0 {
		t.Fatal("nil sink attached")
	}
}
