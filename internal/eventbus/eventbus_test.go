package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	b := New[string](4)
	ch, cancel := b.Subscribe()
	defer cancel()

	if dropped := b.Publish("one"); dropped != 0 {
		t.Fatalf("dropped %d", dropped)
	}
	if got := <-ch; got != "one" {
		t.Fatalf("got %q", got)
	}
}

func TestPublishNonBlocking(t *testing.T) {
	b := New[int](1)
	_, cancel := b.Subscribe()
	defer cancel()

	if dropped := b.Publish(1); dropped != 0 {
		t.Fatalf("first publish dropped %d", dropped)
	}
	// Buffer is full and nobody is reading; the event must be dropped
	// rather than blocking the publisher.
	if dropped := b.Publish(2); dropped != 1 {
		t.Fatalf("second publish dropped %d, want 1", dropped)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New[int](4)
	ch, cancel := b.Subscribe()
	cancel()
	cancel() // safe to call twice

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	if dropped := b.Publish(1); dropped != 0 {
		t.Fatalf("cancelled subscriber counted as dropped: %d", dropped)
	}
}

func TestClose(t *testing.T) {
	b := New[int](4)
	ch, cancel := b.Subscribe()
	defer cancel()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after bus close")
	}
	if dropped := b.Publish(1); dropped != 0 {
		t.Fatal("publish after close should be a no-op")
	}

	late, lateCancel := b.Subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatal("subscribe after close must return a closed channel")
	}
}
