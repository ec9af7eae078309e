// Package eventbus provides a small non-blocking publish/subscribe bus used
// to stream station lifecycle events to in-process consumers.
package eventbus

import "sync"

// Bus fans out values of type T to all subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[int]chan T
	nextID int
	buffer int
	closed bool
}

// New creates a Bus whose subscriber channels hold up to buffer events.
// A non-positive buffer defaults to 8.
func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = 8
	}
	return &Bus[T]{subs: make(map[int]chan T), buffer: buffer}
}

// Publish delivers the event to every subscriber and returns the number of
// subscribers that could not keep up.
func (b *Bus[T]) Publish(ev T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}

// Subscribe registers a subscriber and returns its channel together with a
// cancel function. Cancel closes the channel and is safe to call twice.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				if !b.closed {
					close(ch)
				}
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
