package notify

import (
	"sync"
	"time"
)

// HistoryEntry is a single recorded notification.
type HistoryEntry struct {
	Message string    `json:"message"`
	Channel string    `json:"channel"`
	Time    time.Time `json:"time"`
}

// HistorySink keeps a bounded in-memory record of every notification it
// receives. It never rejects a message, so attaching it cannot abort the
// station's fan-out. Several sinks with distinct channel labels can share
// one history through WithChannel.
type HistorySink struct {
	mu      sync.Mutex
	entries []HistoryEntry
	counts  map[string]int
	limit   int
	channel string

	// parent points views back at the owning sink; nil on the root.
	parent *HistorySink
}

// NewHistorySink creates a sink retaining at most limit entries under the
// "default" channel. A non-positive limit keeps the full history.
func NewHistorySink(limit int) *HistorySink {
	return &HistorySink{
		counts:  make(map[string]int),
		limit:   limit,
		channel: "default",
	}
}

// WithChannel returns a view on the same history that records under the
// given channel label.
func (h *HistorySink) WithChannel(channel string) *HistorySink {
	return &HistorySink{channel: channel, parent: h.root()}
}

func (h *HistorySink) root() *HistorySink {
	if h.parent != nil {
		return h.parent
	}
	return h
}

// Receive records the message with the current timestamp.
func (h *HistorySink) Receive(message string) error {
	r := h.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, HistoryEntry{Message: message, Channel: h.channel, Time: time.Now()})
	r.counts[h.channel]++
	if r.limit > 0 && len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
	return nil
}

// Recent returns the last n entries, oldest first. n <= 0 returns everything.
func (h *HistorySink) Recent(n int) []HistoryEntry {
	r := h.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if n > 0 && len(r.entries) > n {
		start = len(r.entries) - n
	}
	out := make([]HistoryEntry, len(r.entries)-start)
	copy(out, r.entries[start:])
	return out
}

// Count returns the number of retained entries.
func (h *HistorySink) Count() int {
	r := h.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CountsByChannel returns delivery totals per channel label. Totals are not
// trimmed when old entries rotate out.
func (h *HistorySink) CountsByChannel() map[string]int {
	r := h.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Clear drops the recorded history and channel totals.
func (h *HistorySink) Clear() {
	r := h.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.counts = make(map[string]int)
}
