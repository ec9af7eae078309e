// Package queue implements the priority waitlist for vehicles arriving while
// every slot is busy. Ordering is a min-heap over (priority score, insertion
// sequence), so equal scores are served strictly first-in first-out.
package queue

import (
	"container/heap"
	"sort"

	"github.com/avstation/stationd/core/model"
)

// Entry is one queued vehicle together with its sort key. The score is
// captured at enqueue time; the sequence number is monotonic and never
// reused, which keeps FIFO tie-breaking stable across removals.
type Entry struct {
	Score   int
	Seq     uint64
	Vehicle *model.Vehicle
}

func (e Entry) less(o Entry) bool {
	if e.Score != o.Score {
		return e.Score < o.Score
	}
	return e.Seq < o.Seq
}

type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// PriorityQueue is a binary min-heap of waiting vehicles with an index for
// O(1) membership tests by vehicle ID. It is not safe for concurrent use;
// the station serializes all access.
type PriorityQueue struct {
	items   entryHeap
	byID    map[string]uint64
	nextSeq uint64
}

// New creates an empty queue.
func New() *PriorityQueue {
	return &PriorityQueue{byID: make(map[string]uint64)}
}

// Enqueue adds the vehicle and returns its rank at time of insertion: the
// number of queued entries whose sort key is strictly smaller. The heap
// array position is deliberately not used for this, since it only orders the
// root reliably.
func (q *PriorityQueue) Enqueue(v *model.Vehicle) int {
	e := Entry{Score: v.Priority(), Seq: q.nextSeq, Vehicle: v}
	q.nextSeq++
	heap.Push(&q.items, e)
	q.byID[v.ID] = e.Seq

	rank := 0
	for _, other := range q.items {
		if other.less(e) {
			rank++
		}
	}
	return rank
}

// DequeueMin removes and returns the highest-priority vehicle, or false when
// the queue is empty.
func (q *PriorityQueue) DequeueMin() (*model.Vehicle, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := heap.Pop(&q.items).(Entry)
	delete(q.byID, e.Vehicle.ID)
	return e.Vehicle, true
}

// PeekMin returns the highest-priority vehicle without removing it.
func (q *PriorityQueue) PeekMin() (*model.Vehicle, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0].Vehicle, true
}

// Remove deletes the vehicle with the given ID from the queue, restoring the
// heap invariant. It reports whether a removal occurred.
func (q *PriorityQueue) Remove(vehicleID string) bool {
	if _, ok := q.byID[vehicleID]; !ok {
		return false
	}
	for i, e := range q.items {
		if e.Vehicle.ID == vehicleID {
			heap.Remove(&q.items, i)
			delete(q.byID, vehicleID)
			return true
		}
	}
	return false
}

// Contains reports whether the vehicle is currently queued.
func (q *PriorityQueue) Contains(vehicleID string) bool {
	_, ok := q.byID[vehicleID]
	return ok
}

// Size returns the number of queued vehicles.
func (q *PriorityQueue) Size() int { return len(q.items) }

// Empty reports whether the queue has no vehicles.
func (q *PriorityQueue) Empty() bool { return len(q.items) == 0 }

// SnapshotOrdered returns all queued vehicles in ascending (score, sequence)
// order without mutating the queue.
func (q *PriorityQueue) SnapshotOrdered() []*model.Vehicle {
	entries := make([]Entry, len(q.items))
	copy(entries, q.items)
	sort.Slice(entries, func(i, j int) bool { return entries[i].less(entries[j]) })
	out := make([]*model.Vehicle, len(entries))
	for i, e := range entries {
		out[i] = e.Vehicle
	}
	return out
}
