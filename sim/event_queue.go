package sim

import "container/heap"

// queuedEvent pairs an event with its insertion sequence number.
type queuedEvent struct {
	ev  Event
	seq uint64
}

// eventHeap implements heap.Interface.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

// Less orders by time, then by insertion order. The second key makes the
// pop order a pure function of the push sequence, which whole-run
// determinism relies on.
func (h eventHeap) Less(i, j int) bool {
	if h[i].ev.Time != h[j].ev.Time {
		return h[i].ev.Time < h[j].ev.Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queuedEvent{}
	*h = old[0 : n-1]
	return item
}

// EventQueue is a binary min-heap of events keyed by time. Events with equal
// times pop in insertion (FIFO) order.
//
// Thread-safety: NOT thread-safe. Owned by a single Engine.
type EventQueue struct {
	h   eventHeap
	seq uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{h: make(eventHeap, 0)}
}

// Push adds an event. O(log n).
func (q *EventQueue) Push(ev Event) {
	heap.Push(&q.h, queuedEvent{ev: ev, seq: q.seq})
	q.seq++
}

// Pop removes and returns the earliest event. ok is false when empty.
func (q *EventQueue) Pop() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.h).(queuedEvent).ev, true
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.h) == 0 {
		return Event{}, false
	}
	return q.h[0].ev, true
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return len(q.h) }

// IsEmpty reports whether the queue holds no events.
func (q *EventQueue) IsEmpty() bool { return len(q.h) == 0 }

// Clear drops all events and restarts the insertion sequence.
func (q *EventQueue) Clear() {
	q.h = q.h[:0]
	q.seq = 0
}
