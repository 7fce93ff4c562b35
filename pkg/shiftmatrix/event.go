package shiftmatrix

import "sync"

// Event is a named button transition.
type Event string

const (
	RedDown    Event = "RED_DOWN"
	RedUp      Event = "RED_UP"
	YellowDown Event = "YELLOW_DOWN"
	YellowUp   Event = "YELLOW_UP"
)

func (e Event) String() string { return string(e) }

// EventHandler receives one event per call, in occurrence order.
type EventHandler func(Event)

// EventQueue is an ordered queue written by the scan worker and drained
// whole by the dispatcher. Drained slices are recycled so steady state
// enqueues do not allocate.
type EventQueue struct {
	// drain serialises Acquire/Release windows.
	drain   sync.Mutex
	drained []Event

	mu     sync.Mutex
	events []Event
	spare  []Event
}

// Enqueue appends e to the backlog.
func (q *EventQueue) Enqueue(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Acquire removes and returns the whole backlog in enqueue order. The
// returned slice is owned by the caller until Release; Enqueue may run
// concurrently and its events land in the next Acquire.
func (q *EventQueue) Acquire() []Event {
	q.drain.Lock()

	q.mu.Lock()
	q.drained = q.events
	q.events = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()

	return q.drained
}

// Release ends the window opened by Acquire.
func (q *EventQueue) Release() {
	q.mu.Lock()
	q.spare = q.drained[:0]
	q.mu.Unlock()
	q.drained = nil

	q.drain.Unlock()
}
