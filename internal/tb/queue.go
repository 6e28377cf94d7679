package tb

import "sync"

// EventQueue is the ordered, unbounded channel between the two monitor
// producers and the single scoreboard consumer.
//
// It is unbounded so monitors never block at an edge: a producer stalled on
// a full channel would skew pin-level timing. FIFO order is preserved with
// no loss and no re-ordering.
//
// Thread-safety covers the producer side (monitor tasks, reset coordinator)
// against the consumer goroutine. Enqueue stamps each event with the next
// sequence number.
type EventQueue struct {
	mu     sync.Mutex
	clock  SeqClock
	events []Event
	closed bool
	signal chan struct{} // buffered size 1, coalesces availability signals
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an event, stamping its Seq. Returns false if the queue
// is closed.
func (q *EventQueue) Enqueue(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	ev.Seq = q.clock.Next()
	q.events = append(q.events, ev)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Dequeue removes and returns the front event, blocking until one is
// available. Returns ok=false once the queue is closed and drained.
func (q *EventQueue) Dequeue() (Event, bool) {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events[0] = Event{}
			if len(q.events) == 1 {
				q.events = q.events[:0]
			} else {
				q.events = q.events[1:]
			}
			q.mu.Unlock()
			return ev, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Event{}, false
		}
		<-q.signal
	}
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will arrive. Wakes the consumer.
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
