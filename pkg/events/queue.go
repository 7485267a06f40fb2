package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueClosed is returned by Get once the queue is closed and drained
	ErrQueueClosed = errors.New("event queue closed")
	// ErrQueueEmpty is returned by GetTimeout when no event arrived in time
	ErrQueueEmpty = errors.New("event queue empty")
)

// Queue is an unbounded FIFO of events that is safe for concurrent use by one
// or more producers and any number of consumers.
//
// Put never blocks. Readers block in Get until an event is available, the
// context is done, or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	items  []*Event
	ready  chan struct{} // closed and replaced on every Put/Close to wake waiters
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}),
	}
}

// Put appends an event to the tail of the queue. Events put after Close are dropped.
// Put reports whether the event was accepted.
func (q *Queue) Put(event *Event) bool {
	if event == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, event)
	q.broadcastLocked()
	return true
}

// Get removes and returns the event at the head of the queue, blocking until one
// is available. It returns ctx.Err() when the context is done and ErrQueueClosed
// once the queue has been closed and fully drained.
func (q *Queue) Get(ctx context.Context) (*Event, error) {
	for {
		q.mu.Lock()
		if event, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return event, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrQueueClosed
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// GetTimeout is Get bounded by a timeout. It returns ErrQueueEmpty when nothing
// arrived within d.
func (q *Queue) GetTimeout(d time.Duration) (*Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	event, err := q.Get(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrQueueEmpty
	}
	return event, err
}

// TryGet returns the head of the queue without blocking.
func (q *Queue) TryGet() (*Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue from accepting events and wakes all blocked readers.
// Already queued events can still be drained. Close is idempotent.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	q.broadcastLocked()
	return nil
}

// Deliver implements routingtable.Sink.
func (q *Queue) Deliver(event *Event) bool {
	return q.Put(event)
}

func (q *Queue) popLocked() (*Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	event := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return event, true
}

func (q *Queue) broadcastLocked() {
	close(q.ready)
	q.ready = make(chan struct{})
}
