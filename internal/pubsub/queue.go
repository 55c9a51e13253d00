package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when pushing to or popping from a queue that has been closed.
var ErrClosed = errors.New("pubsub: queue closed")

// Queue is an unbounded FIFO of pending events for a single subscription.
// Push never blocks; Pop blocks until an event is available, the queue is
// closed, or the context is done.
type Queue struct {
	mu     sync.Mutex
	items  []any
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewQueue creates an empty, open queue.
func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends an event to the tail of the queue.
func (q *Queue) Push(v any) error {
	q.mu.Lock()
	select {
	case <-q.done:
		q.mu.Unlock()
		return ErrClosed
	default:
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	// Wake a waiting Pop. The buffer of one coalesces repeated signals.
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes and returns the head of the queue. Events still pending when the
// queue is closed are discarded, so Pop returns ErrClosed as soon as Close runs.
func (q *Queue) Pop(ctx context.Context) (any, error) {
	for {
		q.mu.Lock()
		select {
		case <-q.done:
			q.mu.Unlock()
			return nil, ErrClosed
		default:
		}
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-q.done:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed and drops pending events. Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		close(q.done)
		q.items = nil
		q.mu.Unlock()
	})
}

// Done is closed once the queue has been closed.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
