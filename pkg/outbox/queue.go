package outbox

import (
	"context"
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrClosed is returned when pushing to a closed queue, or when receiving
// from a queue that is closed and empty.
var ErrClosed = errors.New("outbox: queue closed")

// Queue is an unbounded FIFO of outgoing items owned by one session.
//
// Any number of goroutines may Push. Items are taken out only through a
// Receiver, and at most one Receiver exists at a time.
type Queue[T any] struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool

	notify chan struct{} // Signals the receiver that an item arrived
	done   chan struct{} // Closed by Close
	token  chan struct{} // Holds one value while a Receiver is live
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items:  queue.New(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		token:  make(chan struct{}, 1),
	}
}

// Push appends v to the tail of the queue.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items.Add(v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
		// Receiver already has a pending wakeup
	}
	return nil
}

// Close marks the queue closed. Items already queued stay receivable.
// Safe to call multiple times.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Done returns a channel that is closed when the queue is closed.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Acquire waits for exclusive receive access. The returned Receiver must be
// released when the caller is done with it.
func (q *Queue[T]) Acquire(ctx context.Context) (*Receiver[T], error) {
	select {
	case q.token <- struct{}{}:
		return &Receiver[T]{q: q}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire returns a Receiver if no other Receiver is live.
func (q *Queue[T]) TryAcquire() (*Receiver[T], bool) {
	select {
	case q.token <- struct{}{}:
		return &Receiver[T]{q: q}, true
	default:
		return nil, false
	}
}

// pop removes the head item. ok is false if the queue is empty; closed
// reports the queue state observed under the same lock.
func (q *Queue[T]) pop() (v T, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		return v, false, q.closed
	}
	v, _ = q.items.Remove().(T)
	return v, true, q.closed
}
