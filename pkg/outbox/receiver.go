package outbox

import (
	"context"
	"sync"
)

// Receiver is the exclusive consumer side of a Queue.
//
// A Receiver must not be shared between goroutines. After Release, the
// Receiver must not be used again.
type Receiver[T any] struct {
	q    *Queue[T]
	once sync.Once
}

// TryRecv removes and returns the head item without blocking.
func (r *Receiver[T]) TryRecv() (T, bool) {
	v, ok, _ := r.q.pop()
	return v, ok
}

// Recv removes and returns the head item, waiting for one to be pushed if
// the queue is empty. It returns ErrClosed if the queue is closed while
// empty, and ctx.Err() if ctx ends first. An item is only removed when it
// is returned.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, ok, closed := r.q.pop()
		if ok {
			return v, nil
		}
		if closed {
			return v, ErrClosed
		}

		select {
		case <-r.q.notify:
		case <-r.q.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Drain removes every item currently queued, in order, without blocking.
func (r *Receiver[T]) Drain() []T {
	var items []T
	for {
		v, ok := r.TryRecv()
		if !ok {
			return items
		}
		items = append(items, v)
	}
}

// Release gives up exclusive access. Safe to call multiple times.
func (r *Receiver[T]) Release() {
	r.once.Do(func() {
		<-r.q.token
	})
}
