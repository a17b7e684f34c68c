package queue

import (
	"context"
	"sync"
)

// Queue is a thread-safe FIFO keyed queue. Pushing a key that is already
// queued replaces its value in place, so a burst of updates for the same key
// collapses into the latest one. A bounded queue evicts its oldest key to
// make room.
type Queue[K comparable, V any] struct {
	mu       sync.Mutex
	order    []K
	items    map[K]V
	capacity int
	ready    chan struct{}
	space    chan struct{}
	waiters  int
}

// New creates an empty queue holding at most capacity keys. A capacity of
// zero or less means unbounded.
func New[K comparable, V any](capacity int) *Queue[K, V] {
	return &Queue[K, V]{
		order:    make([]K, 0),
		items:    make(map[K]V),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		space:    make(chan struct{}),
	}
}

// Push queues v under k. It reports whether an older key had to be evicted.
func (q *Queue[K, V]) Push(k K, v V) (evicted bool) {
	q.mu.Lock()
	if _, ok := q.items[k]; ok {
		q.items[k] = v
		q.mu.Unlock()
		q.signal()
		return false
	}
	if q.capacity > 0 && len(q.order) >= q.capacity {
		oldest := q.order[0]
		q.order = q.order[1:]
		delete(q.items, oldest)
		evicted = true
	}
	q.order = append(q.order, k)
	q.items[k] = v
	q.mu.Unlock()

	q.signal()
	return evicted
}

// PushWait queues v under k without evicting anything. When the queue is
// full and k is not already queued it waits for a Pop or Clear, or for ctx.
// waited reports whether it had to wait.
func (q *Queue[K, V]) PushWait(ctx context.Context, k K, v V) (waited bool, err error) {
	for {
		q.mu.Lock()
		_, queued := q.items[k]
		if queued || q.capacity <= 0 || len(q.order) < q.capacity {
			if !queued {
				q.order = append(q.order, k)
			}
			q.items[k] = v
			q.mu.Unlock()
			q.signal()
			return waited, nil
		}
		space := q.space
		q.waiters++
		q.mu.Unlock()

		waited = true
		select {
		case <-space:
			err = nil
		case <-ctx.Done():
			err = ctx.Err()
		}

		q.mu.Lock()
		q.waiters--
		q.mu.Unlock()
		if err != nil {
			return waited, err
		}
	}
}

// Waiters returns how many PushWait calls are blocked on a full queue.
func (q *Queue[K, V]) Waiters() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiters
}

// Pop removes and returns the oldest entry. ok is false if the queue is empty.
func (q *Queue[K, V]) Pop() (k K, v V, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return k, v, false
	}
	full := q.fullLocked()
	k = q.order[0]
	q.order = q.order[1:]
	v = q.items[k]
	delete(q.items, k)
	if full {
		q.wakeLocked()
	}
	return k, v, true
}

// Ready is signalled after every Push. It holds at most one pending signal.
func (q *Queue[K, V]) Ready() <-chan struct{} {
	return q.ready
}

// Empty returns true if the queue has no items.
func (q *Queue[K, V]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order) == 0
}

// Len returns the number of queued keys.
func (q *Queue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Clear removes all items from the queue.
func (q *Queue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	full := q.fullLocked()
	q.order = q.order[:0]
	q.items = make(map[K]V)
	if full {
		q.wakeLocked()
	}
}

func (q *Queue[K, V]) fullLocked() bool {
	return q.capacity > 0 && len(q.order) >= q.capacity
}

// wakeLocked releases every PushWait blocked on a full queue.
func (q *Queue[K, V]) wakeLocked() {
	close(q.space)
	q.space = make(chan struct{})
}

func (q *Queue[K, V]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
