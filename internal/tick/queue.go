// Package tick defers work to the next step of the logic loop.
package tick

import "sync"

// Queue is a FIFO of callbacks run once per tick.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	tick    uint64
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// RunLater schedules fn for the next call to RunPending.
func (q *Queue) RunLater(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// RunPending runs every callback scheduled before this call, in submission
// order. Callbacks scheduled while running wait for the next tick.
func (q *Queue) RunPending() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.tick++
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of waiting callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Tick returns how many times RunPending has been called.
func (q *Queue) Tick() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tick
}
