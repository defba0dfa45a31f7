// Package history keeps a bounded, oldest-evicted record of every message
// the bus accepted, regardless of delivery outcome.
package history

import (
	"sync"

	"github.com/casualjim/hoot/messages"
)

// Ring is a fixed-capacity ring buffer of messages.
type Ring struct {
	mu       sync.RWMutex
	buf      []messages.Message
	start    int
	size     int
	capacity int
}

// New creates a ring that retains at most capacity messages.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{
		buf:      make([]messages.Message, capacity),
		capacity: capacity,
	}
}

// Append records a message, evicting the oldest entry when full.
func (r *Ring) Append(msg messages.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < r.capacity {
		r.buf[(r.start+r.size)%r.capacity] = msg
		r.size++
		return
	}
	r.buf[r.start] = msg
	r.start = (r.start + 1) % r.capacity
}

// Snapshot returns a copy of the retained messages, oldest first.
func (r *Ring) Snapshot() []messages.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]messages.Message, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%r.capacity]
	}
	return out
}

// Len returns the number of retained messages.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the configured capacity.
func (r *Ring) Cap() int {
	return r.capacity
}
