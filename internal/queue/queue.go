// Package queue implements the bounded, priority-ordered holding area for
// in-flight bus messages. Higher priority dequeues first; within a priority
// tier messages leave in the order they arrived. Expiry is handled by an
// explicit sweep pass rather than incrementally, keeping the heap invariant
// trivial to reason about.
package queue

import (
	"container/heap"
	"sync"

	"github.com/casualjim/hoot/messages"
)

type item struct {
	msg messages.Message
	seq uint64
}

// items implements heap.Interface ordered by (-priority, insertion sequence).
type items []item

func (h items) Len() int { return len(h) }

func (h items) Less(i, j int) bool {
	if h[i].msg.Priority != h[j].msg.Priority {
		return h[i].msg.Priority > h[j].msg.Priority
	}
	return h[i].seq < h[j].seq
}

func (h items) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *items) Push(x any) { *h = append(*h, x.(item)) }

func (h *items) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = item{}
	*h = old[:n-1]
	return it
}

// Queue is a bounded priority queue. It is safe for concurrent use by many
// producers and a single draining consumer.
type Queue struct {
	mu       sync.Mutex
	heap     items
	seq      uint64
	capacity int
}

// New creates a queue that holds at most capacity messages.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		heap:     make(items, 0, capacity),
		capacity: capacity,
	}
}

// Put inserts a message, returning false without side effects when the queue
// is at capacity. Expiry is not checked here; a message with an elapsed TTL
// still inserts and is collected by the next sweep.
func (q *Queue) Put(msg messages.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) >= q.capacity {
		return false
	}
	heap.Push(&q.heap, item{msg: msg, seq: q.seq})
	q.seq++
	return true
}

// Get pops the highest-priority message. It never blocks.
func (q *Queue) Get() (messages.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		return messages.Message{}, false
	}
	it := heap.Pop(&q.heap).(item)
	return it.msg, true
}

// Peek returns the highest-priority message without removing it.
func (q *Queue) Peek() (messages.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		return messages.Message{}, false
	}
	return q.heap[0].msg, true
}

// ClearExpired removes every message whose TTL has elapsed and returns how
// many were dropped. This is the only O(n) operation on the queue and runs
// from the periodic sweep, never the hot path.
func (q *Queue) ClearExpired() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.heap[:0]
	removed := 0
	for _, it := range q.heap {
		if it.msg.Expired() {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0
	}
	q.heap = kept
	heap.Init(&q.heap)
	return removed
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Cap returns the configured capacity.
func (q *Queue) Cap() int {
	return q.capacity
}
