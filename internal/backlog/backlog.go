// Package backlog stores messages that failed delivery, keyed by recipient
// address, until they are retried or aged out by the sweep. Retry is
// best-effort: purged entries are gone, there is no guaranteed delivery.
package backlog

import (
	"sync"
	"time"

	"github.com/casualjim/hoot/messages"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Store maps addresses to the ordered list of messages that failed delivery
// to them. Addresses iterate in first-failure order, which makes retry-all
// deterministic.
type Store struct {
	mu      sync.Mutex
	entries *orderedmap.OrderedMap[string, []messages.Message]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: orderedmap.New[string, []messages.Message](),
	}
}

// Append records a failed delivery for the address.
func (s *Store) Append(address string, msg messages.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, _ := s.entries.Get(address)
	s.entries.Set(address, append(pending, msg))
}

// Take removes and returns the address's pending messages. The backlog is
// cleared before the caller sees the messages, so a retry that fails again
// re-appends instead of double-counting.
func (s *Store) Take(address string) []messages.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.entries.Get(address)
	if !ok {
		return nil
	}
	s.entries.Delete(address)
	return pending
}

// Addresses returns every address with pending messages, in first-failure
// order.
func (s *Store) Addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Drop discards the address's pending messages. No-op for unknown addresses.
func (s *Store) Drop(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Delete(address)
}

// Purge removes messages created before the retention window and returns how
// many were dropped. Addresses left with no messages are removed entirely.
func (s *Store) Purge(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	purged := 0

	var empty []string
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		kept := pair.Value[:0]
		for _, msg := range pair.Value {
			if time.Time(msg.Timestamp).Before(cutoff) {
				purged++
				continue
			}
			kept = append(kept, msg)
		}
		if len(kept) == 0 {
			empty = append(empty, pair.Key)
			continue
		}
		s.entries.Set(pair.Key, kept)
	}
	for _, address := range empty {
		s.entries.Delete(address)
	}
	return purged
}

// Len returns the number of addresses with pending messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}
