package hoot

import (
	"time"

	"github.com/casualjim/hoot/messages"
)

// defaultHistoryLimit caps history results when the query does not set one.
const defaultHistoryLimit = 100

// HistoryQuery narrows a message history lookup. Zero values mean "no
// constraint" for that field.
type HistoryQuery struct {
	// Address matches messages where it is the sender or the recipient.
	Address string

	// Type matches messages of that kind.
	Type messages.Type

	// Limit bounds the number of results; defaults to 100.
	Limit int

	// Since keeps only messages created after this instant.
	Since time.Time
}

func (q HistoryQuery) matches(msg messages.Message) bool {
	if q.Address != "" && msg.Sender != q.Address && msg.Recipient != q.Address {
		return false
	}
	if q.Type != "" && msg.Type != q.Type {
		return false
	}
	if !q.Since.IsZero() && !time.Time(msg.Timestamp).After(q.Since) {
		return false
	}
	return true
}

// History returns retained messages matching the query, most recent first.
// The history is bounded; messages evicted from the ring are gone regardless
// of what the query asks for.
func (b *Bus) History(q HistoryQuery) []messages.Message {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	snapshot := b.history.Snapshot()
	out := make([]messages.Message, 0, min(limit, len(snapshot)))
	for i := len(snapshot) - 1; i >= 0 && len(out) < limit; i-- {
		if q.matches(snapshot[i]) {
			out = append(out, snapshot[i])
		}
	}
	return out
}
