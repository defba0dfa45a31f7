package queue

import (
	"testing"
	"time"

	"github.com/casualjim/hoot/messages"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgWithPriority(p messages.Priority) messages.Message {
	return messages.New("sender", "recipient", nil).WithPriority(p)
}

func TestPriorityOrderWithFIFOTies(t *testing.T) {
	q := New(10)

	sent := []messages.Priority{1, 4, 2, 4, 1}
	var ids []string
	for _, p := range sent {
		m := msgWithPriority(p)
		ids = append(ids, m.ID)
		require.True(t, q.Put(m))
	}

	var gotPriorities []messages.Priority
	var gotIDs []string
	for {
		m, ok := q.Get()
		if !ok {
			break
		}
		gotPriorities = append(gotPriorities, m.Priority)
		gotIDs = append(gotIDs, m.ID)
	}

	assert.Equal(t, []messages.Priority{4, 4, 2, 1, 1}, gotPriorities)
	// ties keep send order: first 4 sent (index 1) before second 4 (index 3),
	// first 1 (index 0) before second 1 (index 4)
	assert.Equal(t, []string{ids[1], ids[3], ids[2], ids[0], ids[4]}, gotIDs)
}

func TestCapacityRejection(t *testing.T) {
	q := New(2)

	assert.True(t, q.Put(msgWithPriority(messages.PriorityLow)))
	assert.True(t, q.Put(msgWithPriority(messages.PriorityLow)))
	assert.False(t, q.Put(msgWithPriority(messages.PriorityCritical)))
	assert.Equal(t, 2, q.Len())
}

func TestGetOnEmpty(t *testing.T) {
	q := New(1)
	_, ok := q.Get()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := New(2)
	m := msgWithPriority(messages.PriorityHigh)
	require.True(t, q.Put(m))

	peeked, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, m.ID, peeked.ID)
	assert.Equal(t, 1, q.Len())

	got, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 0, q.Len())
}

func TestClearExpiredRemovesOnlyElapsed(t *testing.T) {
	q := New(10)

	expired := msgWithPriority(messages.PriorityHigh).WithTTL(0)
	expired.Timestamp = strfmt.DateTime(time.Now().Add(-time.Second))
	forever := msgWithPriority(messages.PriorityLow)
	longLived := msgWithPriority(messages.PriorityNormal).WithTTL(time.Hour)

	require.True(t, q.Put(expired))
	require.True(t, q.Put(forever))
	require.True(t, q.Put(longLived))

	assert.Equal(t, 1, q.ClearExpired())
	assert.Equal(t, 2, q.Len())

	// survivors keep their relative priority order
	first, _ := q.Get()
	second, _ := q.Get()
	assert.Equal(t, longLived.ID, first.ID)
	assert.Equal(t, forever.ID, second.ID)
}

func TestClearExpiredNoExpiry(t *testing.T) {
	q := New(4)
	require.True(t, q.Put(msgWithPriority(messages.PriorityLow)))
	assert.Equal(t, 0, q.ClearExpired())
	assert.Equal(t, 1, q.Len())
}

func TestExpiredMessageStillInserts(t *testing.T) {
	q := New(1)
	stale := msgWithPriority(messages.PriorityLow).WithTTL(0)
	stale.Timestamp = strfmt.DateTime(time.Now().Add(-time.Minute))
	assert.True(t, q.Put(stale))
	assert.Equal(t, 1, q.Len())
}
