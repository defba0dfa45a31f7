package messages

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	msg := New("planner", "executor", "do the thing")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "planner", msg.Sender)
	assert.Equal(t, "executor", msg.Recipient)
	assert.Equal(t, TypeTask, msg.Type)
	assert.Equal(t, PriorityLow, msg.Priority)
	assert.Nil(t, msg.TTL)
	assert.False(t, msg.Expired())
}

func TestWithMethodsReturnCopies(t *testing.T) {
	base := New("a", "b", nil)
	modified := base.WithPriority(PriorityCritical).WithType(TypeError).WithTTL(time.Minute)

	assert.Equal(t, PriorityLow, base.Priority)
	assert.Nil(t, base.TTL)
	assert.Equal(t, PriorityCritical, modified.Priority)
	assert.Equal(t, TypeError, modified.Type)
	require.NotNil(t, modified.TTL)
	assert.Equal(t, time.Minute, *modified.TTL)
	assert.Equal(t, base.ID, modified.ID)
}

func TestPriorityClamp(t *testing.T) {
	assert.Equal(t, PriorityLow, Priority(0).Clamp())
	assert.Equal(t, PriorityLow, Priority(-3).Clamp())
	assert.Equal(t, PriorityCritical, Priority(9).Clamp())
	assert.Equal(t, PriorityNormal, PriorityNormal.Clamp())
}

func TestExpired(t *testing.T) {
	fresh := New("a", "b", nil).WithTTL(time.Hour)
	assert.False(t, fresh.Expired())

	stale := New("a", "b", nil).WithTTL(10 * time.Millisecond)
	stale.Timestamp = strfmt.DateTime(time.Now().Add(-time.Second))
	assert.True(t, stale.Expired())

	// zero TTL expires as soon as any time has passed, but never blocks enqueue
	instant := New("a", "b", nil).WithTTL(0)
	instant.Timestamp = strfmt.DateTime(time.Now().Add(-time.Millisecond))
	assert.True(t, instant.Expired())
}

func TestForRebindsRecipientAndClonesMeta(t *testing.T) {
	meta := map[string]any{"trace": "t-1"}
	msg := New("a", Broadcast, "hi").WithMeta(meta)

	copy := msg.For("c")
	assert.Equal(t, "c", copy.Recipient)
	assert.Equal(t, msg.ID, copy.ID)

	copy.Meta["trace"] = "t-2"
	assert.Equal(t, "t-1", msg.Meta["trace"])
}

func TestGroupHelpers(t *testing.T) {
	msg := New("a", Group("reviewers"), nil)
	name, ok := msg.GroupName()
	require.True(t, ok)
	assert.Equal(t, "reviewers", name)
	assert.False(t, msg.IsBroadcast())

	direct := New("a", "b", nil)
	_, ok = direct.GroupName()
	assert.False(t, ok)

	bcast := New("a", Broadcast, nil)
	assert.True(t, bcast.IsBroadcast())
}

func TestJSONRoundTrip(t *testing.T) {
	msg := New("planner", "executor", map[string]any{"step": float64(1)}).
		WithPriority(PriorityHigh).
		WithType(TypeToolRequest).
		WithTTL(90 * time.Second).
		WithMeta(map[string]any{"run": "r-1"})

	data, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.Sender, got.Sender)
	assert.Equal(t, msg.Recipient, got.Recipient)
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, msg.Priority, got.Priority)
	assert.Equal(t, map[string]any{"step": float64(1)}, got.Content)
	assert.Equal(t, "r-1", got.Meta["run"])
	require.NotNil(t, got.TTL)
	assert.Equal(t, 90*time.Second, *got.TTL)
}

func TestJSONOmitsAbsentTTL(t *testing.T) {
	data, err := New("a", "b", nil).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"ttl"`)

	got, err := FromJSON(data)
	require.NoError(t, err)
	assert.Nil(t, got.TTL)
}

func TestContentMap(t *testing.T) {
	msg := New("a", "b", struct {
		Answer int `json:"answer"`
	}{Answer: 42})

	got, err := msg.ContentMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": float64(42)}, got)

	_, err = New("a", "b", "just a string").ContentMap()
	assert.Error(t, err)
}
