package hoot

import (
	"context"
	"testing"

	"github.com/casualjim/hoot/groups"
	"github.com/casualjim/hoot/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDirect(t *testing.T) {
	bus := New()
	require.NoError(t, bus.Subscribe("x", (&recordingHandler{}).handle))

	got := bus.resolve(context.Background(), messages.New("a", "x", nil))
	assert.Equal(t, []string{"x"}, got)

	assert.Empty(t, bus.resolve(context.Background(), messages.New("a", "nobody", nil)))
}

func TestResolveBroadcastExcludesSender(t *testing.T) {
	bus := New()
	for _, addr := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Subscribe(addr, (&recordingHandler{}).handle))
	}

	got := bus.resolve(context.Background(), messages.New("b", messages.Broadcast, nil))
	assert.ElementsMatch(t, []string{"a", "c"}, got)
}

func TestResolveGroupFiltersToSubscribed(t *testing.T) {
	bus := New(Groups(groups.Static{
		"workers": {"x", "y", "z", "x"},
	}))
	require.NoError(t, bus.Subscribe("x", (&recordingHandler{}).handle))
	require.NoError(t, bus.Subscribe("z", (&recordingHandler{}).handle))

	got := bus.resolve(context.Background(), messages.New("a", messages.Group("workers"), nil))
	assert.Equal(t, []string{"x", "z"}, got, "deduped, limited to subscribers, sorted")
}

func TestResolveGroupWithoutResolver(t *testing.T) {
	bus := New()
	require.NoError(t, bus.Subscribe("x", (&recordingHandler{}).handle))

	assert.Empty(t, bus.resolve(context.Background(), messages.New("a", messages.Group("workers"), nil)))
}

func TestResolveGroupResolverError(t *testing.T) {
	bus := New(Groups(groups.ResolverFunc(func(context.Context, string) ([]string, error) {
		return nil, assert.AnError
	})))

	assert.Empty(t, bus.resolve(context.Background(), messages.New("a", messages.Group("workers"), nil)))
}

func TestUnroutableDirectCountsOneFailure(t *testing.T) {
	bus := New()

	require.True(t, bus.Send(messages.New("a", "ghost", nil)))
	drain(bus)

	stats := bus.Statistics()
	assert.EqualValues(t, 1, stats.MessagesFailed)
	assert.EqualValues(t, 0, stats.MessagesDelivered)
	assert.Equal(t, 0, bus.backlog.Len(), "nothing to retry when nobody is subscribed")
}

func TestUndeliverableBroadcastIsNotAFailure(t *testing.T) {
	bus := New()

	require.True(t, bus.Send(messages.New("a", messages.Broadcast, nil)))
	drain(bus)

	assert.EqualValues(t, 0, bus.Statistics().MessagesFailed)
}

func TestGroupDeliveryLandsInBacklogPerMember(t *testing.T) {
	bus := New(Groups(groups.Static{"ops": {"good", "bad"}}))
	rec := &recordingHandler{}
	require.NoError(t, bus.Subscribe("good", rec.handle))
	require.NoError(t, bus.Subscribe("bad", failingHandler))
	drain(bus) // welcomes; bad's welcome lands in the backlog

	require.True(t, bus.Send(messages.New("a", messages.Group("ops"), "deploy")))
	drain(bus)

	stats := bus.Statistics()
	assert.EqualValues(t, 2, stats.MessagesDelivered) // good's welcome + group message
	assert.EqualValues(t, 2, stats.MessagesFailed)    // bad's welcome + group message
	require.Len(t, bus.backlog.Take("bad"), 2)

	got := rec.received()
	last := got[len(got)-1]
	assert.Equal(t, "deploy", last.Content)
	assert.Equal(t, "good", last.Recipient)
}
