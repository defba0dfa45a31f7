package hoot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	bus := New()

	assert.Equal(t, 1000, bus.queue.Cap())
	assert.Equal(t, 10000, bus.history.Cap())
	assert.Equal(t, 100*time.Millisecond, bus.idleInterval)
	assert.Equal(t, 5*time.Minute, bus.sweepInterval)
	assert.Equal(t, time.Hour, bus.backlogRetention)
	assert.NotEmpty(t, bus.name)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	bus := New(
		Name("dispatch"),
		QueueCapacity(5),
		HistoryCapacity(50),
		IdleInterval(time.Second),
		SweepInterval(time.Minute),
		BacklogRetention(30*time.Minute),
	)

	assert.Equal(t, "dispatch", bus.name)
	assert.Equal(t, 5, bus.queue.Cap())
	assert.Equal(t, 50, bus.history.Cap())
	assert.Equal(t, time.Second, bus.idleInterval)
	assert.Equal(t, time.Minute, bus.sweepInterval)
	assert.Equal(t, 30*time.Minute, bus.backlogRetention)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "stopped", StateStopped.String())
	require.Equal(t, "starting", StateStarting.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "stopping", StateStopping.String())
	require.Equal(t, "unknown", State(42).String())
}
