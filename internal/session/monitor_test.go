package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_Defaults(t *testing.T) {
	t.Parallel()

	m := NewMonitor(0, 0, nil)
	assert.Equal(t, DefaultHeartbeatInterval, m.interval)
	assert.Equal(t, DefaultTimeout, m.timeout)
	assert.WithinDuration(t, time.Now(), m.Now(), time.Second)
}

func TestMonitor_Expired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMonitor(time.Second, 5*time.Second, clock.Now)

	m.Touch(2)
	m.Touch(1)
	clock.Advance(3 * time.Second)
	m.Touch(3)

	clock.Advance(2 * time.Second)
	assert.Empty(t, m.Expired(), "exactly at the timeout is still alive")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []int{1, 2}, m.Expired())

	m.Touch(1)
	assert.Equal(t, []int{2}, m.Expired())

	m.Forget(2)
	assert.Empty(t, m.Expired())
	_, ok := m.LastSeen(2)
	assert.False(t, ok)

	seen, ok := m.LastSeen(3)
	assert.True(t, ok)
	assert.Equal(t, clock.Now().Add(-2*time.Second-time.Millisecond), seen)
}

func TestMonitor_HeartbeatDue(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMonitor(time.Second, 5*time.Second, clock.Now)

	assert.True(t, m.HeartbeatDue(), "first heartbeat is due immediately")
	assert.False(t, m.HeartbeatDue())

	clock.Advance(999 * time.Millisecond)
	assert.False(t, m.HeartbeatDue())

	clock.Advance(time.Millisecond)
	assert.True(t, m.HeartbeatDue())
	assert.False(t, m.HeartbeatDue())
}
