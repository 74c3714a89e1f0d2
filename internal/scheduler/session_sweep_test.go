package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	idle  time.Duration
}

func (c *countingSweeper) Sweep(idle time.Duration) int {
	c.calls.Add(1)
	c.idle = idle
	return 2
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.NoError(t, ValidateSchedule("0 3 * * 1"))
	assert.Error(t, ValidateSchedule("every five minutes"))
	assert.Error(t, ValidateSchedule("0 */5 * * * *"))
}

func TestSessionSweeper_RunOnce(t *testing.T) {
	sw := &countingSweeper{}
	s := NewSessionSweeper(sw, "*/5 * * * *", 30*time.Minute)

	s.RunOnce()
	assert.Equal(t, int32(1), sw.calls.Load())
	assert.Equal(t, 30*time.Minute, sw.idle)
}

func TestSessionSweeper_StartStop(t *testing.T) {
	s := NewSessionSweeper(&countingSweeper{}, "*/5 * * * *", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	cancel()
	require.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)
}

func TestSessionSweeper_InvalidSchedule(t *testing.T) {
	s := NewSessionSweeper(&countingSweeper{}, "not a schedule", time.Minute)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSessionSweeper_DisabledWithoutIdle(t *testing.T) {
	s := NewSessionSweeper(&countingSweeper{}, "*/5 * * * *", 0)
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
