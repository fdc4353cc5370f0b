package timer

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimers_Start(t *testing.T) {
	timers := New(slog.Default())

	var fired atomic.Int32
	timers.Start("test", 10*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, timers.Active("test"))

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.False(t, timers.Active("test"))
}

func TestTimers_StartCancelsPrevious(t *testing.T) {
	timers := New(slog.Default())

	var first, second atomic.Int32
	timers.Start("test", 50*time.Millisecond, func() { first.Add(1) })
	timers.Start("test", 10*time.Millisecond, func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, first.Load())
}

func TestTimers_ExpiryKeepsRearmedTimer(t *testing.T) {
	timers := New(slog.Default())

	// a handle that fired just before the name was re-armed must not
	// untrack the armed timer when its expiry runs
	stale := time.AfterFunc(time.Hour, func() {})
	stale.Stop()

	var fired atomic.Int32
	timers.Start("test", time.Hour, func() { fired.Add(1) })
	timers.expire("test", stale)
	assert.True(t, timers.Active("test"))

	timers.Cancel("test")
	assert.False(t, timers.Active("test"))

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTimers_Cancel(t *testing.T) {
	timers := New(slog.Default())

	var fired atomic.Int32
	timers.Start("test", 20*time.Millisecond, func() { fired.Add(1) })
	timers.Cancel("test")
	assert.False(t, timers.Active("test"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())

	// cancelling an unarmed timer is a no-op
	timers.Cancel("test")
}

func TestTimers_CancelAll(t *testing.T) {
	timers := New(slog.Default())

	var fired atomic.Int32
	timers.Start("one", 20*time.Millisecond, func() { fired.Add(1) })
	timers.Start("two", 20*time.Millisecond, func() { fired.Add(1) })
	timers.CancelAll()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, timers.Active("one"))
	assert.False(t, timers.Active("two"))
}
