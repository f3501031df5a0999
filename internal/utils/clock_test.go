package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_AfterFuncFiresInOrder(t *testing.T) {
	c := NewFakeClock(epoch)
	var fired []string

	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "first") })

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"first"}, fired)

	c.Advance(time.Second)
	assert.Equal(t, []string{"first", "second"}, fired)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), c.Now())
}

func TestFakeClock_StopPreventsFire(t *testing.T) {
	c := NewFakeClock(epoch)
	fired := false

	timer := c.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, c.PendingTimers())
}

// TestFakeClock_TimerSeesItsDeadline проверяет, что во время срабатывания
// таймера Now() равно его дедлайну, а не конечной точке Advance.
func TestFakeClock_TimerSeesItsDeadline(t *testing.T) {
	c := NewFakeClock(epoch)
	var seen time.Time

	c.AfterFunc(time.Second, func() { seen = c.Now() })
	c.Advance(10 * time.Second)

	assert.Equal(t, epoch.Add(time.Second), seen)
}

func TestFakeClock_TimerArmedFromCallback(t *testing.T) {
	c := NewFakeClock(epoch)
	count := 0

	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, rearm)
		}
	}
	c.AfterFunc(time.Second, rearm)

	c.Advance(5 * time.Second)
	assert.Equal(t, 3, count)
}

func TestFakeClock_JumpDoesNotFire(t *testing.T) {
	c := NewFakeClock(epoch)
	fired := false
	c.AfterFunc(time.Second, func() { fired = true })

	c.Jump(time.Hour)

	assert.False(t, fired)
	assert.Equal(t, epoch.Add(time.Hour), c.Now())
	assert.Equal(t, 1, c.PendingTimers())
}

func TestFakeClock_Ticker(t *testing.T) {
	c := NewFakeClock(epoch)
	tk := c.NewTicker(time.Second)

	c.Advance(time.Second)
	select {
	case at := <-tk.C():
		assert.Equal(t, epoch.Add(time.Second), at)
	default:
		require.Fail(t, "expected a tick")
	}

	tk.Stop()
	c.Advance(5 * time.Second)
	select {
	case <-tk.C():
		require.Fail(t, "stopped ticker must not tick")
	default:
	}
}

func TestRealClock(t *testing.T) {
	c := NewRealClock()
	done := make(chan struct{})

	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
