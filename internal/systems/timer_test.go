package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerFiresInDueOrder(t *testing.T) {
	tm := NewTimer()
	var fired []string
	record := func(key string) { fired = append(fired, key) }

	tm.After(30*time.Millisecond, "late", record)
	tm.After(10*time.Millisecond, "early", record)
	tm.After(10*time.Millisecond, "early-2", record)
	assert.Equal(t, 3, tm.Pending())

	tm.Update(5 * time.Millisecond)
	assert.Empty(t, fired)

	tm.Update(5 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-2"}, fired)

	tm.Update(time.Second)
	assert.Equal(t, []string{"early", "early-2", "late"}, fired)
	assert.Equal(t, 0, tm.Pending())
	assert.Equal(t, 1010*time.Millisecond, tm.Now())
}

func TestTimerCancelAndPause(t *testing.T) {
	tm := NewTimer()
	var fired []string
	cancel := tm.After(time.Millisecond, "cancelled", func(k string) { fired = append(fired, k) })
	tm.After(time.Millisecond, "kept", func(k string) { fired = append(fired, k) })
	cancel()

	tm.SetPaused(true)
	tm.Update(time.Second)
	assert.Empty(t, fired)
	assert.Equal(t, time.Duration(0), tm.Now())

	tm.SetPaused(false)
	tm.Update(time.Millisecond)
	assert.Equal(t, []string{"kept"}, fired)
}

func TestTimerCallbackCanReschedule(t *testing.T) {
	tm := NewTimer()
	var n int
	var again TimerFunc
	again = func(key string) {
		n++
		if n < 3 {
			tm.After(time.Millisecond, key, again)
		}
	}
	tm.After(time.Millisecond, "loop", again)

	for i := 0; i < 5; i++ {
		tm.Update(time.Millisecond)
	}
	assert.Equal(t, 3, n)
}
