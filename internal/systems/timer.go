package systems

import (
	"container/heap"
	"time"

	"github.com/l1jgo/uihost/internal/core/system"
)

// TimerFunc runs when a scheduled timer fires.
type TimerFunc func(key string)

type timerEntry struct {
	due   time.Duration
	seq   uint64
	key   string
	fn    TimerFunc
	index int
	dead  bool
}

type timerQueue []*timerEntry

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}
func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *timerQueue) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*q)
	*q = append(*q, e)
}
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Timer fires keyed callbacks once their wait time elapses. Time only moves
// while the timer is ticked and not paused.
type Timer struct {
	queue  timerQueue
	now    time.Duration
	seq    uint64
	paused bool
}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) Phase() system.Phase { return system.PhasePreUpdate }

// Update advances the clock by dt and fires every due timer in due order.
// Timers scheduled for the same instant fire in scheduling order.
func (t *Timer) Update(dt time.Duration) {
	if t.paused {
		return
	}
	t.now += dt
	for t.queue.Len() > 0 {
		next := t.queue[0]
		if next.due > t.now {
			return
		}
		heap.Pop(&t.queue)
		if next.dead {
			continue
		}
		next.fn(next.key)
	}
}

// After schedules fn to run with key once wait has elapsed. The returned
// func cancels it.
func (t *Timer) After(wait time.Duration, key string, fn TimerFunc) (cancel func()) {
	t.seq++
	e := &timerEntry{due: t.now + wait, seq: t.seq, key: key, fn: fn}
	heap.Push(&t.queue, e)
	return func() { e.dead = true }
}

// SetPaused stops or resumes the clock.
func (t *Timer) SetPaused(p bool) { t.paused = p }

// Now returns the elapsed timer clock.
func (t *Timer) Now() time.Duration { return t.now }

// Pending returns the number of scheduled timers, cancelled ones included.
func (t *Timer) Pending() int { return t.queue.Len() }
