package attention

import (
	"sort"
	"sync"
	"time"
)

// fakeClock delivers ticks and timer fires only from Advance. Channels are
// unbuffered so every delivery is a hand-off to the monitor goroutine;
// onFire runs after each delivery and lets a test wait for the monitor to
// finish handling it.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	waiters []*fakeWaiter
	onFire  func()
}

type fakeWaiter struct {
	at      time.Time
	period  time.Duration
	seq     int
	ch      chan time.Time
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) add(d, period time.Duration) *fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	w := &fakeWaiter{at: c.now.Add(d), period: period, seq: c.seq, ch: make(chan time.Time)}
	c.waiters = append(c.waiters, w)
	return w
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker { return fakeTicker{c, c.add(d, d)} }

func (c *fakeClock) NewTimer(d time.Duration) Timer { return fakeTimer{c, c.add(d, 0)} }

func (c *fakeClock) stop(w *fakeWaiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := !w.stopped
	w.stopped = true
	return was
}

// Advance moves time forward by d, delivering every due tick and timer in
// time order. Ties go to the older waiter.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		w := c.due(target)
		if w == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		at := w.at
		c.now = at
		if w.period > 0 {
			w.at = w.at.Add(w.period)
		} else {
			w.stopped = true
		}
		c.mu.Unlock()

		w.ch <- at
		if c.onFire != nil {
			c.onFire()
		}
	}
}

func (c *fakeClock) due(target time.Time) *fakeWaiter {
	var live []*fakeWaiter
	for _, w := range c.waiters {
		if !w.stopped {
			live = append(live, w)
		}
	}
	c.waiters = live
	sort.Slice(live, func(i, j int) bool {
		if !live[i].at.Equal(live[j].at) {
			return live[i].at.Before(live[j].at)
		}
		return live[i].seq < live[j].seq
	})
	if len(live) == 0 || live[0].at.After(target) {
		return nil
	}
	return live[0]
}

type fakeTicker struct {
	c *fakeClock
	w *fakeWaiter
}

func (t fakeTicker) C() <-chan time.Time { return t.w.ch }
func (t fakeTicker) Stop()               { t.c.stop(t.w) }

type fakeTimer struct {
	c *fakeClock
	w *fakeWaiter
}

func (t fakeTimer) C() <-chan time.Time { return t.w.ch }
func (t fakeTimer) Stop() bool          { return t.c.stop(t.w) }
