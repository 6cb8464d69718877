// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock reading initial. Time stands still until
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. It is safe for
// concurrent use.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline
// order. A callback must not call Advance.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time

	// Exactly one of channel and callback is set.
	channel  chan time.Time
	callback func()

	armed bool
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock has been
// advanced by at least d.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.armLocked(&fakeTimer{deadline: c.current.Add(d), channel: channel})
	return channel
}

// AfterFunc schedules f to run during the Advance call that moves the
// clock past now+d. If d <= 0, f runs before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{
			stopFunc:  func() bool { return false },
			resetFunc: func(time.Duration) bool { return false },
		}
	}

	c.mu.Lock()
	timer := &fakeTimer{deadline: c.current.Add(d), callback: f}
	c.armLocked(timer)
	c.mu.Unlock()

	return &Timer{
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			wasArmed := timer.armed
			c.disarmLocked(timer)
			return wasArmed
		},
		resetFunc: func(d time.Duration) bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			wasArmed := timer.armed
			c.disarmLocked(timer)
			timer.deadline = c.current.Add(d)
			c.armLocked(timer)
			return wasArmed
		},
	}
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is now due. Channel sends never block.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current

	var due, remaining []*fakeTimer
	for _, timer := range c.pending {
		if timer.deadline.After(now) {
			remaining = append(remaining, timer)
			continue
		}
		timer.armed = false
		due = append(due, timer)
	}
	c.pending = remaining
	c.changed.Broadcast()
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, timer := range due {
		if timer.callback != nil {
			timer.callback()
			continue
		}
		select {
		case timer.channel <- now:
		default:
		}
	}
}

// WaitForTimers blocks until at least n timers are pending. Call it
// before Advance so the goroutine under test has had the chance to
// arm its timer.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of armed timers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *FakeClock) armLocked(timer *fakeTimer) {
	timer.armed = true
	c.pending = append(c.pending, timer)
	c.changed.Broadcast()
}

func (c *FakeClock) disarmLocked(timer *fakeTimer) {
	if !timer.armed {
		return
	}
	timer.armed = false
	for index, candidate := range c.pending {
		if candidate == timer {
			c.pending = append(c.pending[:index], c.pending[index+1:]...)
			break
		}
	}
	c.changed.Broadcast()
}
