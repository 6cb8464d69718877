// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/gitter/lib/clock"
)

// watchdog calls onIdle if kick is not called for timeout. While
// paused it cannot fire; the next kick re-arms it.
type watchdog struct {
	timer   *clock.Timer
	timeout time.Duration
	expired atomic.Bool
}

func startWatchdog(source clock.Clock, timeout time.Duration, onIdle func()) *watchdog {
	w := &watchdog{timeout: timeout}
	w.timer = source.AfterFunc(timeout, func() {
		w.expired.Store(true)
		onIdle()
	})
	return w
}

func (w *watchdog) kick() {
	if w.expired.Load() {
		return
	}
	w.timer.Reset(w.timeout)
}

func (w *watchdog) pause() { w.timer.Stop() }

func (w *watchdog) fired() bool { return w.expired.Load() }

func (w *watchdog) stop() { w.timer.Stop() }
