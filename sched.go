// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"sync"
	"time"
)

// Canceller is a handle on scheduled work.
type Canceller interface {
	// Cancel prevents the task from running if it has not started.
	Cancel()
}

// Scheduler is the execution-context collaborator: the engine core never
// spawns goroutines, it submits work to whatever Scheduler the caller
// chose. Implementations must be safe for concurrent Schedule calls.
type Scheduler interface {
	// Schedule submits task to run after delay (immediately when
	// non-positive) and returns a cancellable handle.
	Schedule(task func(), delay time.Duration) Canceller
	// Dispose releases all scheduled work; subsequent Schedule calls
	// return an already-cancelled handle.
	Dispose()
}

// NewTimerScheduler returns a Scheduler backed by runtime timers; each
// task runs on its own timer goroutine.
func NewTimerScheduler() Scheduler {
	return &timerScheduler{timers: make(map[*timerHandle]struct{})}
}

type timerScheduler struct {
	mu       sync.Mutex
	timers   map[*timerHandle]struct{}
	disposed bool
}

type timerHandle struct {
	s *timerScheduler
	t *time.Timer
}

func (h *timerHandle) Cancel() {
	if h.t != nil {
		h.t.Stop()
	}
	if h.s != nil {
		h.s.forget(h)
	}
}

func (s *timerScheduler) Schedule(task func(), delay time.Duration) Canceller {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return &timerHandle{}
	}
	h := &timerHandle{s: s}
	h.t = time.AfterFunc(delay, func() {
		s.forget(h)
		task()
	})
	s.timers[h] = struct{}{}
	s.mu.Unlock()
	return h
}

func (s *timerScheduler) Dispose() {
	s.mu.Lock()
	s.disposed = true
	for h := range s.timers {
		h.t.Stop()
	}
	s.timers = make(map[*timerHandle]struct{})
	s.mu.Unlock()
}

func (s *timerScheduler) forget(h *timerHandle) {
	s.mu.Lock()
	delete(s.timers, h)
	s.mu.Unlock()
}
