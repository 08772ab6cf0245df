// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"io"

	"code.hybscloud.com/atomix"
)

type rangePub struct {
	start int
	count int
}

// Range returns the integer sequence start, start+1, ..., start+count-1.
// The source is Sync-fuseable: the sequence is fully materialized and a
// fused consumer may poll it directly. Range panics when count is
// negative.
func Range(start, count int) Publisher[int] {
	if count < 0 {
		panic("flow: Range count must be non-negative")
	}
	return rangePub{start: start, count: count}
}

func (p rangePub) Subscribe(s Subscriber[int]) {
	if p.count == 0 {
		completeTo(s)
		return
	}
	s.OnSubscribe(&rangeSub{
		actual: s,
		i:      p.start,
		end:    p.start + p.count,
		serial: nextSerial(),
	})
}

// rangeSub emits the range under demand accounting. i is advanced only
// by the goroutine that currently holds emission rights: the requester
// that moved demand from zero, or the fused consumer polling.
type rangeSub struct {
	actual    Subscriber[int]
	i, end    int
	requested atomix.Int64
	stopped   atomix.Uint32 // cancel or invalid-demand latch
	serial    Serial
}

func (s *rangeSub) Request(n int64) {
	if !validDemand(n) {
		if s.stopped.CompareAndSwap(0, 1) {
			s.actual.OnError(&DemandError{N: n})
		}
		return
	}
	if addDemand(&s.requested, n) != 0 {
		return
	}
	if n == Unbounded {
		s.fastPath()
		return
	}
	s.slowPath(n)
}

// fastPath emits without demand accounting, checking cancellation per
// element.
func (s *rangeSub) fastPath() {
	for s.i != s.end {
		if s.stopped.Load() != 0 {
			return
		}
		v := s.i
		s.i++
		s.actual.OnNext(v)
	}
	if s.stopped.Load() == 0 {
		s.actual.OnComplete()
	}
}

// slowPath emits up to the outstanding demand, re-reading the counter
// when the current batch is exhausted so demand requested concurrently
// with emission is never lost.
func (s *rangeSub) slowPath(n int64) {
	e := int64(0)
	for {
		for e != n && s.i != s.end {
			if s.stopped.Load() != 0 {
				return
			}
			v := s.i
			s.i++
			s.actual.OnNext(v)
			e++
		}
		if s.i == s.end {
			if s.stopped.Load() == 0 {
				s.actual.OnComplete()
			}
			return
		}
		n = s.requested.Load()
		if n == e {
			n = produced(&s.requested, e)
			if n == 0 {
				return
			}
			e = 0
		}
	}
}

func (s *rangeSub) Cancel() {
	s.stopped.Store(1)
}

func (s *rangeSub) RequestFusion(requested FusionMode) FusionMode {
	if requested == FusionSync {
		return FusionSync
	}
	return FusionNone
}

func (s *rangeSub) Poll() (int, error) {
	if s.i == s.end {
		return 0, io.EOF
	}
	v := s.i
	s.i++
	return v, nil
}

func (s *rangeSub) Size() int {
	return s.end - s.i
}

func (s *rangeSub) Clear() {
	s.i = s.end
}

func (s *rangeSub) Scan(key Key) (any, bool) {
	switch key {
	case KeyActual:
		return s.actual, true
	case KeyTerminated:
		return s.i == s.end, true
	case KeyCancelled:
		return s.stopped.Load() != 0, true
	case KeyBuffered:
		return s.Size(), true
	case KeySerial:
		return s.serial, true
	}
	return nil, false
}
