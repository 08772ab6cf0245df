// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"io"

	"code.hybscloud.com/atomix"
)

type slicePub[T any] struct {
	vs []T
}

// FromSlice returns the sequence of the elements of vs, in order.
// Sync-fuseable; the slice must not be mutated while the sequence is
// active.
func FromSlice[T any](vs []T) Publisher[T] {
	return slicePub[T]{vs: vs}
}

func (p slicePub[T]) Subscribe(s Subscriber[T]) {
	if len(p.vs) == 0 {
		completeTo(s)
		return
	}
	s.OnSubscribe(&sliceSub[T]{
		actual: s,
		vs:     p.vs,
		serial: nextSerial(),
	})
}

// sliceSub mirrors rangeSub over an arbitrary element slice.
type sliceSub[T any] struct {
	actual    Subscriber[T]
	vs        []T
	idx       int
	requested atomix.Int64
	stopped   atomix.Uint32
	serial    Serial
}

func (s *sliceSub[T]) Request(n int64) {
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

func (s *sliceSub[T]) fastPath() {
	for s.idx != len(s.vs) {
		if s.stopped.Load() != 0 {
			return
		}
		v := s.vs[s.idx]
		s.idx++
		s.actual.OnNext(v)
	}
	if s.stopped.Load() == 0 {
		s.actual.OnComplete()
	}
}

func (s *sliceSub[T]) slowPath(n int64) {
	e := int64(0)
	for {
		for e != n && s.idx != len(s.vs) {
			if s.stopped.Load() != 0 {
				return
			}
			v := s.vs[s.idx]
			s.idx++
			s.actual.OnNext(v)
			e++
		}
		if s.idx == len(s.vs) {
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

func (s *sliceSub[T]) Cancel() {
	s.stopped.Store(1)
}

func (s *sliceSub[T]) RequestFusion(requested FusionMode) FusionMode {
	if requested == FusionSync {
		return FusionSync
	}
	return FusionNone
}

func (s *sliceSub[T]) Poll() (T, error) {
	if s.idx == len(s.vs) {
		var zero T
		return zero, io.EOF
	}
	v := s.vs[s.idx]
	s.idx++
	return v, nil
}

func (s *sliceSub[T]) Size() int {
	return len(s.vs) - s.idx
}

func (s *sliceSub[T]) Clear() {
	s.idx = len(s.vs)
}

func (s *sliceSub[T]) Scan(key Key) (any, bool) {
	switch key {
	case KeyActual:
		return s.actual, true
	case KeyTerminated:
		return s.idx == len(s.vs), true
	case KeyCancelled:
		return s.stopped.Load() != 0, true
	case KeyBuffered:
		return s.Size(), true
	case KeySerial:
		return s.serial, true
	}
	return nil, false
}
