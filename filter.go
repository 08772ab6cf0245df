// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import "code.hybscloud.com/atomix"

type filterPub[T any] struct {
	source Publisher[T]
	pred   func(T) bool
}

// Filter forwards only the values of source for which pred returns true.
// Each discarded value is replenished with a one-element upstream
// request, so downstream demand is never starved by discards. A panic
// inside pred terminates the sequence with a decorated error.
func Filter[T any](source Publisher[T], pred func(T) bool) Publisher[T] {
	return filterPub[T]{source: source, pred: pred}
}

func (p filterPub[T]) Subscribe(s Subscriber[T]) {
	p.source.Subscribe(&filterSub[T]{actual: s, pred: p.pred, serial: nextSerial()})
}

type filterSub[T any] struct {
	actual Subscriber[T]
	pred   func(T) bool
	parent Subscription
	fused  FusedSubscription[T]
	mode   FusionMode
	errv   error
	done   atomix.Uint32
	serial Serial
}

func (s *filterSub[T]) OnSubscribe(sub Subscription) {
	if !setParent(&s.parent, sub) {
		return
	}
	s.actual.OnSubscribe(s)
}

func (s *filterSub[T]) OnNext(v T) {
	if s.mode == FusionAsync {
		var zero T
		s.actual.OnNext(zero)
		return
	}
	if s.done.Load() != 0 {
		onNextDropped(v)
		return
	}
	ok, err := guard(s.pred, v)
	if err != nil {
		s.errv = onOperatorError(s.parent, err, v)
		s.done.Store(1)
		s.parent.Cancel()
		s.actual.OnError(s.errv)
		return
	}
	if !ok {
		s.parent.Request(1)
		return
	}
	s.actual.OnNext(v)
}

func (s *filterSub[T]) OnError(err error) {
	if s.done.Load() != 0 {
		onErrorDropped(err)
		return
	}
	s.errv = err
	s.done.Store(1)
	s.actual.OnError(err)
}

func (s *filterSub[T]) OnComplete() {
	if !s.done.CompareAndSwap(0, 1) {
		return
	}
	s.actual.OnComplete()
}

func (s *filterSub[T]) Request(n int64) {
	s.parent.Request(n)
}

func (s *filterSub[T]) Cancel() {
	s.parent.Cancel()
}

func (s *filterSub[T]) RequestFusion(requested FusionMode) FusionMode {
	fs, m := requestFusion[T](s.parent, requested)
	if m == FusionNone {
		return FusionNone
	}
	s.fused = fs
	s.mode = m
	return m
}

// Poll skips non-matching values. In Async mode each skipped value is
// replenished upstream; in Sync mode the materialized source needs no
// replenishment.
func (s *filterSub[T]) Poll() (T, error) {
	for {
		v, err := s.fused.Poll()
		if err != nil {
			var zero T
			return zero, err
		}
		ok, perr := guard(s.pred, v)
		if perr != nil {
			var zero T
			return zero, onOperatorError(s.parent, perr, v)
		}
		if ok {
			return v, nil
		}
		if s.mode == FusionAsync {
			s.parent.Request(1)
		}
	}
}

// Size reports the pre-filter occupancy; the post-filter count is
// unknowable without consuming the queue.
func (s *filterSub[T]) Size() int {
	return s.fused.Size()
}

func (s *filterSub[T]) Clear() {
	s.fused.Clear()
}

func (s *filterSub[T]) Scan(key Key) (any, bool) {
	switch key {
	case KeyParent:
		return s.parent, true
	case KeyActual:
		return s.actual, true
	case KeyTerminated:
		return s.done.Load() != 0, true
	case KeyError:
		if s.done.Load() != 0 && s.errv != nil {
			return s.errv, true
		}
		return nil, false
	case KeySerial:
		return s.serial, true
	}
	return nil, false
}
