// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import "code.hybscloud.com/atomix"

type zipPub[T, U, R any] struct {
	source Publisher[T]
	other  []U
	zipper func(T, U) R
}

// ZipWithSlice pairs each value of source with the next element of other
// and emits zipper applied to the pair. The sequence is as long as the
// shorter side: when other is exhausted the source contract is cancelled
// and the sequence completes. An empty other completes immediately,
// without subscribing to source at all.
func ZipWithSlice[T, U, R any](source Publisher[T], other []U, zipper func(T, U) R) Publisher[R] {
	return zipPub[T, U, R]{source: source, other: other, zipper: zipper}
}

func (p zipPub[T, U, R]) Subscribe(s Subscriber[R]) {
	if len(p.other) == 0 {
		completeTo(s)
		return
	}
	p.source.Subscribe(&zipSub[T, U, R]{
		actual: s,
		other:  p.other,
		zipper: p.zipper,
		serial: nextSerial(),
	})
}

type zipSub[T, U, R any] struct {
	actual Subscriber[R]
	other  []U
	idx    int
	zipper func(T, U) R
	parent Subscription
	errv   error
	done   atomix.Uint32
	serial Serial
}

func (s *zipSub[T, U, R]) OnSubscribe(sub Subscription) {
	if !setParent(&s.parent, sub) {
		return
	}
	s.actual.OnSubscribe(s)
}

func (s *zipSub[T, U, R]) OnNext(t T) {
	if s.done.Load() != 0 {
		onNextDropped(t)
		return
	}
	u := s.other[s.idx]
	r, err := guard2(s.zipper, t, u)
	if err != nil {
		s.errv = onOperatorError(s.parent, err, t)
		s.done.Store(1)
		s.parent.Cancel()
		s.actual.OnError(s.errv)
		return
	}
	s.actual.OnNext(r)
	s.idx++
	if s.idx == len(s.other) {
		s.done.Store(1)
		s.parent.Cancel()
		s.actual.OnComplete()
	}
}

func (s *zipSub[T, U, R]) OnError(err error) {
	if s.done.Load() != 0 {
		onErrorDropped(err)
		return
	}
	s.errv = err
	s.done.Store(1)
	s.actual.OnError(err)
}

func (s *zipSub[T, U, R]) OnComplete() {
	if !s.done.CompareAndSwap(0, 1) {
		return
	}
	s.actual.OnComplete()
}

func (s *zipSub[T, U, R]) Request(n int64) {
	s.parent.Request(n)
}

func (s *zipSub[T, U, R]) Cancel() {
	s.parent.Cancel()
}

func (s *zipSub[T, U, R]) Scan(key Key) (any, bool) {
	switch key {
	case KeyParent:
		return s.parent, true
	case KeyActual:
		return s.actual, true
	case KeyTerminated:
		return s.done.Load() != 0, true
	case KeyBuffered:
		return len(s.other) - s.idx, true
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
