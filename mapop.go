// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

type mapPub[T, U any] struct {
	source Publisher[T]
	f      func(T) U
}

// Map transforms each value of source with f. A panic inside f is caught
// at the stage boundary, decorated with the offending element, and
// delivered as a single Error signal. Fusion negotiated downstream is
// forwarded upstream unchanged; in fused mode the transformation runs on
// the poll path.
func Map[T, U any](source Publisher[T], f func(T) U) Publisher[U] {
	return mapPub[T, U]{source: source, f: f}
}

func (p mapPub[T, U]) Subscribe(s Subscriber[U]) {
	p.source.Subscribe(&mapSub[T, U]{actual: s, f: p.f, serial: nextSerial()})
}

type mapSub[T, U any] struct {
	actual Subscriber[U]
	f      func(T) U
	parent Subscription
	fused  FusedSubscription[T]
	mode   FusionMode
	errv   error
	done   atomix.Uint32
	serial Serial
}

func (s *mapSub[T, U]) OnSubscribe(sub Subscription) {
	if !setParent(&s.parent, sub) {
		return
	}
	s.actual.OnSubscribe(s)
}

func (s *mapSub[T, U]) OnNext(v T) {
	if s.mode == FusionAsync {
		// availability notification; values travel through Poll
		var zero U
		s.actual.OnNext(zero)
		return
	}
	if s.done.Load() != 0 {
		onNextDropped(v)
		return
	}
	u, err := guard(s.f, v)
	if err != nil {
		s.fail(onOperatorError(s.parent, err, v))
		return
	}
	s.actual.OnNext(u)
}

func (s *mapSub[T, U]) OnError(err error) {
	if s.done.Load() != 0 {
		onErrorDropped(err)
		return
	}
	s.errv = err
	s.done.Store(1)
	s.actual.OnError(err)
}

func (s *mapSub[T, U]) OnComplete() {
	if !s.done.CompareAndSwap(0, 1) {
		return
	}
	s.actual.OnComplete()
}

func (s *mapSub[T, U]) fail(err error) {
	s.errv = err
	s.done.Store(1)
	s.parent.Cancel()
	s.actual.OnError(err)
}

func (s *mapSub[T, U]) Request(n int64) {
	s.parent.Request(n)
}

func (s *mapSub[T, U]) Cancel() {
	s.parent.Cancel()
}

func (s *mapSub[T, U]) RequestFusion(requested FusionMode) FusionMode {
	fs, m := requestFusion[T](s.parent, requested)
	if m == FusionNone {
		return FusionNone
	}
	s.fused = fs
	s.mode = m
	return m
}

func (s *mapSub[T, U]) Poll() (U, error) {
	v, err := s.fused.Poll()
	if err != nil {
		var zero U
		return zero, err
	}
	u, ferr := guard(s.f, v)
	if ferr != nil {
		var zero U
		return zero, onOperatorError(s.parent, ferr, v)
	}
	return u, nil
}

func (s *mapSub[T, U]) Size() int {
	return s.fused.Size()
}

func (s *mapSub[T, U]) Clear() {
	s.fused.Clear()
}

func (s *mapSub[T, U]) Scan(key Key) (any, bool) {
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

type mapEitherPub[T, U any] struct {
	source Publisher[T]
	f      func(T) kont.Either[error, U]
}

// MapEither transforms each value of source with a result-valued
// function: Right continues the sequence, Left terminates it with the
// decorated error. The single conversion point for user functions that
// report failure as a value instead of a panic.
func MapEither[T, U any](source Publisher[T], f func(T) kont.Either[error, U]) Publisher[U] {
	return mapEitherPub[T, U]{source: source, f: f}
}

func (p mapEitherPub[T, U]) Subscribe(s Subscriber[U]) {
	p.source.Subscribe(&mapEitherSub[T, U]{actual: s, f: p.f, serial: nextSerial()})
}

type mapEitherSub[T, U any] struct {
	actual Subscriber[U]
	f      func(T) kont.Either[error, U]
	parent Subscription
	fused  FusedSubscription[T]
	mode   FusionMode
	errv   error
	done   atomix.Uint32
	serial Serial
}

func (s *mapEitherSub[T, U]) OnSubscribe(sub Subscription) {
	if !setParent(&s.parent, sub) {
		return
	}
	s.actual.OnSubscribe(s)
}

func (s *mapEitherSub[T, U]) OnNext(v T) {
	if s.mode == FusionAsync {
		var zero U
		s.actual.OnNext(zero)
		return
	}
	if s.done.Load() != 0 {
		onNextDropped(v)
		return
	}
	e := s.f(v)
	if err, bad := e.GetLeft(); bad {
		s.errv = onOperatorError(s.parent, err, v)
		s.done.Store(1)
		s.parent.Cancel()
		s.actual.OnError(s.errv)
		return
	}
	u, _ := e.GetRight()
	s.actual.OnNext(u)
}

func (s *mapEitherSub[T, U]) OnError(err error) {
	if s.done.Load() != 0 {
		onErrorDropped(err)
		return
	}
	s.errv = err
	s.done.Store(1)
	s.actual.OnError(err)
}

func (s *mapEitherSub[T, U]) OnComplete() {
	if !s.done.CompareAndSwap(0, 1) {
		return
	}
	s.actual.OnComplete()
}

func (s *mapEitherSub[T, U]) Request(n int64) {
	s.parent.Request(n)
}

func (s *mapEitherSub[T, U]) Cancel() {
	s.parent.Cancel()
}

func (s *mapEitherSub[T, U]) RequestFusion(requested FusionMode) FusionMode {
	fs, m := requestFusion[T](s.parent, requested)
	if m == FusionNone {
		return FusionNone
	}
	s.fused = fs
	s.mode = m
	return m
}

func (s *mapEitherSub[T, U]) Poll() (U, error) {
	v, err := s.fused.Poll()
	if err != nil {
		var zero U
		return zero, err
	}
	e := s.f(v)
	if ferr, bad := e.GetLeft(); bad {
		var zero U
		return zero, onOperatorError(s.parent, ferr, v)
	}
	u, _ := e.GetRight()
	return u, nil
}

func (s *mapEitherSub[T, U]) Size() int {
	return s.fused.Size()
}

func (s *mapEitherSub[T, U]) Clear() {
	s.fused.Clear()
}

func (s *mapEitherSub[T, U]) Scan(key Key) (any, bool) {
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
