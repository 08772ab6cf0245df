// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"io"

	"code.hybscloud.com/atomix"
)

// inertSub is the contract handed to consumers that receive an immediate
// terminal signal. Demand and cancellation on an already terminated
// attachment have no observable effect.
type inertSub[T any] struct{}

func (inertSub[T]) Request(int64) {}
func (inertSub[T]) Cancel()       {}

// completeTo attaches s to an empty sequence: OnSubscribe then OnComplete.
func completeTo[T any](s Subscriber[T]) {
	s.OnSubscribe(inertSub[T]{})
	s.OnComplete()
}

// errorTo attaches s to a failed sequence: OnSubscribe then OnError.
func errorTo[T any](s Subscriber[T], err error) {
	s.OnSubscribe(inertSub[T]{})
	s.OnError(err)
}

const (
	scalarFresh = iota
	scalarDone
	scalarCancelled
)

// scalarSub delivers exactly one value on first positive demand.
// Sync-fuseable: a fused consumer polls the value instead. The state
// latch makes delivery, poll and cancel mutually exclusive one-shots.
type scalarSub[T any] struct {
	actual Subscriber[T]
	value  T
	state  atomix.Uint32
}

func (s *scalarSub[T]) Request(n int64) {
	if !validDemand(n) {
		if s.state.CompareAndSwap(scalarFresh, scalarDone) {
			s.actual.OnError(&DemandError{N: n})
		}
		return
	}
	if s.state.CompareAndSwap(scalarFresh, scalarDone) {
		s.actual.OnNext(s.value)
		s.actual.OnComplete()
	}
}

func (s *scalarSub[T]) Cancel() {
	s.state.CompareAndSwap(scalarFresh, scalarCancelled)
}

func (s *scalarSub[T]) RequestFusion(requested FusionMode) FusionMode {
	if requested == FusionSync {
		return FusionSync
	}
	return FusionNone
}

func (s *scalarSub[T]) Poll() (T, error) {
	if s.state.CompareAndSwap(scalarFresh, scalarDone) {
		return s.value, nil
	}
	var zero T
	return zero, io.EOF
}

func (s *scalarSub[T]) Size() int {
	if s.state.Load() == scalarFresh {
		return 1
	}
	return 0
}

func (s *scalarSub[T]) Clear() {
	s.state.CompareAndSwap(scalarFresh, scalarDone)
}

func (s *scalarSub[T]) Scan(key Key) (any, bool) {
	switch key {
	case KeyActual:
		return s.actual, true
	case KeyTerminated:
		return s.state.Load() == scalarDone, true
	case KeyCancelled:
		return s.state.Load() == scalarCancelled, true
	case KeyBuffered:
		return s.Size(), true
	}
	return nil, false
}

type justPub[T any] struct {
	v T
}

// Just returns a single-value sequence.
func Just[T any](v T) Publisher[T] {
	return justPub[T]{v: v}
}

func (p justPub[T]) Subscribe(s Subscriber[T]) {
	s.OnSubscribe(&scalarSub[T]{actual: s, value: p.v})
}
