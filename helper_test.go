// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow_test

import (
	"io"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/flow"
	"code.hybscloud.com/iox"
)

// rec is a recording subscriber. initial is requested at attach time;
// cancelAfter > 0 cancels the contract after that many values;
// rerequest > 0 re-requests that amount after each value.
type rec[T any] struct {
	initial     int64
	cancelAfter int
	rerequest   int64

	sub       flow.Subscription
	values    []T
	err       error
	attaches  int
	completes int
	done      atomix.Uint32
}

func newRec[T any](initial int64) *rec[T] {
	return &rec[T]{initial: initial}
}

func (r *rec[T]) OnSubscribe(s flow.Subscription) {
	r.attaches++
	r.sub = s
	if r.initial != 0 {
		s.Request(r.initial)
	}
}

func (r *rec[T]) OnNext(v T) {
	r.values = append(r.values, v)
	if r.cancelAfter > 0 && len(r.values) == r.cancelAfter {
		r.sub.Cancel()
		return
	}
	if r.rerequest > 0 {
		r.sub.Request(r.rerequest)
	}
}

func (r *rec[T]) OnError(err error) {
	r.err = err
	r.done.Store(1)
}

func (r *rec[T]) OnComplete() {
	r.completes++
	r.done.Store(1)
}

func (r *rec[T]) terminated() bool {
	return r.done.Load() != 0
}

// await spins until the recorder observes a terminal signal.
func (r *rec[T]) await(tb testing.TB) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var bo iox.Backoff
	for r.done.Load() == 0 {
		if time.Now().After(deadline) {
			tb.Fatalf("timeout waiting for terminal signal")
		}
		bo.Wait()
	}
}

// fusedRec negotiates fusion at attach time and consumes through Poll
// when a mode is granted, falling back to the push protocol otherwise.
type fusedRec[T any] struct {
	want flow.FusionMode

	mode      flow.FusionMode
	fs        flow.FusedSubscription[T]
	values    []T
	err       error
	completes int
	done      atomix.Uint32
}

func (r *fusedRec[T]) OnSubscribe(s flow.Subscription) {
	if fs, ok := s.(flow.FusedSubscription[T]); ok {
		if m := fs.RequestFusion(r.want); m != flow.FusionNone {
			r.fs = fs
			r.mode = m
		}
	}
	switch r.mode {
	case flow.FusionSync:
		r.pollAll()
	case flow.FusionAsync:
		// values arrive through Poll on availability notifications
	default:
		s.Request(flow.Unbounded)
	}
}

func (r *fusedRec[T]) pollAll() {
	for {
		v, err := r.fs.Poll()
		if err == io.EOF {
			r.completes++
			r.done.Store(1)
			return
		}
		if err != nil {
			r.err = err
			r.done.Store(1)
			return
		}
		r.values = append(r.values, v)
	}
}

func (r *fusedRec[T]) pollReady() {
	for {
		v, err := r.fs.Poll()
		if err != nil {
			return
		}
		r.values = append(r.values, v)
	}
}

func (r *fusedRec[T]) OnNext(v T) {
	if r.mode == flow.FusionAsync {
		r.pollReady()
		return
	}
	r.values = append(r.values, v)
}

func (r *fusedRec[T]) OnError(err error) {
	if r.mode == flow.FusionAsync {
		r.pollReady()
	}
	r.err = err
	r.done.Store(1)
}

func (r *fusedRec[T]) OnComplete() {
	if r.mode == flow.FusionAsync {
		r.pollReady()
	}
	r.completes++
	r.done.Store(1)
}

// stubSub is a manual upstream contract recording demand and
// cancellation.
type stubSub struct {
	requested atomix.Int64
	cancels   atomix.Uint32
}

func (s *stubSub) Request(n int64) {
	s.requested.Add(n)
}

func (s *stubSub) Cancel() {
	s.cancels.Add(1)
}

// feed is a manual publisher: it hands the subscriber a stubSub and
// exposes the subscriber so tests can push signals by hand.
type feed[T any] struct {
	s   flow.Subscriber[T]
	sub stubSub
}

func (f *feed[T]) Subscribe(s flow.Subscriber[T]) {
	f.s = s
	s.OnSubscribe(&f.sub)
}

// probe wraps a publisher counting subscribes, requests and cancels on
// the contracts it hands out.
type probe[T any] struct {
	inner      flow.Publisher[T]
	subscribes atomix.Uint32
	requested  atomix.Int64
	cancels    atomix.Uint32
}

func (p *probe[T]) Subscribe(s flow.Subscriber[T]) {
	p.subscribes.Add(1)
	p.inner.Subscribe(&probeSubscriber[T]{actual: s, p: p})
}

type probeSubscriber[T any] struct {
	actual flow.Subscriber[T]
	p      *probe[T]
}

func (s *probeSubscriber[T]) OnSubscribe(sub flow.Subscription) {
	s.actual.OnSubscribe(&probeSubscription[T]{inner: sub, p: s.p})
}

func (s *probeSubscriber[T]) OnNext(v T)        { s.actual.OnNext(v) }
func (s *probeSubscriber[T]) OnError(err error) { s.actual.OnError(err) }
func (s *probeSubscriber[T]) OnComplete()       { s.actual.OnComplete() }

type probeSubscription[T any] struct {
	inner flow.Subscription
	p     *probe[T]
}

func (s *probeSubscription[T]) Request(n int64) {
	s.p.requested.Add(n)
	s.inner.Request(n)
}

func (s *probeSubscription[T]) Cancel() {
	s.p.cancels.Add(1)
	s.inner.Cancel()
}
