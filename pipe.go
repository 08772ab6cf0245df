// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// defaultPipeCapacity is the bounded capacity used when NewPipe is given
// a non-positive capacity. Large enough to amortize drain wake-ups,
// small enough to keep backpressure meaningful.
const defaultPipeCapacity = 64

const (
	pipeOpen = iota
	pipeCompleted
	pipeFailed
)

// Pipe is a buffered conduit between one producer and one subscriber.
// The push side (Push, Fail, Done) is owned by a single goroutine; the
// transport is a bounded lock-free SPSC ring, so Push returns the
// would-block boundary error when the subscriber has not kept up.
// Emission toward the subscriber runs under the work-in-progress guard:
// push, request and cancel may trigger concurrently, exactly one
// goroutine drains.
//
// A Pipe is also a Subscriber, so it can terminate an upstream chain and
// re-emit across an asynchronous boundary: it prefetches its capacity,
// buffers, and replenishes upstream demand as values are drained.
//
// Downstream may negotiate Async fusion: granted, the pipe signals
// availability by invoking OnNext with the zero value and the subscriber
// takes values with Poll.
type Pipe[T any] struct {
	q        lfq.SPSC[T]
	capacity int
	serial   Serial

	actual   Subscriber[T]
	once     atomix.Uint32 // duplicate-subscribe guard
	attached atomix.Uint32 // actual published

	parent    Subscription
	parentSet atomix.Uint32

	requested atomix.Int64
	w         wip
	outMode   atomix.Uint32 // granted FusionMode

	err       error
	errOnce   atomix.Uint32 // claims the err slot before the done latch
	done      atomix.Uint32 // pipeOpen | pipeCompleted | pipeFailed
	cancelled atomix.Uint32
	term      bool // terminal delivered; drainer-owned

	enq     atomix.Uint64
	deq     atomix.Uint64
	dropped atomix.Uint64
}

// NewPipe creates a pipe with the given bounded capacity.
// Non-positive capacity selects the default.
func NewPipe[T any](capacity int) *Pipe[T] {
	if capacity <= 0 {
		capacity = defaultPipeCapacity
	}
	p := &Pipe[T]{capacity: capacity, serial: nextSerial()}
	p.q.Init(capacity)
	return p
}

// Push offers v to the subscriber side. It never blocks: when the ring
// is full the queue's would-block error is returned and the caller owns
// the retry. After termination or cancellation v is routed to the drop
// hook and ErrTerminated is returned.
func (p *Pipe[T]) Push(v T) error {
	if p.done.Load() != pipeOpen || p.cancelled.Load() != 0 {
		p.dropped.Add(1)
		onNextDropped(v)
		return ErrTerminated
	}
	if err := p.q.Enqueue(&v); err != nil {
		return err
	}
	p.enq.Add(1)
	p.drain()
	return nil
}

// Fail terminates the pipe with err. Buffered values drain first; the
// error is delivered only once all of them have been emitted. A second
// terminal goes to the drop-error hook.
func (p *Pipe[T]) Fail(err error) {
	p.failWith(err)
}

// Done completes the pipe. Buffered values drain before the completion
// signal.
func (p *Pipe[T]) Done() {
	if p.done.CompareAndSwap(pipeOpen, pipeCompleted) {
		p.drain()
	}
}

func (p *Pipe[T]) failWith(err error) {
	if p.done.Load() != pipeOpen || p.cancelled.Load() != 0 {
		onErrorDropped(err)
		return
	}
	if !p.errOnce.CompareAndSwap(0, 1) {
		onErrorDropped(err)
		return
	}
	p.err = err
	p.done.Store(pipeFailed)
	p.drain()
}

// Subscribe attaches the single subscriber. A second subscriber receives
// an immediate ErrDuplicateAttach error signal.
func (p *Pipe[T]) Subscribe(s Subscriber[T]) {
	if !p.once.CompareAndSwap(0, 1) {
		errorTo(s, ErrDuplicateAttach)
		return
	}
	p.actual = s
	s.OnSubscribe(p)
	p.attached.Store(1)
	p.drain()
}

// OnSubscribe adopts an upstream chain, prefetching the pipe capacity.
func (p *Pipe[T]) OnSubscribe(s Subscription) {
	if !setParent(&p.parent, s) {
		return
	}
	p.parentSet.Store(1)
	s.Request(int64(p.capacity))
}

// OnNext feeds an upstream value into the buffer. With prefetch equal to
// capacity an overflow indicates an upstream protocol violation; the
// value is dropped.
func (p *Pipe[T]) OnNext(v T) {
	if err := p.Push(v); err != nil && err != ErrTerminated {
		p.dropped.Add(1)
		onNextDropped(v)
	}
}

func (p *Pipe[T]) OnError(err error) {
	p.failWith(err)
}

func (p *Pipe[T]) OnComplete() {
	p.Done()
}

func (p *Pipe[T]) Request(n int64) {
	if !validDemand(n) {
		p.failWith(&DemandError{N: n})
		return
	}
	addDemand(&p.requested, n)
	p.drain()
}

// Cancel latches cancellation and propagates it upstream. In fused mode
// the subscriber owns the queue and clears it itself.
func (p *Pipe[T]) Cancel() {
	if !p.cancelled.CompareAndSwap(0, 1) {
		return
	}
	if p.parentSet.Load() != 0 {
		p.parent.Cancel()
	}
	if FusionMode(p.outMode.Load()) == FusionNone {
		p.drain()
	}
}

func (p *Pipe[T]) RequestFusion(requested FusionMode) FusionMode {
	if requested == FusionAsync {
		p.outMode.Store(uint32(FusionAsync))
		return FusionAsync
	}
	return FusionNone
}

// Poll takes the next buffered value. The done latch is read before the
// queue so a terminal observed here proves the buffer was fully drained.
func (p *Pipe[T]) Poll() (T, error) {
	d := p.done.Load()
	v, err := p.q.Dequeue()
	if err != nil {
		var zero T
		if d != pipeOpen {
			return zero, io.EOF
		}
		return zero, err
	}
	p.deq.Add(1)
	p.replenish(1)
	return v, nil
}

func (p *Pipe[T]) Size() int {
	n := int64(p.enq.Load()) - int64(p.deq.Load())
	if n < 0 {
		n = 0
	}
	return int(n)
}

func (p *Pipe[T]) Clear() {
	for {
		if _, err := p.q.Dequeue(); err != nil {
			return
		}
		p.deq.Add(1)
	}
}

// Dropped reports the number of values routed to the drop hook by this
// pipe.
func (p *Pipe[T]) Dropped() uint64 {
	return p.dropped.Load()
}

func (p *Pipe[T]) replenish(n int64) {
	if p.parentSet.Load() != 0 {
		p.parent.Request(n)
	}
}

func (p *Pipe[T]) drain() {
	if !p.w.enter() {
		return
	}
	missed := int32(1)
	for {
		if p.attached.Load() != 0 {
			a := p.actual
			if FusionMode(p.outMode.Load()) == FusionAsync {
				p.drainFused(a)
			} else {
				p.drainRegular(a)
			}
		} else if p.cancelled.Load() != 0 {
			p.Clear()
		}
		missed = p.w.leave(missed)
		if missed == 0 {
			return
		}
	}
}

// drainRegular emits min(demand, buffered) values, then a pending
// terminal once the buffer is empty. The done latch is always read
// before probing the queue: observing done with an empty queue proves no
// value can still be in flight ahead of the terminal.
func (p *Pipe[T]) drainRegular(a Subscriber[T]) {
	if p.term {
		return
	}
	r := p.requested.Load()
	e := int64(0)
	for {
		if p.cancelled.Load() != 0 {
			p.Clear()
			return
		}
		d := p.done.Load()
		if r != Unbounded && e == r {
			// demand exhausted; a pending terminal is still delivered
			// once the buffer is empty
			if d != pipeOpen && p.Size() == 0 {
				p.term = true
				p.terminal(a, d)
			}
			break
		}
		v, err := p.q.Dequeue()
		if err != nil {
			if d != pipeOpen {
				p.term = true
				p.terminal(a, d)
			}
			break
		}
		p.deq.Add(1)
		a.OnNext(v)
		e++
	}
	if e != 0 {
		produced(&p.requested, e)
		p.replenish(e)
	}
}

// drainFused signals availability and, when the producer terminated,
// forwards the terminal; the subscriber polls the remaining buffered
// values itself.
func (p *Pipe[T]) drainFused(a Subscriber[T]) {
	if p.term || p.cancelled.Load() != 0 {
		return
	}
	d := p.done.Load()
	if p.Size() != 0 {
		var zero T
		a.OnNext(zero)
	}
	if d != pipeOpen {
		p.term = true
		p.terminal(a, d)
	}
}

func (p *Pipe[T]) terminal(a Subscriber[T], d uint32) {
	if d == pipeFailed {
		a.OnError(p.err)
		return
	}
	a.OnComplete()
}

func (p *Pipe[T]) Scan(key Key) (any, bool) {
	switch key {
	case KeyParent:
		if p.parentSet.Load() != 0 {
			return p.parent, true
		}
		return nil, false
	case KeyActual:
		if p.attached.Load() != 0 {
			return p.actual, true
		}
		return nil, false
	case KeyTerminated:
		return p.done.Load() != pipeOpen, true
	case KeyCancelled:
		return p.cancelled.Load() != 0, true
	case KeyCapacity:
		return p.capacity, true
	case KeyPrefetch:
		return p.capacity, true
	case KeyBuffered:
		return p.Size(), true
	case KeyError:
		if p.done.Load() == pipeFailed {
			return p.err, true
		}
		return nil, false
	case KeySerial:
		return p.serial, true
	}
	return nil, false
}
