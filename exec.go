// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// execSub collects the whole sequence under unbounded demand. The done
// latch publishes vs and err to the goroutine spinning in Exec.
type execSub[T any] struct {
	vs   []T
	err  error
	done atomix.Uint32
}

func (e *execSub[T]) OnSubscribe(s Subscription) {
	s.Request(Unbounded)
}

func (e *execSub[T]) OnNext(v T) {
	e.vs = append(e.vs, v)
}

func (e *execSub[T]) OnError(err error) {
	e.err = err
	e.done.Store(1)
}

func (e *execSub[T]) OnComplete() {
	e.done.Store(1)
}

// Exec subscribes to p with unbounded demand and drives the sequence to
// its terminal signal, waiting past asynchronous boundaries with
// adaptive backoff on the calling goroutine. Returns Right with the
// collected values or Left with the terminal error.
func Exec[T any](p Publisher[T]) kont.Either[error, []T] {
	e := &execSub[T]{}
	p.Subscribe(e)
	var bo iox.Backoff
	for e.done.Load() == 0 {
		bo.Wait()
	}
	if e.err != nil {
		return kont.Left[error, []T](e.err)
	}
	return kont.Right[error](e.vs)
}

// ExecLast is Exec keeping only the final value. An empty sequence
// yields Left(ErrEmpty).
func ExecLast[T any](p Publisher[T]) kont.Either[error, T] {
	r := Exec(p)
	if err, bad := r.GetLeft(); bad {
		return kont.Left[error, T](err)
	}
	vs, _ := r.GetRight()
	if len(vs) == 0 {
		return kont.Left[error, T](ErrEmpty)
	}
	return kont.Right[error](vs[len(vs)-1])
}
