// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"errors"
	"fmt"
)

// ErrDuplicateAttach reports a second OnSubscribe on a stage that already
// holds an upstream contract. Routed to the drop-error hook.
var ErrDuplicateAttach = errors.New("flow: duplicate subscription attach")

// ErrTerminated reports a push into an already terminated [Pipe].
var ErrTerminated = errors.New("flow: pipe already terminated")

// ErrEmpty reports that a sequence completed without emitting a value
// where one was required.
var ErrEmpty = errors.New("flow: sequence completed without values")

// DemandError reports a non-positive request count, per the fail-fast
// invalid-demand policy. Delivered as an immediate Error signal.
type DemandError struct {
	N int64
}

func (e *DemandError) Error() string {
	return fmt.Sprintf("flow: invalid demand %d, must be positive", e.N)
}

// OpError decorates a failure with the context in which it happened: the
// offending element, if safely capturable, and the upstream contract of
// the failing stage. Decoration happens exactly once per failure; a
// failure that already carries an OpError anywhere in its chain passes
// through further stages untouched.
type OpError struct {
	Cause   error
	Element any
	Parent  Subscription
}

func (e *OpError) Error() string {
	if e.Element != nil {
		return fmt.Sprintf("flow: operator error on element %v: %v", e.Element, e.Cause)
	}
	return fmt.Sprintf("flow: operator error: %v", e.Cause)
}

func (e *OpError) Unwrap() error {
	return e.Cause
}

// decorated reports whether err already carries operator context.
func decorated(err error) bool {
	var oe *OpError
	return errors.As(err, &oe)
}

// guard invokes a user-supplied transformation, converting a panic into
// an error result. The single conversion point between user faults and
// the error channel.
func guard[T, U any](f func(T) U, v T) (u U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr(r)
		}
	}()
	u = f(v)
	return u, nil
}

// guard2 is guard for two-argument transformations.
func guard2[T, U, R any](f func(T, U) R, t T, u U) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicErr(p)
		}
	}()
	r = f(t, u)
	return r, nil
}

func panicErr(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("flow: user function panic: %v", r)
}
