// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import "sync/atomic"

// Hooks is the explicitly scoped process-wide configuration for error
// decoration and dropped-signal interception. A nil function field keeps
// the default behavior. Hook functions must not panic; a panicking drop
// hook would tear down the emitting goroutine.
type Hooks struct {
	// DecorateError is invoked when a user-function failure or upstream
	// error passes a stage boundary. element is the offending element or
	// nil. It must return a non-nil error.
	DecorateError func(err error, element any) error
	// DropNext receives values that cannot legally be delivered:
	// post-terminal and post-cancel arrivals.
	DropNext func(v any)
	// DropError receives errors that cannot legally be delivered.
	DropError func(err error)
}

// defaultHooks is the reset state: one-shot OpError decoration, dropped
// signals discarded.
var defaultHooks = Hooks{}

// hooksScope holds the currently installed scope. Swapped atomically so
// tests can install and restore deterministically.
var hooksScope atomic.Pointer[Hooks]

// InstallHooks replaces the current hook scope.
func InstallHooks(h Hooks) {
	hooksScope.Store(&h)
}

// ResetHooks restores the no-op default scope.
func ResetHooks() {
	hooksScope.Store(&defaultHooks)
}

func currentHooks() *Hooks {
	if h := hooksScope.Load(); h != nil {
		return h
	}
	return &defaultHooks
}

// onOperatorError decorates err with operator context exactly once.
// Already-decorated failures pass through unchanged, keeping decoration
// idempotent across a chain of stages.
func onOperatorError(parent Subscription, err error, element any) error {
	if decorated(err) {
		return err
	}
	if h := currentHooks(); h.DecorateError != nil {
		return h.DecorateError(err, element)
	}
	return &OpError{Cause: err, Element: element, Parent: parent}
}

// onNextDropped routes a value that lost the termination or cancellation
// race to the drop hook.
func onNextDropped[T any](v T) {
	if h := currentHooks(); h.DropNext != nil {
		h.DropNext(v)
	}
}

// onErrorDropped routes an error that cannot be delivered to the
// drop-error hook.
func onErrorDropped(err error) {
	if h := currentHooks(); h.DropError != nil {
		h.DropError(err)
	}
}
