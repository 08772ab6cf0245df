// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Key identifies one introspection attribute of a stage.
type Key uint32

const (
	// KeyParent is the upstream contract of a stage ([Subscription]).
	KeyParent Key = iota + 1
	// KeyActual is the downstream consumer of a stage.
	KeyActual
	// KeyTerminated reports whether the stage forwarded a terminal signal.
	KeyTerminated
	// KeyCancelled reports whether the stage was cancelled.
	KeyCancelled
	// KeyCapacity is the bounded buffer capacity of a buffering stage.
	KeyCapacity
	// KeyPrefetch is the upstream demand a stage issues ahead of need.
	KeyPrefetch
	// KeyBuffered is the current number of buffered values.
	KeyBuffered
	// KeyError is the terminal error a stage retained, if any.
	KeyError
	// KeySerial is the monotonic stage identifier ([Serial]).
	KeySerial
)

// Scannable answers side-effect-free introspection queries. Scan returns
// (value, true) for a recognized, populated key and (nil, false)
// otherwise; unknown keys are never an error. Implementations read state
// via atomic snapshots so queries are safe concurrent with draining.
type Scannable interface {
	Scan(key Key) (any, bool)
}

// ScanOr queries s for key, returning fallback when s does not implement
// [Scannable] or has no answer.
func ScanOr(s any, key Key, fallback any) any {
	sc, ok := s.(Scannable)
	if !ok {
		return fallback
	}
	v, ok := sc.Scan(key)
	if !ok {
		return fallback
	}
	return v
}
