// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// FusionMode is the fast-path capability negotiated once per attachment.
// The granted mode never changes for the attachment's lifetime. Fusion
// only changes how Next values are transported; cancellation and the
// termination grammar are identical in all modes.
type FusionMode uint32

const (
	// FusionNone keeps the generic push/request protocol.
	FusionNone FusionMode = iota
	// FusionSync grants direct polling of a fully materialized sequence:
	// Poll never blocks and never fails transiently.
	FusionSync
	// FusionAsync grants polling of a queue the producer may still be
	// filling: an empty Poll means "not yet ready", and push-style drain
	// notifications are still delivered when the producer flushes.
	FusionAsync
)

func (m FusionMode) String() string {
	switch m {
	case FusionSync:
		return "sync"
	case FusionAsync:
		return "async"
	default:
		return "none"
	}
}

// FusedSubscription is the optional fast-path extension of
// [Subscription]. A downstream stage obtains it by type assertion on the
// contract it received and calls RequestFusion exactly once, before the
// first Request or Poll.
//
// Poll returns the next value, or a boundary error:
// [io.EOF] when the sequence is complete, a terminal failure once the
// producer failed, and in Async mode [code.hybscloud.com/iox.ErrWouldBlock]
// while the queue is momentarily empty.
type FusedSubscription[T any] interface {
	Subscription
	// RequestFusion negotiates the fast path. The producer answers with
	// the granted mode, FusionNone when the request cannot be honored.
	RequestFusion(requested FusionMode) FusionMode
	// Poll takes the next value off the fused queue.
	Poll() (T, error)
	// Size reports the number of immediately pollable values.
	Size() int
	// Clear discards all buffered values.
	Clear()
}

// requestFusion negotiates mode with s when it supports fusion.
func requestFusion[T any](s Subscription, requested FusionMode) (FusedSubscription[T], FusionMode) {
	fs, ok := s.(FusedSubscription[T])
	if !ok {
		return nil, FusionNone
	}
	m := fs.RequestFusion(requested)
	if m == FusionNone {
		return nil, FusionNone
	}
	return fs, m
}
