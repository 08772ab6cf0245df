// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

// Subscription is the demand contract a consumer holds on a producer.
// Request is additive: outstanding demand is the sum of all requested
// counts, saturating at [Unbounded]. Cancel is idempotent and
// cooperative: a signal already in flight on another goroutine may still
// arrive and is routed to the drop hooks.
type Subscription interface {
	// Request authorizes the producer to emit up to n further values.
	// n must be strictly positive; a non-positive n is a protocol
	// violation reported as an immediate OnError with a [DemandError].
	Request(n int64)
	// Cancel asks the producer to stop emitting as soon as it notices.
	// Safe to call any number of times from any goroutine.
	Cancel()
}

// Subscriber is the consumer-facing entry point of one attachment.
// Calls arrive in grammar order: exactly one OnSubscribe, then any number
// of OnNext, then at most one terminal OnError or OnComplete.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Publisher is the producer side of the protocol. Subscribe creates one
// attachment: the subscriber first receives its Subscription via
// OnSubscribe and nothing is emitted before the first Request.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// setParent validates single attachment. It returns true when s becomes
// the parent contract. A second attachment is a protocol violation: the
// duplicate contract is cancelled and [ErrDuplicateAttach] is reported to
// the drop-error hook, not delivered as a normal signal.
func setParent(current *Subscription, s Subscription) bool {
	if *current != nil {
		s.Cancel()
		onErrorDropped(ErrDuplicateAttach)
		return false
	}
	*current = s
	return true
}
