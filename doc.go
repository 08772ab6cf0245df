// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package flow provides a backpressured signal-stream engine: asynchronous,
// possibly infinite sequences of values travel from producers to consumers
// under explicit demand, without unbounded buffering or blocking.
//
// Signals follow the grammar Next* (Error | Complete)? per attachment.
// Demand is additive and saturates at [Unbounded]; cancellation is
// cooperative and idempotent.
//
// # Architecture
//
//   - Protocol: [Publisher], [Subscriber], [Subscription] carry the
//     three-signal grammar and the request/cancel demand contract.
//   - Transport: [Pipe] buffers pushed values in a bounded lock-free SPSC
//     queue via [code.hybscloud.com/lfq], returning
//     [code.hybscloud.com/iox.ErrWouldBlock] on backpressure.
//   - Serialization: a per-stage work-in-progress guard elects exactly one
//     draining goroutine, so emission is never concurrent for one stage.
//   - Fusion: adjacent stages may negotiate a pull-based fast path
//     ([FusedSubscription]) at attach time; Sync for materialized sources,
//     Async for concurrently filled queues.
//   - Introspection: every stage answers [Scannable.Scan] over a fixed key
//     set without side effects.
//
// # API Topologies
//
//   - Sources: [Range], [FromSlice], [Just], [Pipe].
//   - Operators: [Map], [MapEither], [Filter], [ZipWithSlice].
//   - Bridges: [Exec] and [ExecLast] drive a chain to completion on the
//     calling goroutine, waiting past empty boundaries with adaptive
//     backoff, and return [code.hybscloud.com/kont.Either].
//   - Hooks: [InstallHooks] and [ResetHooks] scope error decoration and
//     dropped-signal interception.
//
// # Integration
//
//   - Scheduling: the engine never spawns goroutines on its own; external
//     execution contexts implement [Scheduler].
//   - Non-delivery: signals that lose the cancellation or termination race
//     are handed to the drop hooks, never delivered and never lost silently.
//
// # Example
//
//	src := flow.Range(1, 5)
//	doubled := flow.Map(src, func(n int) int { return n * 2 })
//	result := flow.Exec(doubled)
//	if vs, ok := result.GetRight(); ok {
//		fmt.Println(vs) // [2 4 6 8 10]
//	}
package flow
