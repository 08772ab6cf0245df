// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"

	"code.hybscloud.com/atomix"
)

// Unbounded is the saturation sentinel for demand. Once outstanding
// demand reaches Unbounded it never decreases.
const Unbounded = int64(math.MaxInt64)

// validDemand reports whether n is a legal request count.
func validDemand(n int64) bool {
	return n > 0
}

// addDemand adds n to the demand counter, saturating at [Unbounded].
// Returns the previous value: a zero return means the caller moved
// demand from empty and owns the resulting emission trigger.
func addDemand(d *atomix.Int64, n int64) int64 {
	for {
		r := d.Load()
		if r == Unbounded {
			return Unbounded
		}
		u := r + n
		if u < 0 { // overflow
			u = Unbounded
		}
		if d.CompareAndSwap(r, u) {
			return r
		}
	}
}

// produced subtracts n emitted values from the demand counter.
// Unbounded demand is left untouched. Returns the remaining demand.
func produced(d *atomix.Int64, n int64) int64 {
	for {
		r := d.Load()
		if r == Unbounded {
			return Unbounded
		}
		u := r - n
		if u < 0 {
			// More emitted than requested would be an engine bug;
			// clamp so the counter stays in range.
			u = 0
		}
		if d.CompareAndSwap(r, u) {
			return u
		}
	}
}
