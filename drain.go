// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow

import "code.hybscloud.com/atomix"

// wip is the work-in-progress guard giving a stage exclusive, serialized
// emission despite concurrent triggers. Each trigger (value arrived,
// demand arrived, terminal arrived, cancel) increments the guard; only
// the goroutine that observes the 0→1 transition becomes the drainer.
// A trigger arriving while a drain is running — including a reentrant
// call from the stage's own downstream — folds into the counter instead
// of recursing, so wake-ups are never lost and emission never nests.
type wip struct {
	n atomix.Int32
}

// enter registers a drain trigger. True means the caller became the
// drainer and must run the drain loop.
func (w *wip) enter() bool {
	return w.n.Add(1) == 1
}

// leave retires missed handled triggers. A non-zero return means more
// triggers arrived mid-drain and the drainer must loop again; the typical
// shape is
//
//	if !w.enter() {
//		return
//	}
//	missed := int32(1)
//	for {
//		// ... emit as demand and data allow ...
//		missed = w.leave(missed)
//		if missed == 0 {
//			return
//		}
//	}
func (w *wip) leave(missed int32) int32 {
	return w.n.Add(-missed)
}
