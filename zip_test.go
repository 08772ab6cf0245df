// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flow_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"code.hybscloud.com/flow"
)

func TestZipPairsUntilOtherExhausted(t *testing.T) {
	src := &probe[int]{inner: flow.Range(1, 5)}
	pub := flow.ZipWithSlice(src, []string{"a", "b", "c"}, func(n int, s string) string {
		return fmt.Sprintf("%d%s", n, s)
	})

	r := newRec[string](flow.Unbounded)
	pub.Subscribe(r)

	want := []string{"1a", "2b", "3c"}
	if !reflect.DeepEqual(r.values, want) {
		t.Fatalf("values = %v, want %v", r.values, want)
	}
	if r.completes != 1 {
		t.Fatalf("completes = %d, want 1", r.completes)
	}
	if got := src.cancels.Load(); got != 1 {
		t.Fatalf("source cancels = %d, want 1 after third pairing", got)
	}
}

func TestZipEmptyOtherNeverSubscribes(t *testing.T) {
	src := &probe[int]{inner: flow.Range(1, 5)}
	pub := flow.ZipWithSlice(src, []string{}, func(n int, s string) string { return s })

	r := newRec[string](flow.Unbounded)
	pub.Subscribe(r)

	if r.attaches != 1 || r.completes != 1 {
		t.Fatalf("attaches = %d completes = %d, want 1 and 1", r.attaches, r.completes)
	}
	if got := src.subscribes.Load(); got != 0 {
		t.Fatalf("source subscribes = %d, want 0 for empty other", got)
	}
}

func TestZipSourceShorter(t *testing.T) {
	pub := flow.ZipWithSlice(flow.Range(1, 2), []string{"a", "b", "c"}, func(n int, s string) string {
		return fmt.Sprintf("%d%s", n, s)
	})

	r := newRec[string](flow.Unbounded)
	pub.Subscribe(r)

	want := []string{"1a", "2b"}
	if !reflect.DeepEqual(r.values, want) {
		t.Fatalf("values = %v, want %v", r.values, want)
	}
	if r.completes != 1 {
		t.Fatalf("completes = %d, want 1", r.completes)
	}
}

func TestZipZipperFailure(t *testing.T) {
	boom := errors.New("boom")
	src := &probe[int]{inner: flow.Range(1, 5)}
	pub := flow.ZipWithSlice(src, []string{"a", "b", "c"}, func(n int, s string) string {
		if n == 2 {
			panic(boom)
		}
		return s
	})

	r := newRec[string](flow.Unbounded)
	pub.Subscribe(r)

	if len(r.values) != 1 {
		t.Fatalf("values = %v, want exactly the first pairing", r.values)
	}
	var oe *flow.OpError
	if !errors.As(r.err, &oe) {
		t.Fatalf("err = %v, want decorated OpError", r.err)
	}
	if oe.Element != 2 {
		t.Fatalf("OpError.Element = %v, want 2", oe.Element)
	}
	if !errors.Is(r.err, boom) {
		t.Fatalf("err chain does not contain the cause: %v", r.err)
	}
	if got := src.cancels.Load(); got != 1 {
		t.Fatalf("source cancels = %d, want 1 after zipper failure", got)
	}
}

func TestZipUpstreamErrorPassthrough(t *testing.T) {
	boom := errors.New("boom")
	f := &feed[int]{}
	pub := flow.ZipWithSlice(f, []string{"a"}, func(n int, s string) string { return s })

	r := newRec[string](flow.Unbounded)
	pub.Subscribe(r)
	f.s.OnError(boom)

	if r.err != boom {
		t.Fatalf("err = %v, want the upstream error unchanged", r.err)
	}
}

func TestZipBackpressurePassthrough(t *testing.T) {
	f := &feed[int]{}
	pub := flow.ZipWithSlice(f, []string{"a", "b"}, func(n int, s string) string { return s })

	r := newRec[string](7)
	pub.Subscribe(r)

	if got := f.sub.requested.Load(); got != 7 {
		t.Fatalf("upstream demand = %d, want 7", got)
	}
}

func TestZipScan(t *testing.T) {
	f := &feed[int]{}
	pub := flow.ZipWithSlice(f, []string{"a"}, func(n int, s string) string { return s })

	r := newRec[string](0)
	pub.Subscribe(r)

	sc, ok := r.sub.(flow.Scannable)
	if !ok {
		t.Fatalf("zip contract is not scannable")
	}
	if v, ok := sc.Scan(flow.KeyParent); !ok || v != any(&f.sub) {
		t.Fatalf("KeyParent = %v %v, want the upstream contract", v, ok)
	}
	if v, ok := sc.Scan(flow.KeyActual); !ok || v != any(r) {
		t.Fatalf("KeyActual = %v %v, want the downstream subscriber", v, ok)
	}
	if v, _ := sc.Scan(flow.KeyTerminated); v.(bool) {
		t.Fatalf("terminated before any signal")
	}
	f.s.OnComplete()
	if v, _ := sc.Scan(flow.KeyTerminated); !v.(bool) {
		t.Fatalf("not terminated after completion")
	}
}
