// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync"
	"testing"
)

func TestParam_LoadStoreSwap(t *testing.T) {
	t.Parallel()

	p := NewParam(0.25)
	if p.Load() != 0.25 {
		t.Fatalf("Load() = %v, want 0.25", p.Load())
	}

	old, changed := p.Swap(0.25)
	if changed || old != 0.25 {
		t.Errorf("Swap(same) = (%v, %v), want (0.25, false)", old, changed)
	}

	old, changed = p.Swap(-1.5)
	if !changed || old != 0.25 {
		t.Errorf("Swap(new) = (%v, %v), want (0.25, true)", old, changed)
	}
	if p.Load() != -1.5 {
		t.Errorf("Load() = %v, want -1.5", p.Load())
	}
}

func TestParam_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	var p Param
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				p.Store(float64(i))
				_ = p.Load()
			}
		}()
	}
	wg.Wait()

	v := p.Load()
	if v < 0 || v > 7 || v != math.Trunc(v) {
		t.Errorf("Load() = %v, want one of the written values", v)
	}
}

func TestInRangeAndClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, lo, hi float64
		in        bool
		clamped   float64
	}{
		{0.5, 0, 1, true, 0.5},
		{0, 0, 1, true, 0},
		{1, 0, 1, true, 1},
		{-0.1, 0, 1, false, 0},
		{2.5, 0.5, 2, false, 2},
		{math.NaN(), 0, 1, false, math.NaN()},
	}

	for _, tt := range tests {
		if got := InRange(tt.v, tt.lo, tt.hi); got != tt.in {
			t.Errorf("InRange(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.in)
		}
		got := Clamp(tt.v, tt.lo, tt.hi)
		if math.IsNaN(tt.clamped) {
			if !math.IsNaN(got) {
				t.Errorf("Clamp(NaN) = %v, want NaN", got)
			}
			continue
		}
		if got != tt.clamped {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.clamped)
		}
	}
}
