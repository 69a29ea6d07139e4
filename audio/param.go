// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync/atomic"
)

// Param is a float64 slot shared between the control goroutine and the
// audio goroutine. Writes are last-write-wins; reads never block.
type Param struct {
	bits atomic.Uint64
}

// NewParam returns a Param holding v.
func NewParam(v float64) *Param {
	p := &Param{}
	p.Store(v)
	return p
}

func (p *Param) Load() float64 { return math.Float64frombits(p.bits.Load()) }

func (p *Param) Store(v float64) { p.bits.Store(math.Float64bits(v)) }

// Swap stores v and reports whether it differs from the previous value.
func (p *Param) Swap(v float64) (old float64, changed bool) {
	old = math.Float64frombits(p.bits.Swap(math.Float64bits(v)))
	return old, old != v
}

// InRange reports whether lo <= v <= hi. NaN is never in range.
func InRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
