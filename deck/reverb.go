// SPDX-License-Identifier: EPL-2.0

package deck

import "sync/atomic"

// ReverbParameters configure a Reverb. Levels and sizes are in [0, 1];
// FreezeMode >= 0.5 holds the current tail indefinitely.
type ReverbParameters struct {
	RoomSize   float64
	Damping    float64
	WetLevel   float64
	DryLevel   float64
	Width      float64
	FreezeMode float64
}

// DefaultReverbParameters returns a medium room producing only the wet
// signal; the deck blends dry and wet itself.
func DefaultReverbParameters() ReverbParameters {
	return ReverbParameters{
		RoomSize: 0.5,
		Damping:  0.5,
		WetLevel: 1,
		DryLevel: 0,
		Width:    1,
	}
}

const (
	numCombs      = 8
	numAllPasses  = 4
	stereoSpread  = 23
	tuningRate    = 44100.0
	wetScale      = 3.0
	dryScale      = 2.0
	fixedGain     = 0.015
	roomScale     = 0.28
	roomOffset    = 0.7
	dampingScale  = 0.4
	freezeTrigger = 0.5
)

var (
	combTunings    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allPassTunings = [numAllPasses]int{556, 441, 341, 225}
)

// Reverb is a Freeverb style reverberator: eight parallel damped comb
// filters followed by four series all-pass filters per channel.
type Reverb struct {
	params atomic.Pointer[ReverbParameters]

	combs     [2][numCombs]comb
	allPasses [2][numAllPasses]allPass
}

// NewReverb returns a reverb prepared for 44.1 kHz.
func NewReverb(p ReverbParameters) *Reverb {
	r := &Reverb{}
	r.SetParameters(p)
	r.Prepare(tuningRate)
	return r
}

// SetParameters publishes p; the next Process call uses it.
func (r *Reverb) SetParameters(p ReverbParameters) { r.params.Store(&p) }

func (r *Reverb) Parameters() ReverbParameters { return *r.params.Load() }

// Prepare sizes the delay lines for sampleRate and clears them. It must not
// run concurrently with Process.
func (r *Reverb) Prepare(sampleRate float64) {
	scale := sampleRate / tuningRate
	for ch := range 2 {
		spread := ch * stereoSpread
		for i, tuning := range combTunings {
			r.combs[ch][i].setSize(int(float64(tuning+spread) * scale))
		}
		for i, tuning := range allPassTunings {
			r.allPasses[ch][i].setSize(int(float64(tuning+spread) * scale))
		}
	}
}

// Reset clears every delay line without resizing.
func (r *Reverb) Reset() {
	for ch := range 2 {
		for i := range r.combs[ch] {
			r.combs[ch][i].clear()
		}
		for i := range r.allPasses[ch] {
			r.allPasses[ch][i].clear()
		}
	}
}

type gains struct {
	input, dry, wet1, wet2 float32
	damping, feedback      float32
}

func (r *Reverb) gains() gains {
	p := r.params.Load()
	wet := p.WetLevel * wetScale
	g := gains{
		input:    fixedGain,
		dry:      float32(p.DryLevel * dryScale),
		wet1:     float32(0.5 * wet * (1 + p.Width)),
		wet2:     float32(0.5 * wet * (1 - p.Width)),
		damping:  float32(p.Damping * dampingScale),
		feedback: float32(p.RoomSize*roomScale + roomOffset),
	}
	if p.FreezeMode >= freezeTrigger {
		g.input, g.damping, g.feedback = 0, 0, 1
	}
	return g
}

// ProcessStereo reverberates left and right in place.
func (r *Reverb) ProcessStereo(left, right []float32) {
	g := r.gains()
	frames := min(len(left), len(right))

	for i := range frames {
		input := (left[i] + right[i]) * g.input
		var outL, outR float32

		for j := range numCombs {
			outL += r.combs[0][j].process(input, g.damping, g.feedback)
			outR += r.combs[1][j].process(input, g.damping, g.feedback)
		}
		for j := range numAllPasses {
			outL = r.allPasses[0][j].process(outL)
			outR = r.allPasses[1][j].process(outR)
		}

		left[i], right[i] = outL*g.wet1+outR*g.wet2+left[i]*g.dry,
			outR*g.wet1+outL*g.wet2+right[i]*g.dry
	}
}

// ProcessMono reverberates samples in place using the left delay lines.
func (r *Reverb) ProcessMono(samples []float32) {
	g := r.gains()

	for i, s := range samples {
		input := s * g.input
		var out float32

		for j := range numCombs {
			out += r.combs[0][j].process(input, g.damping, g.feedback)
		}
		for j := range numAllPasses {
			out = r.allPasses[0][j].process(out)
		}

		samples[i] = out*g.wet1 + s*g.dry
	}
}

type comb struct {
	buf  []float32
	idx  int
	last float32
}

func (c *comb) setSize(n int) {
	n = max(n, 1)
	if cap(c.buf) >= n {
		c.buf = c.buf[:n]
	} else {
		c.buf = make([]float32, n)
	}
	c.clear()
}

func (c *comb) clear() {
	clear(c.buf)
	c.idx = 0
	c.last = 0
}

func (c *comb) process(in, damping, feedback float32) float32 {
	out := c.buf[c.idx]
	c.last = out*(1-damping) + c.last*damping
	c.buf[c.idx] = in + c.last*feedback
	if c.idx++; c.idx >= len(c.buf) {
		c.idx = 0
	}
	return out
}

type allPass struct {
	buf []float32
	idx int
}

func (a *allPass) setSize(n int) {
	n = max(n, 1)
	if cap(a.buf) >= n {
		a.buf = a.buf[:n]
	} else {
		a.buf = make([]float32, n)
	}
	a.clear()
}

func (a *allPass) clear() {
	clear(a.buf)
	a.idx = 0
}

func (a *allPass) process(in float32) float32 {
	buffered := a.buf[a.idx]
	a.buf[a.idx] = in + buffered*0.5
	if a.idx++; a.idx >= len(a.buf) {
		a.idx = 0
	}
	return buffered - in
}
