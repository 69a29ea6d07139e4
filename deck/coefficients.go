// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"math"
	"math/cmplx"
)

// Coefficients is an immutable biquad coefficient set, normalized so that
// a0 == 1. It remembers the sample rate it was designed for.
type Coefficients struct {
	b0, b1, b2 float64
	a1, a2     float64

	sampleRate float64
}

func newCoefficients(sampleRate, b0, b1, b2, a0, a1, a2 float64) *Coefficients {
	inv := 1 / a0
	return &Coefficients{
		b0:         b0 * inv,
		b1:         b1 * inv,
		b2:         b2 * inv,
		a1:         a1 * inv,
		a2:         a2 * inv,
		sampleRate: sampleRate,
	}
}

// maxCutoff keeps designs below Nyquist.
func maxCutoff(sampleRate, freq float64) float64 {
	return math.Max(1, math.Min(freq, sampleRate*0.49))
}

// LowPass designs a second-order low-pass filter.
func LowPass(sampleRate, freq, q float64) *Coefficients {
	n := 1 / math.Tan(math.Pi*maxCutoff(sampleRate, freq)/sampleRate)
	nSquared := n * n
	invQ := 1 / q
	c1 := 1 / (1 + invQ*n + nSquared)

	return newCoefficients(sampleRate,
		c1, c1*2, c1,
		1, c1*2*(1-nSquared), c1*(1-invQ*n+nSquared))
}

// BandPass designs a constant 0 dB peak band-pass filter.
func BandPass(sampleRate, freq, q float64) *Coefficients {
	n := 1 / math.Tan(math.Pi*maxCutoff(sampleRate, freq)/sampleRate)
	nSquared := n * n
	invQ := 1 / q
	c1 := 1 / (1 + invQ*n + nSquared)

	return newCoefficients(sampleRate,
		c1*n*invQ, 0, -c1*n*invQ,
		1, c1*2*(1-nSquared), c1*(1-invQ*n+nSquared))
}

// HighShelf designs a shelf boosting or cutting above freq by gainFactor
// (linear amplitude).
func HighShelf(sampleRate, freq, q, gainFactor float64) *Coefficients {
	a := math.Sqrt(math.Max(gainFactor, 1e-6))
	aminus1 := a - 1
	aplus1 := a + 1
	omega := 2 * math.Pi * maxCutoff(sampleRate, freq) / sampleRate
	coso := math.Cos(omega)
	beta := math.Sin(omega) * math.Sqrt(a) / q
	aminus1TimesCoso := aminus1 * coso

	return newCoefficients(sampleRate,
		a*(aplus1+aminus1TimesCoso+beta),
		a*-2*(aminus1+aplus1*coso),
		a*(aplus1+aminus1TimesCoso-beta),
		aplus1-aminus1TimesCoso+beta,
		2*(aminus1-aplus1*coso),
		aplus1-aminus1TimesCoso-beta)
}

func (c *Coefficients) SampleRate() float64 { return c.sampleRate }

// Magnitude is the linear gain of the filter at freq.
func (c *Coefficients) Magnitude(freq float64) float64 {
	w := 2 * math.Pi * freq / c.sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.b0, 0) + complex(c.b1, 0)*z1 + complex(c.b2, 0)*z2
	den := 1 + complex(c.a1, 0)*z1 + complex(c.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// biquad is the per-channel filter state (transposed direct form II).
type biquad struct {
	z1, z2 float64
}

func (f *biquad) reset() { f.z1, f.z2 = 0, 0 }

func (f *biquad) process(samples []float32, c *Coefficients) {
	z1, z2 := f.z1, f.z2
	for i, s := range samples {
		in := float64(s)
		out := c.b0*in + z1
		z1 = c.b1*in - c.a1*out + z2
		z2 = c.b2*in - c.a2*out
		samples[i] = float32(out)
	}
	f.z1, f.z2 = z1, z2
}
