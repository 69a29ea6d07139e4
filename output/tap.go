// SPDX-License-Identifier: EPL-2.0

package output

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/ik5/deckmix/audio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Tap passes blocks through while copying a mono mix of every frame into a
// ring buffer.
type Tap struct {
	src audio.BlockSource

	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap wraps src with a ring buffer of size frames.
func NewTap(src audio.BlockSource, size int) *Tap {
	size = max(size, 1)
	return &Tap{
		src:  src,
		buf:  make([]float64, size),
		size: size,
	}
}

func (t *Tap) FillBlock(b *audio.Block) {
	t.src.FillBlock(b)

	channels := b.Channels()
	if channels == 0 {
		return
	}
	scale := 1 / float64(channels)

	t.mu.Lock()
	for i := range b.Frames() {
		var sum float64
		for c := range channels {
			sum += float64(b.Channel(c)[i])
		}
		t.buf[t.pos] = sum * scale
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
}

// Samples returns the last n captured frames in chronological order.
func (t *Tap) Samples(n int) []float64 {
	n = min(max(n, 0), t.size)
	out := make([]float64, n)

	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()

	return out
}

// Spectrum runs a Hann-windowed FFT over the last n frames and averages the
// magnitudes into bands groups of log-spaced bins. Levels are mapped from
// a -10..40 dB range onto 0..1.
func (t *Tap) Spectrum(n, bands int) []float64 {
	levels := make([]float64, max(bands, 0))
	if n < 2 || bands <= 0 {
		return levels
	}

	x := t.Samples(n)
	window.Apply(x, window.Hann)
	spectrum := fft.FFTReal(x)

	half := len(spectrum) / 2
	lo := 1
	for b := range bands {
		hi := int(math.Round(math.Pow(float64(half), float64(b+1)/float64(bands))))
		hi = min(max(hi, lo+1), half+1)

		var sum float64
		for i := lo; i < hi && i < len(spectrum); i++ {
			sum += cmplx.Abs(spectrum[i])
		}
		if count := hi - lo; count > 0 && sum > 0 {
			levels[b] = Level(sum / float64(count))
		}
		lo = hi
	}

	return levels
}

// Level maps an FFT magnitude onto 0..1.
func Level(magnitude float64) float64 {
	if magnitude <= 0 {
		return 0
	}
	return audio.Clamp((20*math.Log10(magnitude)+10)/50, 0, 1)
}
