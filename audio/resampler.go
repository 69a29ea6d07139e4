// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync/atomic"

	"github.com/ik5/deckmix/utils"
)

// Playback ratio bounds accepted by a Resampler.
const (
	MinRatio = 0.5
	MaxRatio = 2.0
)

// Resampler renders an interleaved Source into blocks at a variable rate
// using cubic interpolation. The step between output frames is
//
//	ratio * src.SampleRate() / dstRate
//
// so a ratio of 1 plays the source at its natural speed on a device running
// at dstRate, and any other ratio speeds it up or slows it down (pitch follows).
// Every FillBlock call produces exactly the requested number of frames.
type Resampler struct {
	src      Source
	channels int
	dstRate  atomic.Int64
	ratio    Param
	reset    atomic.Bool

	// Frames per block from Prepare and the FIFO length in samples, read by
	// Reserve on the control goroutine.
	blockFrames atomic.Int64
	size        atomic.Int64
	pending     atomic.Pointer[[]float32]

	// Ring buffer holding 4 frames for cubic interpolation
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32

	// Fractional position between frames[1] and frames[2]
	pos float64

	// Interleaved frames pulled from src but not yet interpolated
	fifo       []float32
	head, tail int
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)

	r := &Resampler{
		src:      src,
		channels: channels,
		fifo:     make([]float32, 4096*channels),
	}
	r.dstRate.Store(int64(dstRate))
	r.ratio.Store(1)
	r.size.Store(int64(len(r.fifo)))

	// Initialize frame buffers
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate.Load()) }
func (r *Resampler) Channels() int   { return r.channels }

// Prepare sets the output rate and sizes the internal buffer for blocks of
// up to blockFrames. It must not run concurrently with FillBlock.
func (r *Resampler) Prepare(dstRate, blockFrames int) {
	r.dstRate.Store(int64(dstRate))
	r.blockFrames.Store(int64(blockFrames))
	r.pending.Store(nil)

	// Room for the fastest ratio with a generous rate-conversion margin, or
	// for the current source rate if that needs more.
	need := max(fifoFrames(blockFrames, MaxRatio*4), r.framesFor(r.src.SampleRate())) * r.channels
	if len(r.fifo) < need {
		r.fifo = make([]float32, need)
	}
	r.size.Store(int64(len(r.fifo)))
	r.clearHistory()
}

// Reserve makes room for a source running at srcRate played at MaxRatio,
// so the audio goroutine never grows its buffer. It allocates on the
// caller's goroutine and the next FillBlock adopts the new buffer.
func (r *Resampler) Reserve(srcRate int) {
	need := r.framesFor(srcRate) * r.channels
	if int64(need) <= r.size.Load() {
		return
	}

	buf := make([]float32, need)
	r.pending.Store(&buf)
	r.size.Store(int64(need))
}

// framesFor is the FIFO length in frames for one block of a source at srcRate.
func (r *Resampler) framesFor(srcRate int) int {
	dstRate := r.dstRate.Load()
	if srcRate <= 0 || dstRate <= 0 {
		return 0
	}
	return fifoFrames(int(r.blockFrames.Load()), MaxRatio*float64(srcRate)/float64(dstRate))
}

func fifoFrames(blockFrames int, step float64) int {
	return int(math.Ceil(float64(blockFrames)*step)) + 8
}

// SetRatio clamps ratio to [MinRatio, MaxRatio], stores it and returns the
// applied value. NaN is ignored.
func (r *Resampler) SetRatio(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return r.ratio.Load()
	}
	ratio = Clamp(ratio, MinRatio, MaxRatio)
	r.ratio.Store(ratio)
	return ratio
}

func (r *Resampler) Ratio() float64 { return r.ratio.Load() }

// Reset asks the audio goroutine to drop buffered frames before its next
// pull. Used after a seek or a source change.
func (r *Resampler) Reset() { r.reset.Store(true) }

// Step is the number of source frames consumed per output frame.
func (r *Resampler) Step() float64 {
	step := r.ratio.Load()
	srcRate, dstRate := r.src.SampleRate(), r.dstRate.Load()
	if srcRate > 0 && dstRate > 0 {
		step *= float64(srcRate) / float64(dstRate)
	}
	return step
}

// FillBlock writes b.Frames() interpolated frames into b.
func (r *Resampler) FillBlock(b *Block) {
	if buf := r.pending.Swap(nil); buf != nil {
		r.adopt(*buf)
	}
	if r.reset.Swap(false) {
		r.clearHistory()
	}

	frames := b.Frames()
	if frames == 0 {
		return
	}

	shared := min(b.Channels(), r.channels)
	for c := shared; c < b.Channels(); c++ {
		clear(b.Channel(c))
	}

	step := r.Step()

	// Pull everything this block needs in one read; shift() tops up if
	// float rounding asks for one more frame.
	r.topUp(int(r.pos + float64(frames-1)*step))

	for i := range frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			r.shift()
		}

		alpha := float32(r.pos)
		for c := range shared {
			b.Channel(c)[i] = utils.CubicInterpolate(
				r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}

		r.pos += step
	}
}

func (r *Resampler) buffered() int { return (r.tail - r.head) / r.channels }

// topUp makes sure at least n frames are buffered.
func (r *Resampler) topUp(n int) {
	missing := n - r.buffered()
	if missing <= 0 {
		return
	}

	// Compact so the free space is contiguous.
	if r.head > 0 {
		copy(r.fifo, r.fifo[r.head:r.tail])
		r.tail -= r.head
		r.head = 0
	}

	need := missing * r.channels
	if r.tail+need > len(r.fifo) {
		grown := make([]float32, r.tail+need)
		copy(grown, r.fifo[:r.tail])
		r.fifo = grown
		r.size.Store(int64(len(grown)))
	}

	for need > 0 {
		n, err := r.src.ReadSamples(r.fifo[r.tail : r.tail+need])
		n -= n % r.channels
		r.tail += n
		need -= n
		if n == 0 || err != nil {
			return
		}
	}
}

// adopt moves buffered frames into buf and makes it the FIFO.
func (r *Resampler) adopt(buf []float32) {
	if len(buf) < r.tail-r.head {
		return
	}
	r.tail = copy(buf, r.fifo[r.head:r.tail])
	r.head = 0
	r.fifo = buf
}

// shift advances the interpolation window by one source frame.
func (r *Resampler) shift() {
	// Shift frames: [0,1,2,3] -> [1,2,3,?]
	oldest := r.frames[0]
	r.frames[0] = r.frames[1]
	r.frames[1] = r.frames[2]
	r.frames[2] = r.frames[3]
	r.frames[3] = oldest

	if r.buffered() == 0 {
		r.topUp(1)
	}
	if r.buffered() == 0 {
		clear(r.frames[3])
		return
	}

	copy(r.frames[3], r.fifo[r.head:r.head+r.channels])
	r.head += r.channels
}

func (r *Resampler) clearHistory() {
	for i := range r.frames {
		clear(r.frames[i])
	}
	r.pos = 0
	r.head, r.tail = 0, 0
}
