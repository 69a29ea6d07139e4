// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ik5/deckmix/audio"
)

// LoopTolerance is how close to the end, in seconds, a looping transport
// restarts at the beginning of a pull.
const LoopTolerance = 0.1

// Transport plays a Clip. It tracks play state, position and looping, and
// serves the clip as an endless interleaved Source to the resampler: every
// read is filled completely, with silence when stopped.
//
// All state lives in atomics. The control goroutine writes, the audio
// goroutine reads and advances the position with compare-and-swap so a
// concurrent seek always wins.
type Transport struct {
	channels int

	clip     atomic.Pointer[audio.Clip]
	playing  atomic.Bool
	looping  atomic.Bool
	position atomic.Int64 // frames
}

// NewTransport returns a stopped transport producing channels-wide frames.
func NewTransport(channels int) *Transport {
	return &Transport{channels: max(channels, 1)}
}

// SetClip publishes clip, stops playback and rewinds to the start. A nil
// clip unloads.
func (t *Transport) SetClip(clip *audio.Clip) {
	t.playing.Store(false)
	t.clip.Store(clip)
	t.position.Store(0)
}

func (t *Transport) Clip() *audio.Clip { return t.clip.Load() }

// Start begins playback. It reports false, and does nothing, without a clip.
func (t *Transport) Start() bool {
	if t.clip.Load() == nil {
		return false
	}
	t.playing.Store(true)
	return true
}

func (t *Transport) Stop() { t.playing.Store(false) }

func (t *Transport) IsPlaying() bool { return t.playing.Load() }

func (t *Transport) SetLooping(on bool) { t.looping.Store(on) }

func (t *Transport) IsLooping() bool { return t.looping.Load() }

// SetPosition moves to seconds, clamped into [0, Length()].
func (t *Transport) SetPosition(seconds float64) error {
	if math.IsNaN(seconds) {
		return fmt.Errorf("position %v: %w", seconds, audio.ErrOutOfRange)
	}

	clip := t.clip.Load()
	if clip == nil {
		t.position.Store(0)
		return nil
	}

	frames := math.Round(seconds * float64(clip.SampleRate()))
	frames = audio.Clamp(frames, 0, float64(clip.Frames()))
	t.position.Store(int64(frames))
	return nil
}

// SetPositionRelative moves to p * Length(). p outside [0, 1] is rejected.
func (t *Transport) SetPositionRelative(p float64) error {
	if !audio.InRange(p, 0, 1) {
		return fmt.Errorf("relative position %v: %w", p, audio.ErrOutOfRange)
	}
	return t.SetPosition(p * t.Length())
}

// Position is the read head in seconds.
func (t *Transport) Position() float64 {
	clip := t.clip.Load()
	if clip == nil || clip.SampleRate() <= 0 {
		return 0
	}
	return float64(t.position.Load()) / float64(clip.SampleRate())
}

// PositionRelative is Position()/Length() clamped to [0, 1], or 0 when
// nothing is loaded.
func (t *Transport) PositionRelative() float64 {
	clip := t.clip.Load()
	if clip == nil || clip.Frames() <= 0 {
		return 0
	}
	return audio.Clamp(float64(t.position.Load())/float64(clip.Frames()), 0, 1)
}

// Length is the clip duration in seconds, 0 without a clip.
func (t *Transport) Length() float64 {
	clip := t.clip.Load()
	if clip == nil {
		return 0
	}
	return clip.Seconds()
}

// CheckLoop rewinds to the start when playing, looping and within
// LoopTolerance of the end. It runs on the audio goroutine before each pull
// and reports whether it rewound.
func (t *Transport) CheckLoop() bool {
	if !t.playing.Load() || !t.looping.Load() {
		return false
	}

	clip := t.clip.Load()
	if clip == nil {
		return false
	}

	pos := t.position.Load()
	tolerance := int64(LoopTolerance * float64(clip.SampleRate()))
	if pos < clip.Frames()-tolerance {
		return false
	}
	return t.position.CompareAndSwap(pos, 0)
}

// SampleRate is the rate of the loaded clip, 0 without one.
func (t *Transport) SampleRate() int {
	if clip := t.clip.Load(); clip != nil {
		return clip.SampleRate()
	}
	return 0
}

func (t *Transport) Channels() int { return t.channels }
func (t *Transport) BufSize() int  { return 4096 }
func (t *Transport) Close() error  { return nil }

// ReadSamples fills dst with whole frames and never reports io.EOF. At the
// end of the clip a looping transport wraps to the start inside the same
// read; otherwise it stops and the remainder is silent.
func (t *Transport) ReadSamples(dst []float32) (int, error) {
	n := len(dst) - len(dst)%t.channels
	out := dst[:n]

	clip := t.clip.Load()
	if clip == nil || !t.playing.Load() {
		clear(out)
		return n, nil
	}

	length := clip.Frames()
	for len(out) > 0 {
		pos := t.position.Load()
		if pos >= length {
			if t.looping.Load() {
				t.position.CompareAndSwap(pos, 0)
				continue
			}
			t.playing.Store(false)
			clear(out)
			break
		}

		want := min(int64(len(out)/t.channels), length-pos)
		got := audio.MapChannels(out, t.channels, clip.Frame(pos, int(want)), clip.Channels())
		if got == 0 {
			clear(out)
			break
		}

		t.position.CompareAndSwap(pos, pos+int64(got))
		out = out[got*t.channels:]
	}

	return n, nil
}
