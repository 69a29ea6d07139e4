// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/utils"
	"github.com/pion/logging"
)

// Band selects one of the three equalizer stages.
type Band int

const (
	Bass Band = iota
	Mid
	Treble

	numBands
)

func (b Band) String() string {
	switch b {
	case Bass:
		return "bass"
	case Mid:
		return "mid"
	case Treble:
		return "treble"
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// Equalizer band settings.
const (
	BassMinFreq  = 200.0
	BassMaxFreq  = 20000.0
	MidFreq      = 1000.0
	TrebleFreq   = 3000.0
	BandQ        = 0.707
	RangeDB      = 12.0
	lowPassQ     = math.Sqrt2 / 2
	minBandValue = -1.0
	maxBandValue = 1.0
)

// BassCutoff maps a bass value in [-1, 1] to the low-pass cutoff in Hz.
func BassCutoff(v float64) float64 {
	return BassMinFreq + ((v+1)/2)*(BassMaxFreq-BassMinFreq)
}

// BandGain maps a mid or treble value in [-1, 1] to a linear factor (+-12 dB).
func BandGain(v float64) float64 {
	return utils.DBToGain(v * RangeDB)
}

// Equalizer is a bass low-pass, a mid band-pass followed by a gain, and a
// treble high-shelf, cascaded in that order on every channel.
//
// Setters run on the control goroutine: they recompute the band's
// coefficients and publish them atomically. Process runs on the audio
// goroutine and picks them up on its next call. Every band value starts at 0
// and a band stays bypassed until its value first changes.
type Equalizer struct {
	log logging.LeveledLogger

	mtx        sync.Mutex // serializes setters and Prepare
	sampleRate float64
	values     [numBands]float64
	active     [numBands]bool

	coeffs  [numBands]atomic.Pointer[Coefficients]
	midGain audio.Param

	filters    [][numBands]biquad // audio goroutine only
	recomputes atomic.Int64
}

// NewEqualizer returns an equalizer with every band bypassed.
func NewEqualizer(log logging.LeveledLogger) *Equalizer {
	e := &Equalizer{log: log}
	e.midGain.Store(1)
	return e
}

// Prepare sets the sample rate and channel count, resets filter state and
// redesigns every active band. It must not run concurrently with Process.
func (e *Equalizer) Prepare(sampleRate float64, channels int) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.sampleRate = sampleRate
	e.filters = make([][numBands]biquad, channels)

	for band := range numBands {
		if e.active[band] {
			e.recompute(band)
		}
	}
}

func (e *Equalizer) SetBass(v float64) error   { return e.Set(Bass, v) }
func (e *Equalizer) SetMid(v float64) error    { return e.Set(Mid, v) }
func (e *Equalizer) SetTreble(v float64) error { return e.Set(Treble, v) }

// Set writes a band value in [-1, 1]. Out of range values are rejected and
// logged. Writing the stored value, 0 on a fresh equalizer, does nothing.
func (e *Equalizer) Set(band Band, v float64) error {
	if band < 0 || band >= numBands {
		return fmt.Errorf("%v: %w", band, audio.ErrOutOfRange)
	}
	if !audio.InRange(v, minBandValue, maxBandValue) {
		e.log.Warnf("%v %v outside [%v, %v], ignored", band, v, minBandValue, maxBandValue)
		return fmt.Errorf("%v %v: %w", band, v, audio.ErrOutOfRange)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.values[band] == v {
		return nil
	}

	e.values[band] = v
	e.active[band] = true
	if band == Mid {
		e.midGain.Store(BandGain(v))
	}
	if e.sampleRate > 0 {
		e.recompute(band)
	}
	return nil
}

// Value returns the stored value of band and whether it ever changed from 0.
func (e *Equalizer) Value(band Band) (float64, bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.values[band], e.active[band]
}

// Recomputes counts coefficient designs since construction.
func (e *Equalizer) Recomputes() int64 { return e.recomputes.Load() }

// Coefficients returns the published set for band, nil while bypassed.
func (e *Equalizer) Coefficients(band Band) *Coefficients { return e.coeffs[band].Load() }

func (e *Equalizer) recompute(band Band) {
	var c *Coefficients
	switch band {
	case Bass:
		c = LowPass(e.sampleRate, BassCutoff(e.values[band]), lowPassQ)
	case Mid:
		c = BandPass(e.sampleRate, MidFreq, BandQ)
	case Treble:
		c = HighShelf(e.sampleRate, TrebleFreq, BandQ, BandGain(e.values[band]))
	}

	e.coeffs[band].Store(c)
	e.recomputes.Add(1)
	e.log.Debugf("%v set to %v at %v Hz", band, e.values[band], e.sampleRate)
}

// Process filters every prepared channel of b in place.
func (e *Equalizer) Process(b *audio.Block) {
	var active [numBands]*Coefficients
	enabled := false
	for band := range numBands {
		// A set designed for another rate is never applied.
		if c := e.coeffs[band].Load(); c != nil && c.sampleRate == e.sampleRate {
			active[band] = c
			enabled = true
		}
	}
	if !enabled {
		return
	}

	gain := float32(e.midGain.Load())
	for ch := range min(len(e.filters), b.Channels()) {
		samples := b.Channel(ch)
		state := &e.filters[ch]

		if c := active[Bass]; c != nil {
			state[Bass].process(samples, c)
		}
		if c := active[Mid]; c != nil {
			state[Mid].process(samples, c)
			for i := range samples {
				samples[i] *= gain
			}
		}
		if c := active[Treble]; c != nil {
			state[Treble].process(samples, c)
		}
	}
}

// Reset clears the filter history of every channel. Audio goroutine only.
func (e *Equalizer) Reset() {
	for ch := range e.filters {
		for band := range numBands {
			e.filters[ch][band].reset()
		}
	}
}
