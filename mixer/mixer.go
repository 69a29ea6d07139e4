// SPDX-License-Identifier: EPL-2.0

// Package mixer sums decks into one output block and drives their gains
// from a crossfader.
package mixer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ik5/deckmix/audio"
	"github.com/pion/logging"
)

type input struct {
	src  audio.BlockSource
	gain audio.Param
}

// Mixer pulls every input into a scratch block, scales it by the input's
// gain and accumulates the result. Gains are plain slots: a manual volume
// write and a crossfader move overwrite each other, last write wins.
type Mixer struct {
	log logging.LeveledLogger

	mtx     sync.Mutex // serializes AddInput
	inputs  atomic.Pointer[[]*input]
	scratch *audio.Block
}

// New returns a mixer without inputs, ready for stereo blocks of blockFrames.
func New(log logging.LeveledLogger) *Mixer {
	if log == nil {
		log = logging.NewDefaultLoggerFactory().NewLogger("mixer")
	}

	m := &Mixer{log: log}
	m.inputs.Store(&[]*input{})
	m.Prepare(2, 512)
	return m
}

// Prepare sizes the scratch block. It must not run concurrently with FillBlock.
func (m *Mixer) Prepare(channels, blockFrames int) {
	m.scratch = audio.NewBlock(channels, blockFrames)
}

// AddInput appends src at unity gain and returns its index.
func (m *Mixer) AddInput(src audio.BlockSource) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	in := &input{src: src}
	in.gain.Store(1)

	old := *m.inputs.Load()
	next := make([]*input, len(old), len(old)+1)
	copy(next, old)
	next = append(next, in)
	m.inputs.Store(&next)

	return len(next) - 1
}

// Inputs is the number of inputs.
func (m *Mixer) Inputs() int { return len(*m.inputs.Load()) }

func (m *Mixer) input(i int) (*input, error) {
	inputs := *m.inputs.Load()
	if i < 0 || i >= len(inputs) {
		return nil, fmt.Errorf("input %d: %w", i, ErrNoInput)
	}
	return inputs[i], nil
}

// SetGain sets the linear gain of input i. Gains outside [0, 1] are
// rejected and logged.
func (m *Mixer) SetGain(i int, gain float64) error {
	in, err := m.input(i)
	if err != nil {
		m.log.Warnf("gain ignored: %v", err)
		return err
	}
	if !audio.InRange(gain, 0, 1) {
		m.log.Warnf("gain %v for input %d outside [0, 1], ignored", gain, i)
		return fmt.Errorf("gain %v: %w", gain, audio.ErrOutOfRange)
	}

	in.gain.Store(gain)
	return nil
}

// Gain returns the gain of input i, 0 for an unknown input.
func (m *Mixer) Gain(i int) float64 {
	in, err := m.input(i)
	if err != nil {
		return 0
	}
	return in.gain.Load()
}

// FillBlock writes the weighted sum of every input into out. Inputs are
// pulled even at zero gain so they keep advancing.
func (m *Mixer) FillBlock(out *audio.Block) {
	out.Clear()

	if m.scratch.Channels() != out.Channels() {
		m.scratch = audio.NewBlock(out.Channels(), out.Frames())
	}
	m.scratch.SetFrames(out.Frames())

	for _, in := range *m.inputs.Load() {
		gain := float32(in.gain.Load())
		in.src.FillBlock(m.scratch)

		for c := range out.Channels() {
			dst, src := out.Channel(c), m.scratch.Channel(c)
			for i := range dst {
				dst[i] += src[i] * gain
			}
		}
	}
}
