// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds deterministic sources for tests.
package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel); negative means endless
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32
	reads        int
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate; a
// negative value never reaches EOF.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewRampSource yields the frame index as the sample value on every channel,
// which makes consumed positions easy to read back from the output.
func NewRampSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		return float32(sample)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
	m.reads = 0
}

// Consumed is the number of frames handed out so far.
func (m *MockSource) Consumed() int { return m.generated }

// Reads is the number of ReadSamples calls so far.
func (m *MockSource) Reads() int { return m.reads }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	m.reads++

	endless := m.totalSamples < 0
	if !endless && m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := len(dst) / m.channels
	if !endless {
		framesToWrite = min(framesToWrite, m.totalSamples-m.generated)
	}

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if !endless && m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// Samples renders totalFrames frames of waveform as interleaved values.
func Samples(channels, totalFrames int, waveform func(sample int, channel int) float32) []float32 {
	out := make([]float32, channels*totalFrames)
	for f := range totalFrames {
		for c := range channels {
			out[f*channels+c] = waveform(f, c)
		}
	}
	return out
}

// Sine returns a waveform function for a sine of the given frequency.
func Sine(sampleRate int, frequency, amplitude float64) func(int, int) float32 {
	return func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
}
