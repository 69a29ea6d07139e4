// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Clip is a fully decoded, immutable PCM buffer. Decks play from clips so
// that seeking and looping are sample accurate and the audio goroutine
// never touches a decoder.
type Clip struct {
	sampleRate int
	channels   int
	data       []float32 // interleaved
}

// FrameCounter is implemented by sources that know their length up front.
// ReadClip uses it to size the clip in one allocation.
type FrameCounter interface {
	Frames() int64
}

// NewClip wraps interleaved samples. The slice is owned by the clip afterwards.
func NewClip(sampleRate, channels int, interleaved []float32) (*Clip, error) {
	if channels <= 0 {
		return nil, ErrNoChannels
	}
	if len(interleaved)%channels != 0 {
		return nil, ErrInvalidDstSize
	}
	if len(interleaved) == 0 {
		return nil, ErrEmptySource
	}

	return &Clip{
		sampleRate: sampleRate,
		channels:   channels,
		data:       interleaved,
	}, nil
}

// ReadClip drains src into a Clip. It does not close src.
func ReadClip(src Source) (*Clip, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufSize := max(src.BufSize(), 4096)
	bufSize -= bufSize % channels
	buf := make([]float32, bufSize)

	capacity := src.SampleRate() * channels * 4
	if fc, ok := src.(FrameCounter); ok && fc.Frames() > 0 {
		capacity = int(fc.Frames())*channels + bufSize
	}
	data := make([]float32, 0, capacity)
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n == 0 {
			// A source that neither progresses nor ends would spin forever.
			break
		}
	}

	// Drop a trailing partial frame.
	data = data[:len(data)-len(data)%channels]

	return NewClip(src.SampleRate(), channels, data)
}

func (c *Clip) SampleRate() int { return c.sampleRate }
func (c *Clip) Channels() int   { return c.channels }

// Frames is the clip length in frames.
func (c *Clip) Frames() int64 { return int64(len(c.data) / c.channels) }

// Seconds is the clip length in seconds.
func (c *Clip) Seconds() float64 {
	if c.sampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.sampleRate)
}

// Frame returns the interleaved samples starting at frame f, up to n frames.
func (c *Clip) Frame(f int64, n int) []float32 {
	start := int(f) * c.channels
	end := min(start+n*c.channels, len(c.data))
	if start >= end {
		return nil
	}
	return c.data[start:end]
}
