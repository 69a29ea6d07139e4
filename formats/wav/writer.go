// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/utils"
)

// Writer encodes blocks as 16-bit PCM WAV. The header sizes are patched on
// Close, so the destination must seek.
type Writer struct {
	enc      *gowav.Encoder
	channels int
	buf      *goaudio.IntBuffer
	frames   int64
	closed   bool
}

// NewWriter starts a WAV stream on w.
func NewWriter(w io.WriteSeeker, sampleRate, channels int) *Writer {
	return &Writer{
		enc:      gowav.NewEncoder(w, sampleRate, 16, channels, pcmFormat),
		channels: channels,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// WriteBlock appends b. Missing channels are written as silence and extra
// channels are dropped.
func (w *Writer) WriteBlock(b *audio.Block) error {
	if w.closed {
		return ErrWriterClosed
	}

	frames := b.Frames()
	need := frames * w.channels
	if cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	w.buf.Data = w.buf.Data[:need]

	for c := range w.channels {
		if c >= b.Channels() {
			for f := range frames {
				w.buf.Data[f*w.channels+c] = 0
			}
			continue
		}
		for f, v := range b.Channel(c) {
			w.buf.Data[f*w.channels+c] = int(utils.Float32ToInt16(v))
		}
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.frames += int64(frames)
	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close finalizes the header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
