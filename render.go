// SPDX-License-Identifier: EPL-2.0

package deckmix

import (
	"fmt"

	"github.com/ik5/deckmix/audio"
)

// BlockWriter consumes rendered blocks, e.g. wav.Writer.
type BlockWriter interface {
	WriteBlock(b *audio.Block) error
}

// Render pulls frames output frames in prepared block sizes and writes
// each block to w. It must not run while another goroutine pulls the
// engine.
func (e *Engine) Render(w BlockWriter, frames int) error {
	if frames < 0 {
		return fmt.Errorf("render %d frames: %w", frames, audio.ErrOutOfRange)
	}

	b := audio.NewBlock(e.channels, e.blockFrames)
	for done := 0; done < frames; {
		n := min(frames-done, e.blockFrames)
		b.SetFrames(n)
		e.FillBlock(b)

		if err := w.WriteBlock(b); err != nil {
			return fmt.Errorf("writing block at frame %d: %w", done, err)
		}
		done += n
	}

	e.log.Infof("rendered %d frames at %d Hz", frames, e.sampleRate)
	return nil
}

// RenderSeconds renders seconds of output at the engine's sample rate.
func (e *Engine) RenderSeconds(w BlockWriter, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("render %vs: %w", seconds, audio.ErrOutOfRange)
	}
	return e.Render(w, int(seconds*float64(e.sampleRate)))
}
