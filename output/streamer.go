// SPDX-License-Identifier: EPL-2.0

package output

import (
	"github.com/faiface/beep"
	"github.com/ik5/deckmix/audio"
)

// Streamer pulls blocks from src and hands them to beep as stereo frames.
// A live engine never runs dry, so Stream always fills the whole request.
type Streamer struct {
	src   audio.BlockSource
	block *audio.Block
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer pulls src in blocks of at most blockFrames. A mono source is
// copied to both speaker channels.
func NewStreamer(src audio.BlockSource, channels, blockFrames int) *Streamer {
	return &Streamer{
		src:   src,
		block: audio.NewBlock(max(channels, 1), max(blockFrames, 1)),
	}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	right := min(1, s.block.Channels()-1)

	for done := 0; done < len(samples); {
		n := min(len(samples)-done, s.block.Cap())
		s.block.SetFrames(n)
		s.src.FillBlock(s.block)

		l, r := s.block.Channel(0), s.block.Channel(right)
		for i := range n {
			samples[done+i][0] = float64(l[i])
			samples[done+i][1] = float64(r[i])
		}
		done += n
	}

	return len(samples), true
}

func (s *Streamer) Err() error { return nil }
