// SPDX-License-Identifier: EPL-2.0

package audio

// Block is a planar buffer of channels x frames samples. It is owned by the
// caller of a pull and filled in place by every pipeline stage.
type Block struct {
	data  [][]float32
	store [][]float32
}

// BlockSource is implemented by every stage that can fill a block on demand.
// FillBlock must always write Frames() samples to every channel of b.
type BlockSource interface {
	FillBlock(b *Block)
}

// NewBlock allocates a block with the given channel count and frame capacity.
func NewBlock(channels, frames int) *Block {
	b := &Block{
		data:  make([][]float32, channels),
		store: make([][]float32, channels),
	}
	for c := range channels {
		b.store[c] = make([]float32, frames)
		b.data[c] = b.store[c]
	}
	return b
}

func (b *Block) Channels() int { return len(b.data) }

func (b *Block) Frames() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}

// Cap is the largest frame count SetFrames can select without allocating.
func (b *Block) Cap() int {
	if len(b.store) == 0 {
		return 0
	}
	return len(b.store[0])
}

// Channel returns the samples of channel c.
func (b *Block) Channel(c int) []float32 { return b.data[c] }

// SetFrames changes the active frame count. It only allocates when n exceeds Cap.
func (b *Block) SetFrames(n int) {
	if n > b.Cap() {
		for c := range b.store {
			grown := make([]float32, n)
			copy(grown, b.store[c])
			b.store[c] = grown
		}
	}
	for c := range b.store {
		b.data[c] = b.store[c][:n]
	}
}

// Clear writes silence to every active sample.
func (b *Block) Clear() {
	for _, ch := range b.data {
		clear(ch)
	}
}

// CopyFrom copies src into b, matching frame counts. Channels missing from
// src are silenced.
func (b *Block) CopyFrom(src *Block) {
	b.SetFrames(src.Frames())
	for c := range b.data {
		if c < src.Channels() {
			copy(b.data[c], src.data[c])
		} else {
			clear(b.data[c])
		}
	}
}

// Scale multiplies every active sample by gain.
func (b *Block) Scale(gain float32) {
	for _, ch := range b.data {
		for i := range ch {
			ch[i] *= gain
		}
	}
}

// Interleave writes the block's frames into dst as interleaved samples and
// returns the number of values written.
func (b *Block) Interleave(dst []float32) int {
	channels := b.Channels()
	frames := min(b.Frames(), len(dst)/max(channels, 1))
	for c, ch := range b.data {
		for f := range frames {
			dst[f*channels+c] = ch[f]
		}
	}
	return frames * channels
}
