// SPDX-License-Identifier: EPL-2.0

// Package audio provides the pull-based building blocks of the mixing engine.
//
//   - Source and Decoder: interleaved PCM produced by the formats/* packages
//   - Registry: extension to decoder resolution, the format manager handed to decks
//   - Clip: a fully decoded, immutable PCM buffer
//   - Block and BlockSource: planar buffers filled in place on every pull
//   - Resampler: variable-rate cubic interpolation for speed control
//   - Param: a lock-free float64 slot shared between goroutines
//
// # Sources and clips
//
// Decoders stream interleaved float32 samples:
//
//	src, err := registry.Open("/music/track.mp3")
//	clip, err := audio.ReadClip(src)
//
// A Clip is decoded once on the control goroutine and can then be read from
// the audio goroutine without locks.
//
// # Blocks
//
// The audio clock owns a Block and hands it to the head of the pipeline. Every
// stage implements
//
//	type BlockSource interface {
//	    FillBlock(b *Block)
//	}
//
// and must write exactly b.Frames() samples to every channel. FillBlock has no
// error return: a pull always completes, falling back to silence.
//
// # Resampling
//
// The Resampler reads a Source at ratio * srcRate / dstRate source frames per
// output frame:
//
//	r := audio.NewResampler(src, 48000)
//	r.Prepare(48000, 512)
//	r.SetRatio(1.25) // clamped to [MinRatio, MaxRatio]
//	r.FillBlock(block)
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0].
// Intermediate stages may exceed that range; the output stage clamps.
package audio
