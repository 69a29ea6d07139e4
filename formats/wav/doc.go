// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes WAV audio with github.com/go-audio/wav.
//
// # Decoding
//
// The Decoder accepts integer PCM at 16, 24 or 32 bits, any channel count
// and any sample rate:
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//
// Samples are normalized to float32 in [-1.0, 1.0). go-audio needs to seek
// between chunks, so a reader that cannot seek is buffered in memory.
//
// # Encoding
//
// Writer records planar blocks as 16-bit PCM:
//
//	file, _ := os.Create("mix.wav")
//	w := wav.NewWriter(file, 44100, 2)
//	w.WriteBlock(block)
//	w.Close()
//
// Close patches the RIFF and data sizes, so the destination must be an
// io.WriteSeeker such as an *os.File.
package wav
