// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3. The decoder always
// produces stereo at the stream's sample rate, so mono files are reported
// as two identical channels.
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//
// When the input can seek (an *os.File), the source also implements
// audio.FrameCounter so audio.ReadClip can allocate the clip once.
package mp3
