// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis. Samples are already
// float32 in [-1.0, 1.0] and interleaved, so the Source hands the caller's
// buffer to the decoder without conversion.
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//
// The engine registers this decoder under "ogg" with "oga" as an alias.
package vorbis
