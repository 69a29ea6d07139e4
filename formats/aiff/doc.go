// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF audio file decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files. Integer
// PCM at 8, 16, 24 or 32 bits is supported, with any channel count and
// sample rate.
//
//	file, _ := os.Open("audio.aiff")
//	source, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not an AIFF file
//	}
//
// go-audio needs to seek between chunks, so a reader that cannot seek is
// read into memory first. The engine registers this decoder for both the
// "aiff" and "aif" extensions.
package aiff
