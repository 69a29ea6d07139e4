// SPDX-License-Identifier: EPL-2.0

package deckmix

import (
	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/formats/aiff"
	"github.com/ik5/deckmix/formats/mp3"
	"github.com/ik5/deckmix/formats/vorbis"
	"github.com/ik5/deckmix/formats/wav"
)

// DefaultRegistry returns a registry with every built-in decoder, keyed by
// file extension.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})

	r.Alias("wave", "wav")
	r.Alias("oga", "ogg")
	r.Alias("aif", "aiff")
	return r
}
