// SPDX-License-Identifier: EPL-2.0

// Package deckmix is a two-deck DJ mixing engine.
//
// An Engine owns a format registry, two decks and a mixer with an
// equal-power crossfader between them. Each deck plays a fully decoded
// clip through a variable-rate resampler, a reverb send and a three-band
// equalizer. The engine is pulled: whatever drives the audio device calls
// FillBlock with an output block and every stage fills it in place.
//
// # Supported Formats
//
// DefaultRegistry decodes:
//   - WAV (PCM 16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis (also .oga)
//   - AIFF (PCM 8/16/24/32-bit) via formats/aiff (also .aif)
//
// # Quick Start
//
//	engine := deckmix.NewEngine()
//	a, _ := engine.Deck(0)
//	if err := a.Load("/music/intro.wav"); err != nil {
//	    // Handle error
//	}
//	_ = a.Start()
//	_ = engine.Crossfade(1) // all deck A
//
//	sr := beep.SampleRate(44100)
//	speaker.Init(sr, sr.N(100*time.Millisecond))
//	speaker.Play(output.NewStreamer(engine, 2, 512))
//
// # Offline rendering
//
// Render pulls the same graph without a device and hands every block to a
// BlockWriter such as wav.Writer:
//
//	f, _ := os.Create("mix.wav")
//	w := wav.NewWriter(f, 44100, 2)
//	err := engine.Render(w, 44100*30)
//	w.Close()
//
// # Concurrency
//
// Deck, mixer and crossfader controls may be called from any goroutine
// while FillBlock runs on the audio goroutine. Prepare must not overlap
// FillBlock.
package deckmix
