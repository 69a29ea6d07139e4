// SPDX-License-Identifier: EPL-2.0

// Package output connects the block pipeline to the outside world.
//
// Streamer adapts any audio.BlockSource to a beep.Streamer, so the speaker
// callback becomes the audio clock that pulls the engine:
//
//	sr := beep.SampleRate(44100)
//	speaker.Init(sr, sr.N(100*time.Millisecond))
//	speaker.Play(output.NewStreamer(engine, 2, 512))
//
// Tap sits between the engine and the Streamer and keeps the last few
// thousand output samples for meters and spectrum displays.
package output
