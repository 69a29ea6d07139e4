// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"io"
	"testing"

	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/internal/audiotest"
	"github.com/pion/logging"
)

func quietLogger() logging.LeveledLogger {
	return logging.NewDefaultLeveledLoggerForScope("test", logging.LogLevelDisabled, io.Discard)
}

func newClip(t testing.TB, sampleRate, channels, frames int, waveform func(int, int) float32) *audio.Clip {
	t.Helper()

	clip, err := audio.NewClip(sampleRate, channels, audiotest.Samples(channels, frames, waveform))
	if err != nil {
		t.Fatalf("NewClip() error = %v", err)
	}
	return clip
}

func ramp(sample int, _ int) float32 { return float32(sample) }

func constant(v float32) func(int, int) float32 {
	return func(int, int) float32 { return v }
}
