// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/internal/audiotest"
	"github.com/pion/logging"
)

// resamplerWarmup is the delay in frames of a unity-speed pull.
const resamplerWarmup = 3

func newTestDeck(t testing.TB, channels, sampleRate, blockFrames int) *Deck {
	t.Helper()

	d := New("test", nil, WithLogger(quietLogger()), WithChannels(channels))
	d.Prepare(sampleRate, blockFrames)
	return d
}

func TestDeck_Defaults(t *testing.T) {
	t.Parallel()

	d := New("a", nil, WithLogger(quietLogger()))

	if d.Name() != "a" || d.Channels() != DefaultChannels {
		t.Errorf("Name() = %q Channels() = %d", d.Name(), d.Channels())
	}
	if d.Speed() != 1 || d.WetDry() != 0 || d.IsLooping() || d.IsPlaying() {
		t.Errorf("unexpected defaults: speed %v wet %v looping %v playing %v",
			d.Speed(), d.WetDry(), d.IsLooping(), d.IsPlaying())
	}
	if d.Length() != 0 || d.PositionRelative() != 0 {
		t.Errorf("empty deck length %v relative %v, want 0", d.Length(), d.PositionRelative())
	}
	if err := d.Start(); !errors.Is(err, ErrNoClip) {
		t.Errorf("Start() without clip error = %v, want ErrNoClip", err)
	}
	if d.Reverb().Parameters() != DefaultReverbParameters() {
		t.Errorf("reverb parameters = %+v", d.Reverb().Parameters())
	}

	b := audio.NewBlock(2, 128)
	b.Channel(0)[5] = 1
	d.FillBlock(b)
	if i := firstNonZero(b.Channel(0)); i >= 0 {
		t.Errorf("empty deck produced sample %d = %v", i, b.Channel(0)[i])
	}
}

func TestDeck_UnityPlaybackIsExact(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 1, 1000, 100)
	d.LoadClip(newClip(t, 1000, 1, 1000, ramp))
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	b := audio.NewBlock(1, 100)
	for block := range 3 {
		d.FillBlock(b)
		for i, v := range b.Channel(0) {
			want := float32(max(block*100+i-resamplerWarmup, 0))
			if v != want {
				t.Fatalf("block %d frame %d = %v, want %v", block, i, v, want)
			}
		}
	}
}

func TestDeck_LoopRestartsBeforePull(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 1, 1000, 100)
	d.LoadClip(newClip(t, 1000, 1, 1000, ramp)) // 1 second
	d.SetLooping(true)
	d.Start()
	if err := d.SetPosition(0.95); err != nil {
		t.Fatal(err)
	}

	b := audio.NewBlock(1, 100)
	d.FillBlock(b)

	if !d.IsPlaying() {
		t.Fatal("looping deck stopped")
	}
	if pos := d.Position(); pos >= 0.5 {
		t.Errorf("Position() = %v, want restarted near 0", pos)
	}
	// The block starts from the top of the clip, not from the tail.
	for i, v := range b.Channel(0) {
		if want := float32(max(i-resamplerWarmup, 0)); v != want {
			t.Fatalf("frame %d = %v, want %v", i, v, want)
		}
	}
}

func TestDeck_LoopWrapsWithoutGap(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 1, 1000, 64)
	d.LoadClip(newClip(t, 1000, 1, 1000, constant(0.5)))
	d.SetLooping(true)
	d.Start()

	b := audio.NewBlock(1, 64)
	d.FillBlock(b) // warm up

	// 6.4 seconds, several loops
	for range 100 {
		d.FillBlock(b)
		for i, v := range b.Channel(0) {
			if math.Abs(float64(v)-0.5) > 1e-6 {
				t.Fatalf("gap in looping playback: sample %d = %v", i, v)
			}
		}
	}
	if !d.IsPlaying() {
		t.Error("looping deck stopped")
	}
}

func TestDeck_StopsAtEnd(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 1000, 64)
	d.LoadClip(newClip(t, 1000, 2, 100, constant(0.5)))
	d.Start()

	b := audio.NewBlock(2, 64)
	for range 4 {
		d.FillBlock(b)
	}

	if d.IsPlaying() {
		t.Error("IsPlaying() after the end = true")
	}
	if d.PositionRelative() != 1 {
		t.Errorf("PositionRelative() = %v, want 1", d.PositionRelative())
	}
	for c := range 2 {
		if i := firstNonZero(b.Channel(c)); i >= 0 {
			t.Errorf("channel %d sample %d = %v after the end, want silence", c, i, b.Channel(c)[i])
		}
	}
}

func TestDeck_SetSpeed(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)

	if err := d.SetSpeed(1.5); err != nil {
		t.Fatalf("SetSpeed(1.5) error = %v", err)
	}

	for _, r := range []float64{2.01, 0.49, -1, 0, math.NaN(), math.Inf(1)} {
		if err := d.SetSpeed(r); !errors.Is(err, audio.ErrOutOfRange) {
			t.Errorf("SetSpeed(%v) error = %v, want ErrOutOfRange", r, err)
		}
		if d.Speed() != 1.5 {
			t.Fatalf("SetSpeed(%v) changed the ratio to %v", r, d.Speed())
		}
	}

	for _, r := range []float64{audio.MinRatio, audio.MaxRatio, 1} {
		if err := d.SetSpeed(r); err != nil || d.Speed() != r {
			t.Errorf("SetSpeed(%v) = %v, Speed() %v", r, err, d.Speed())
		}
	}
}

func TestDeck_PitchBendSharesSpeedSlot(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)
	d.SetSpeed(0.8)

	tests := []struct {
		jog  float64
		want float64
	}{
		{0, 1},
		{0.5, 1.25},
		{-0.5, 0.75},
		{4, audio.MaxRatio},
		{-4, audio.MinRatio},
	}

	for _, tt := range tests {
		if got := d.PitchBend(tt.jog); got != tt.want || d.Speed() != tt.want {
			t.Errorf("PitchBend(%v) = %v (Speed %v), want %v", tt.jog, got, d.Speed(), tt.want)
		}
	}

	// Last write wins in both directions.
	d.SetSpeed(1.1)
	if d.Speed() != 1.1 {
		t.Errorf("SetSpeed after a bend: Speed() = %v, want 1.1", d.Speed())
	}
}

func TestDeck_FrameCountInvariant(t *testing.T) {
	t.Parallel()

	for _, speed := range []float64{0.5, 0.9, 1, 1.7, 2} {
		d := newTestDeck(t, 2, 48000, 256)
		d.LoadClip(newClip(t, 44100, 1, 44100, audiotest.Sine(44100, 440, 0.5)))
		d.SetSpeed(speed)
		d.SetWetDry(0.3)
		d.SetBass(0.2)
		d.Start()

		for _, frames := range []int{256, 17, 1, 200} {
			b := audio.NewBlock(2, frames)
			d.FillBlock(b)
			if b.Frames() != frames || b.Channels() != 2 {
				t.Fatalf("speed %v: block is %dx%d, want 2x%d", speed, b.Channels(), b.Frames(), frames)
			}
		}
	}
}

func TestDeck_SpeedAdvancesPosition(t *testing.T) {
	t.Parallel()

	for _, speed := range []float64{0.5, 1, 2} {
		d := newTestDeck(t, 1, 1000, 100)
		d.LoadClip(newClip(t, 1000, 1, 10000, ramp))
		d.SetSpeed(speed)
		d.Start()

		b := audio.NewBlock(1, 100)
		for range 20 { // 2 seconds of output
			d.FillBlock(b)
		}

		if want := 2 * speed; math.Abs(d.Position()-want) > 0.01 {
			t.Errorf("speed %v: Position() = %v, want ≈%v", speed, d.Position(), want)
		}
	}
}

func TestDeck_ReverbBypassAtZero(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 1000, 200)
	d.LoadClip(newClip(t, 1000, 2, 1000, ramp))
	d.SetWetDry(0.5)
	if err := d.SetWetDry(0); err != nil {
		t.Fatal(err)
	}
	d.Start()

	b := audio.NewBlock(2, 200)
	d.FillBlock(b)
	for c := range 2 {
		for i, v := range b.Channel(c) {
			if want := float32(max(i-resamplerWarmup, 0)); v != want {
				t.Fatalf("channel %d frame %d = %v, want dry %v", c, i, v, want)
			}
		}
	}
}

func TestDeck_ReverbBlend(t *testing.T) {
	t.Parallel()

	dry := newTestDeck(t, 2, 1000, 200)
	wet := newTestDeck(t, 2, 1000, 200)
	clip := newClip(t, 1000, 2, 1000, constant(0.5))
	for _, d := range []*Deck{dry, wet} {
		d.LoadClip(clip)
		d.Start()
	}
	wet.SetWetDry(0.5)

	a, b := audio.NewBlock(2, 200), audio.NewBlock(2, 200)
	dry.FillBlock(a)
	wet.FillBlock(b)

	differs := false
	for i := range a.Channel(0) {
		if a.Channel(0)[i] != b.Channel(0)[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("wet/dry 0.5 produced the dry signal")
	}
	// Before the first reflection the blend is half the dry signal.
	if got := b.Channel(0)[10]; got != 0.25 {
		t.Errorf("frame 10 = %v, want 0.25", got)
	}
}

func TestDeck_SetWetDryRejects(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)
	d.SetWetDry(0.4)

	for _, v := range []float64{-0.1, 1.1, math.NaN()} {
		if err := d.SetWetDry(v); !errors.Is(err, audio.ErrOutOfRange) {
			t.Errorf("SetWetDry(%v) error = %v, want ErrOutOfRange", v, err)
		}
	}
	if d.WetDry() != 0.4 {
		t.Errorf("WetDry() = %v, want 0.4", d.WetDry())
	}
}

func TestDeck_EQIdempotent(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)

	d.SetBass(0.25)
	d.SetBass(0.25)
	d.SetMid(-0.5)
	d.SetMid(-0.5)
	d.SetTreble(0.1)
	d.SetTreble(0.1)

	if got := d.EQ().Recomputes(); got != 3 {
		t.Errorf("Recomputes() = %d, want 3", got)
	}
}

func TestDeck_SetSpeedLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewDefaultLeveledLoggerForScope("test", logging.LogLevelInfo, &buf)
	d := New("a", nil, WithLogger(log))

	if err := d.SetSpeed(1.25); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "speed 1.25") {
		t.Errorf("log = %q, want the applied speed", buf.String())
	}

	buf.Reset()
	d.SetSpeed(3)
	if strings.Contains(buf.String(), "INFO") {
		t.Errorf("rejected speed logged at info: %q", buf.String())
	}
}

// Not parallel: AllocsPerRun counts allocations process-wide.
func TestDeck_HighRateClipAtMaxSpeed(t *testing.T) {
	d := newTestDeck(t, 2, 44100, 512)
	d.SetSpeed(audio.MaxRatio)
	d.LoadClip(newClip(t, 192000, 2, 192000, func(int, int) float32 { return 0.5 }))
	d.Start()

	b := audio.NewBlock(2, 512)
	allocs := testing.AllocsPerRun(8, func() { d.FillBlock(b) })
	if allocs != 0 {
		t.Errorf("FillBlock allocated %v times per call", allocs)
	}
	if v := b.Channel(0)[511]; v != 0.5 {
		t.Errorf("sample = %v, want 0.5", v)
	}
	// 9 blocks at 2x of a 192 kHz clip: ~8.7 source frames per output frame.
	if pos := d.Position(); pos < 0.19 || pos > 0.23 {
		t.Errorf("Position() = %v, want ≈0.2", pos)
	}
}

func TestDeck_PositionRelativeRoundTrip(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)
	d.LoadClip(newClip(t, 44100, 2, 44100*7/3, ramp))

	for _, p := range []float64{0, 0.2, 0.5, 0.77, 1} {
		if err := d.SetPositionRelative(p); err != nil {
			t.Fatalf("SetPositionRelative(%v) error = %v", p, err)
		}
		if got := d.PositionRelative(); math.Abs(got-p) > 1e-4 {
			t.Errorf("PositionRelative() = %v, want %v", got, p)
		}
	}

	if err := d.SetPositionRelative(1.5); !errors.Is(err, audio.ErrOutOfRange) {
		t.Errorf("SetPositionRelative(1.5) error = %v, want ErrOutOfRange", err)
	}
	if d.PositionRelative() != 1 {
		t.Errorf("rejected seek moved the position to %v", d.PositionRelative())
	}
}

func TestDeck_RejectionsAreLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewDefaultLeveledLoggerForScope("deck-a", logging.LogLevelWarn, &buf)
	d := New("deck-a", nil, WithLogger(log))

	d.SetSpeed(3)
	d.SetPositionRelative(-1)
	d.SetTreble(2)
	d.SetWetDry(5) // silent

	out := buf.String()
	for _, want := range []string{"speed 3", "relative position -1", "treble 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q does not mention %q", out, want)
		}
	}
	if strings.Contains(out, "wet") {
		t.Errorf("wet/dry rejection was logged: %q", out)
	}
}

// stubDecoder serves a fixed number of constant stereo frames.
type stubDecoder struct{ frames int }

func (s stubDecoder) Decode(r io.Reader) (audio.Source, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return audiotest.NewConstantSource(8000, 2, s.frames, 0.25), nil
}

func TestDeck_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.stub")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	registry := audio.NewRegistry()
	registry.Register("stub", stubDecoder{frames: 16000})

	d := New("a", registry, WithLogger(quietLogger()))
	d.SetSpeed(1.2)
	d.SetBass(0.5)

	if err := d.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Length() != 2 {
		t.Errorf("Length() = %v, want 2", d.Length())
	}
	if d.IsPlaying() || d.Position() != 0 {
		t.Error("Load() did not leave the deck stopped at 0")
	}
	if d.Speed() != 1.2 {
		t.Errorf("Load() reset speed to %v", d.Speed())
	}
	if v, ok := d.EQ().Value(Bass); !ok || v != 0.5 {
		t.Errorf("Load() reset bass to %v", v)
	}

	d.Start()
	d.SetPosition(1)
	loaded := d.Clip()

	for _, bad := range []string{filepath.Join(dir, "missing.stub"), filepath.Join(dir, "song.flac")} {
		if err := d.Load(bad); err == nil {
			t.Errorf("Load(%q) error = nil", bad)
		}
	}
	if d.Clip() != loaded || !d.IsPlaying() || d.Position() != 1 {
		t.Error("failed Load() changed the deck state")
	}
}

func TestDeck_LoadWithoutRegistry(t *testing.T) {
	t.Parallel()

	d := New("a", nil, WithLogger(quietLogger()))
	if err := d.Load("/music/a.wav"); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("Load() error = %v, want ErrNoRegistry", err)
	}
}

func TestDeck_ConcurrentControl(t *testing.T) {
	t.Parallel()

	d := newTestDeck(t, 2, 44100, 256)
	clips := []*audio.Clip{
		newClip(t, 44100, 2, 44100, audiotest.Sine(44100, 220, 0.5)),
		newClip(t, 22050, 1, 30000, audiotest.Sine(22050, 440, 0.5)),
	}
	d.LoadClip(clips[0])
	d.SetLooping(true)
	d.Start()

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}

			f := float64(i%100) / 100
			d.SetSpeed(0.5 + f*1.5)
			d.PitchBend(f - 0.5)
			d.SetBass(f*2 - 1)
			d.SetMid(1 - f*2)
			d.SetTreble(f)
			d.SetWetDry(f)
			d.SetPositionRelative(f)
			if i%25 == 0 {
				d.LoadClip(clips[(i/25)%2])
				d.Start()
			}
		}
	}()

	b := audio.NewBlock(2, 256)
	for range 300 {
		d.FillBlock(b)
		for c := range 2 {
			for _, v := range b.Channel(c) {
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					t.Fatalf("non-finite sample %v under concurrent control", v)
				}
			}
		}
	}

	close(done)
	wg.Wait()
}

func BenchmarkDeck_FillBlock(b *testing.B) {
	d := newTestDeck(b, 2, 44100, 512)
	d.LoadClip(newClip(b, 44100, 2, 44100*4, audiotest.Sine(44100, 440, 0.5)))
	d.SetLooping(true)
	d.SetSpeed(1.1)
	d.SetWetDry(0.3)
	d.SetBass(0.1)
	d.SetMid(0.1)
	d.SetTreble(0.1)
	d.Start()
	block := audio.NewBlock(2, 512)

	b.ReportAllocs()

	for b.Loop() {
		d.FillBlock(block)
	}
}
