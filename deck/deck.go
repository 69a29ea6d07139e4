// SPDX-License-Identifier: EPL-2.0

package deck

import (
	"fmt"

	"github.com/ik5/deckmix/audio"
	"github.com/pion/logging"
)

// Defaults used until Prepare is called.
const (
	DefaultSampleRate  = 44100
	DefaultBlockFrames = 512
	DefaultChannels    = 2
)

// Deck is one playback channel: a Transport feeding a Resampler, then the
// reverb send and the Equalizer. It implements audio.BlockSource; gain is
// applied by the mixer, not here.
//
// Control methods may be called from any goroutine while FillBlock runs on
// the audio goroutine. Prepare must not overlap FillBlock.
type Deck struct {
	name     string
	registry *audio.Registry
	channels int
	log      logging.LeveledLogger

	transport *Transport
	resampler *audio.Resampler
	eq        *Equalizer
	reverb    *Reverb
	wetDry    audio.Param

	reverbParams ReverbParameters
	wet          *audio.Block
}

// Option configures a Deck.
type Option func(*Deck)

// WithLogger sets the deck's logger. The default logs at the pion default
// level under the deck's name.
func WithLogger(log logging.LeveledLogger) Option {
	return func(d *Deck) { d.log = log }
}

// WithChannels sets the number of output channels (default 2).
func WithChannels(channels int) Option {
	return func(d *Deck) { d.channels = max(channels, 1) }
}

// WithReverbParameters overrides the reverb room.
func WithReverbParameters(p ReverbParameters) Option {
	return func(d *Deck) { d.reverbParams = p }
}

// New builds a stopped, empty deck. registry resolves locators passed to
// Load; it may be nil when clips are only loaded with LoadClip.
func New(name string, registry *audio.Registry, opts ...Option) *Deck {
	d := &Deck{
		name:         name,
		registry:     registry,
		channels:     DefaultChannels,
		reverbParams: DefaultReverbParameters(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logging.NewDefaultLoggerFactory().NewLogger(name)
	}

	d.transport = NewTransport(d.channels)
	d.resampler = audio.NewResampler(d.transport, DefaultSampleRate)
	d.eq = NewEqualizer(d.log)
	d.reverb = NewReverb(d.reverbParams)
	d.Prepare(DefaultSampleRate, DefaultBlockFrames)

	return d
}

func (d *Deck) Name() string    { return d.name }
func (d *Deck) Channels() int   { return d.channels }
func (d *Deck) EQ() *Equalizer  { return d.eq }
func (d *Deck) Reverb() *Reverb { return d.reverb }

// Prepare readies every stage for blocks of up to blockFrames at sampleRate.
func (d *Deck) Prepare(sampleRate, blockFrames int) {
	d.resampler.Prepare(sampleRate, blockFrames)
	d.eq.Prepare(float64(sampleRate), d.channels)
	d.reverb.Prepare(float64(sampleRate))
	d.wet = audio.NewBlock(d.channels, blockFrames)
}

// FillBlock renders the next b.Frames() frames: loop check, resample,
// reverb blend, then EQ.
func (d *Deck) FillBlock(b *audio.Block) {
	d.transport.CheckLoop()
	d.resampler.FillBlock(b)

	if ratio := float32(d.wetDry.Load()); ratio > 0 {
		d.wet.CopyFrom(b)
		if d.wet.Channels() >= 2 {
			d.reverb.ProcessStereo(d.wet.Channel(0), d.wet.Channel(1))
		} else {
			d.reverb.ProcessMono(d.wet.Channel(0))
		}

		dry := 1 - ratio
		for ch := range min(b.Channels(), d.wet.Channels()) {
			out, wet := b.Channel(ch), d.wet.Channel(ch)
			for i := range out {
				out[i] = out[i]*dry + wet[i]*ratio
			}
		}
	}

	d.eq.Process(b)
}

// Load decodes locator with the deck's registry and publishes it. On
// failure the previous clip, if any, stays loaded.
func (d *Deck) Load(locator string) error {
	if d.registry == nil {
		d.log.Errorf("cannot load %q: %v", locator, ErrNoRegistry)
		return ErrNoRegistry
	}

	src, err := d.registry.Open(locator)
	if err != nil {
		d.log.Errorf("cannot load %q: %v", locator, err)
		return fmt.Errorf("loading %q: %w", locator, err)
	}
	defer src.Close()

	clip, err := audio.ReadClip(src)
	if err != nil {
		d.log.Errorf("cannot decode %q: %v", locator, err)
		return fmt.Errorf("loading %q: %w", locator, err)
	}

	d.LoadClip(clip)
	d.log.Infof("loaded %q: %d Hz, %d channels, %.2fs",
		locator, clip.SampleRate(), clip.Channels(), clip.Seconds())
	return nil
}

// LoadClip publishes clip, stopping playback at position 0. Speed, EQ and
// reverb settings are kept.
func (d *Deck) LoadClip(clip *audio.Clip) {
	if clip != nil {
		d.resampler.Reserve(clip.SampleRate())
	}
	d.transport.SetClip(clip)
	d.resampler.Reset()
}

func (d *Deck) Clip() *audio.Clip { return d.transport.Clip() }

// Start plays the loaded clip. Without one it does nothing and returns ErrNoClip.
func (d *Deck) Start() error {
	if !d.transport.Start() {
		d.log.Warnf("start ignored: %v", ErrNoClip)
		return ErrNoClip
	}
	return nil
}

func (d *Deck) Stop() {
	d.transport.Stop()
	d.resampler.Reset()
}

func (d *Deck) IsPlaying() bool { return d.transport.IsPlaying() }

// SetSpeed sets the playback ratio. Ratios outside [audio.MinRatio,
// audio.MaxRatio] are rejected and logged.
func (d *Deck) SetSpeed(ratio float64) error {
	if !audio.InRange(ratio, audio.MinRatio, audio.MaxRatio) {
		d.log.Warnf("speed %v outside [%v, %v], ignored", ratio, audio.MinRatio, audio.MaxRatio)
		return fmt.Errorf("speed %v: %w", ratio, audio.ErrOutOfRange)
	}
	d.resampler.SetRatio(ratio)
	d.log.Infof("speed %v", ratio)
	return nil
}

// PitchBend maps a jog amount to 1 + jog/2 and applies it, clamped, to the
// same slot as SetSpeed. It returns the applied ratio.
func (d *Deck) PitchBend(jog float64) float64 {
	return d.resampler.SetRatio(1 + jog*0.5)
}

func (d *Deck) Speed() float64 { return d.resampler.Ratio() }

// SetPosition seeks to seconds, clamped into the clip.
func (d *Deck) SetPosition(seconds float64) error {
	if err := d.transport.SetPosition(seconds); err != nil {
		d.log.Warnf("seek ignored: %v", err)
		return err
	}
	d.resampler.Reset()
	return nil
}

// SetPositionRelative seeks to p * Length(); p outside [0, 1] is rejected
// and logged.
func (d *Deck) SetPositionRelative(p float64) error {
	if err := d.transport.SetPositionRelative(p); err != nil {
		d.log.Warnf("seek ignored: %v", err)
		return err
	}
	d.resampler.Reset()
	return nil
}

func (d *Deck) Position() float64         { return d.transport.Position() }
func (d *Deck) PositionRelative() float64 { return d.transport.PositionRelative() }
func (d *Deck) Length() float64           { return d.transport.Length() }

func (d *Deck) SetLooping(on bool) {
	if d.transport.IsLooping() != on {
		d.log.Infof("looping %v", on)
	}
	d.transport.SetLooping(on)
}

func (d *Deck) IsLooping() bool { return d.transport.IsLooping() }

// SetWetDry sets the reverb blend in [0, 1]. Out of range values are
// rejected without logging; the current value is a no-op.
func (d *Deck) SetWetDry(ratio float64) error {
	if !audio.InRange(ratio, 0, 1) {
		return fmt.Errorf("wet/dry %v: %w", ratio, audio.ErrOutOfRange)
	}
	if _, changed := d.wetDry.Swap(ratio); changed {
		d.log.Debugf("wet/dry %v", ratio)
	}
	return nil
}

func (d *Deck) WetDry() float64 { return d.wetDry.Load() }

func (d *Deck) SetBass(v float64) error   { return d.eq.SetBass(v) }
func (d *Deck) SetMid(v float64) error    { return d.eq.SetMid(v) }
func (d *Deck) SetTreble(v float64) error { return d.eq.SetTreble(v) }
