// SPDX-License-Identifier: EPL-2.0

package deckmix

import (
	"fmt"

	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/deck"
	"github.com/ik5/deckmix/mixer"
	"github.com/ik5/deckmix/output"
	"github.com/pion/logging"
)

// Deck indices understood by Engine methods.
const (
	DeckA = 0
	DeckB = 1
)

// TapFrames is the number of output frames kept for telemetry.
const TapFrames = 4096

// Engine wires two decks through a mixer and a crossfader. It implements
// audio.BlockSource.
type Engine struct {
	log      logging.LeveledLogger
	factory  logging.LoggerFactory
	registry *audio.Registry

	sampleRate  int
	blockFrames int
	channels    int
	reverb      deck.ReverbParameters

	decks []*deck.Deck
	mixer *mixer.Mixer
	xfade *mixer.Crossfader
	tap   *output.Tap
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoggerFactory sets the factory every component takes its logger from.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(e *Engine) { e.factory = f }
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithFormat sets the output sample rate, block size and channel count.
func WithFormat(sampleRate, blockFrames, channels int) Option {
	return func(e *Engine) {
		e.sampleRate = sampleRate
		e.blockFrames = blockFrames
		e.channels = channels
	}
}

// WithReverbParameters sets the reverb room of both decks.
func WithReverbParameters(p deck.ReverbParameters) Option {
	return func(e *Engine) { e.reverb = p }
}

// NewEngine builds two stopped decks ("deck-a" and "deck-b") feeding a
// mixer at unity gain. The crossfader writes nothing until it is moved.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sampleRate:  deck.DefaultSampleRate,
		blockFrames: deck.DefaultBlockFrames,
		channels:    deck.DefaultChannels,
		reverb:      deck.DefaultReverbParameters(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.factory == nil {
		e.factory = logging.NewDefaultLoggerFactory()
	}
	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	e.log = e.factory.NewLogger("engine")

	e.mixer = mixer.New(e.factory.NewLogger("mixer"))
	for _, name := range []string{"deck-a", "deck-b"} {
		d := deck.New(name, e.registry,
			deck.WithLogger(e.factory.NewLogger(name)),
			deck.WithChannels(e.channels),
			deck.WithReverbParameters(e.reverb),
		)
		e.decks = append(e.decks, d)
		e.mixer.AddInput(d)
	}
	e.xfade = mixer.NewCrossfader(e.mixer, DeckA, DeckB, e.factory.NewLogger("crossfade"))
	e.tap = output.NewTap(e.mixer, TapFrames)

	e.Prepare(e.sampleRate, e.blockFrames)
	return e
}

// Prepare readies the whole graph for blocks of up to blockFrames at
// sampleRate. It must not run concurrently with FillBlock.
func (e *Engine) Prepare(sampleRate, blockFrames int) {
	e.sampleRate = sampleRate
	e.blockFrames = blockFrames

	for _, d := range e.decks {
		d.Prepare(sampleRate, blockFrames)
	}
	e.mixer.Prepare(e.channels, blockFrames)
	e.log.Debugf("prepared %d Hz, %d frames, %d channels", sampleRate, blockFrames, e.channels)
}

// FillBlock renders the next b.Frames() frames of the mix.
func (e *Engine) FillBlock(b *audio.Block) { e.tap.FillBlock(b) }

func (e *Engine) SampleRate() int           { return e.sampleRate }
func (e *Engine) BlockFrames() int          { return e.blockFrames }
func (e *Engine) Channels() int             { return e.channels }
func (e *Engine) Registry() *audio.Registry { return e.registry }
func (e *Engine) Mixer() *mixer.Mixer       { return e.mixer }
func (e *Engine) Tap() *output.Tap          { return e.tap }

// Decks is the number of decks.
func (e *Engine) Decks() int { return len(e.decks) }

// Deck returns deck i.
func (e *Engine) Deck(i int) (*deck.Deck, error) {
	if i < 0 || i >= len(e.decks) {
		return nil, fmt.Errorf("deck %d: %w", i, ErrNoDeck)
	}
	return e.decks[i], nil
}

// SetGain sets the volume of deck i. It shares the gain slot with the
// crossfader: the last write wins.
func (e *Engine) SetGain(i int, gain float64) error {
	return e.mixer.SetGain(i, gain)
}

func (e *Engine) Gain(i int) float64 { return e.mixer.Gain(i) }

// Crossfade moves the crossfader; 1 is deck A only, 0 is deck B only.
func (e *Engine) Crossfade(x float64) error { return e.xfade.Set(x) }

func (e *Engine) CrossfadeValue() float64 { return e.xfade.Value() }

// DeckStatus is a snapshot of one deck for display.
type DeckStatus struct {
	Name             string
	Loaded           bool
	Playing          bool
	Looping          bool
	Position         float64 // seconds
	PositionRelative float64
	Length           float64 // seconds
	Speed            float64
	Gain             float64
	WetDry           float64
}

// Status snapshots deck i.
func (e *Engine) Status(i int) (DeckStatus, error) {
	d, err := e.Deck(i)
	if err != nil {
		return DeckStatus{}, err
	}

	return DeckStatus{
		Name:             d.Name(),
		Loaded:           d.Clip() != nil,
		Playing:          d.IsPlaying(),
		Looping:          d.IsLooping(),
		Position:         d.Position(),
		PositionRelative: d.PositionRelative(),
		Length:           d.Length(),
		Speed:            d.Speed(),
		Gain:             e.mixer.Gain(i),
		WetDry:           d.WetDry(),
	}, nil
}
