// SPDX-License-Identifier: EPL-2.0

// Command deckmix is a two-deck console DJ mixer.
//
// Without flags it opens the speaker and reads commands from the terminal
// (type "help"). With -render it mixes the decks offline into a WAV file:
//
//	deckmix -a intro.wav -b outro.mp3 -xfade 0.5 -seconds 30 -render mix.wav
//
// Settings come from DECKMIX_* environment variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/ik5/deckmix"
	"github.com/ik5/deckmix/deck"
	"github.com/ik5/deckmix/formats/wav"
	"github.com/ik5/deckmix/internal/config"
	"github.com/ik5/deckmix/internal/console"
	"github.com/ik5/deckmix/library"
	"github.com/ik5/deckmix/output"
	"github.com/pion/logging"
)

func main() {
	renderPtr := flag.String("render", "", "render the mix to this WAV file instead of playing it")
	secondsPtr := flag.Float64("seconds", 30, "length of the rendered mix")
	deckAPtr := flag.String("a", "", "file to load on deck A")
	deckBPtr := flag.String("b", "", "file to load on deck B")
	xfadePtr := flag.Float64("xfade", 0.5, "crossfader position, 1 is deck A only")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "deckmix:", err)
		os.Exit(2)
	}

	factory := cfg.LoggerFactory()
	log := factory.NewLogger("main")

	reverb := deck.DefaultReverbParameters()
	reverb.RoomSize = cfg.ReverbRoom
	reverb.Damping = cfg.ReverbDamping

	engine := deckmix.NewEngine(
		deckmix.WithLoggerFactory(factory),
		deckmix.WithFormat(cfg.SampleRate, cfg.BlockFrames, cfg.Channels),
		deckmix.WithReverbParameters(reverb),
	)

	for i, path := range []string{*deckAPtr, *deckBPtr} {
		if path == "" {
			continue
		}
		d, _ := engine.Deck(i)
		if err := d.Load(path); err != nil {
			os.Exit(1)
		}
		_ = d.Start()
	}
	if err := engine.Crossfade(*xfadePtr); err != nil {
		os.Exit(2)
	}

	if *renderPtr != "" {
		if err := render(engine, *renderPtr, *secondsPtr); err != nil {
			log.Errorf("render: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := interactive(engine, cfg, factory); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func render(engine *deckmix.Engine, path string, seconds float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	w := wav.NewWriter(f, engine.SampleRate(), engine.Channels())
	if err := engine.RenderSeconds(w, seconds); err != nil {
		return err
	}
	return w.Close()
}

func interactive(engine *deckmix.Engine, cfg config.Config, factory logging.LoggerFactory) error {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Millisecond*100)); err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	defer speaker.Close()

	speaker.Play(output.NewStreamer(engine, engine.Channels(), engine.BlockFrames()))

	lib := library.New(factory.NewLogger("library"))
	con := console.New(engine, lib, cfg.LibraryFile, os.Stdout, factory.NewLogger("console"))
	if _, err := con.LoadLibrary(); err != nil {
		fmt.Fprintln(os.Stderr, "library:", err)
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(console.Commands()))
	for _, name := range console.Commands() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "deckmix> ",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}

		quit, err := con.Exec(line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
		if quit {
			return nil
		}
	}
}
