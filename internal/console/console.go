// SPDX-License-Identifier: EPL-2.0

// Package console parses and runs the text commands of the deckmix control
// surface.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ik5/deckmix"
	"github.com/ik5/deckmix/audio"
	"github.com/ik5/deckmix/deck"
	"github.com/ik5/deckmix/library"
	"github.com/pion/logging"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrBadDeck        = errors.New("deck must be a, b, 1 or 2")
	ErrNoTrack        = errors.New("no such library track")
)

type command struct {
	usage string
	help  string
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"load":   {"load <deck> <path|#n>", "load a file or library track", (*Console).load},
		"play":   {"play <deck>", "start playback", (*Console).play},
		"stop":   {"stop <deck>", "stop playback", (*Console).stop},
		"gain":   {"gain <deck> <0..1>", "deck volume", (*Console).gain},
		"speed":  {"speed <deck> <0.5..2>", "playback ratio", (*Console).speed},
		"jog":    {"jog <deck> <-1..1>", "pitch bend, 0 is normal speed", (*Console).jog},
		"seek":   {"seek <deck> <seconds>", "jump to a position in seconds", (*Console).seek},
		"pos":    {"pos <deck> <0..1>", "jump to a relative position", (*Console).pos},
		"loop":   {"loop <deck> on|off", "loop the clip", (*Console).loop},
		"wet":    {"wet <deck> <0..1>", "reverb wet/dry blend", (*Console).wet},
		"bass":   {"bass <deck> <-1..1>", "low-pass cutoff", band(deck.Bass)},
		"mid":    {"mid <deck> <-1..1>", "mid band gain", band(deck.Mid)},
		"treble": {"treble <deck> <-1..1>", "high shelf gain", band(deck.Treble)},
		"xfade":  {"xfade <0..1>", "crossfader, 1 is deck A", (*Console).xfade},
		"status": {"status", "show both decks", (*Console).status},
		"meter":  {"meter", "show the output spectrum", (*Console).meter},
		"lib":    {"lib add|list|find|rm|save|load [arg]", "manage the music library", (*Console).manageLibrary},
		"help":   {"help", "list commands", (*Console).help},
	}
}

// Commands lists the command names in sorted order, plus quit.
func Commands() []string {
	names := make([]string, 0, len(commands)+1)
	for name := range commands {
		names = append(names, name)
	}
	names = append(names, "quit")
	sort.Strings(names)
	return names
}

// Console runs commands against an engine and a library, writing replies
// to out.
type Console struct {
	engine  *deckmix.Engine
	lib     *library.Library
	libPath string
	out     io.Writer
	log     logging.LeveledLogger
}

// New returns a console. libPath is where "lib save" and "lib load" go.
func New(engine *deckmix.Engine, lib *library.Library, libPath string, out io.Writer, log logging.LeveledLogger) *Console {
	if log == nil {
		log = logging.NewDefaultLoggerFactory().NewLogger("console")
	}

	return &Console{
		engine:  engine,
		lib:     lib,
		libPath: libPath,
		out:     out,
		log:     log,
	}
}

// Exec runs one line. It reports quit for "quit" and "exit". Errors are
// meant for the user; none of them leave the engine in a bad state.
func (c *Console) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	if name == "quit" || name == "exit" {
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}

	if err := cmd.run(c, fields[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return false, fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
		}
		return false, err
	}
	return false, nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// parseDeck accepts a/b or 1/2.
func parseDeck(s string) (int, error) {
	switch strings.ToLower(s) {
	case "a", "1":
		return deckmix.DeckA, nil
	case "b", "2":
		return deckmix.DeckB, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrBadDeck)
}

func (c *Console) pick(args []string, want int) (*deck.Deck, int, error) {
	if len(args) != want {
		return nil, 0, ErrUsage
	}
	i, err := parseDeck(args[0])
	if err != nil {
		return nil, 0, err
	}
	d, err := c.engine.Deck(i)
	return d, i, err
}

// deckValue parses "<deck> <number>".
func (c *Console) deckValue(args []string) (*deck.Deck, int, float64, error) {
	d, i, err := c.pick(args, 2)
	if err != nil {
		return nil, 0, 0, err
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%q: %w", args[1], ErrUsage)
	}
	return d, i, v, nil
}

func (c *Console) load(args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	d, _, err := c.pick(args[:1], 1)
	if err != nil {
		return err
	}

	locator := strings.Join(args[1:], " ")
	if n, ok := strings.CutPrefix(locator, "#"); ok {
		i, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("%q: %w", locator, ErrUsage)
		}
		t, ok := c.lib.Track(i)
		if !ok {
			return fmt.Errorf("#%d: %w", i, ErrNoTrack)
		}
		locator = t.Locator
	}

	if err := d.Load(locator); err != nil {
		return err
	}
	c.printf("%s: %s (%s)\n", d.Name(), locator, library.SecondsToMinutes(d.Length()))
	return nil
}

func (c *Console) play(args []string) error {
	d, _, err := c.pick(args, 1)
	if err != nil {
		return err
	}
	return d.Start()
}

func (c *Console) stop(args []string) error {
	d, _, err := c.pick(args, 1)
	if err != nil {
		return err
	}
	d.Stop()
	return nil
}

func (c *Console) gain(args []string) error {
	_, i, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	return c.engine.SetGain(i, v)
}

func (c *Console) speed(args []string) error {
	d, _, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	return d.SetSpeed(v)
}

func (c *Console) jog(args []string) error {
	d, _, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	c.printf("%s: speed %.2f\n", d.Name(), d.PitchBend(v))
	return nil
}

func (c *Console) seek(args []string) error {
	d, _, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	return d.SetPosition(v)
}

func (c *Console) pos(args []string) error {
	d, _, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	return d.SetPositionRelative(v)
}

func (c *Console) loop(args []string) error {
	d, _, err := c.pick(args, 2)
	if err != nil {
		return err
	}
	switch strings.ToLower(args[1]) {
	case "on", "1", "true":
		d.SetLooping(true)
	case "off", "0", "false":
		d.SetLooping(false)
	default:
		return ErrUsage
	}
	return nil
}

func (c *Console) wet(args []string) error {
	d, _, v, err := c.deckValue(args)
	if err != nil {
		return err
	}
	return d.SetWetDry(v)
}

func band(b deck.Band) func(*Console, []string) error {
	return func(c *Console, args []string) error {
		d, _, v, err := c.deckValue(args)
		if err != nil {
			return err
		}
		return d.EQ().Set(b, v)
	}
}

func (c *Console) xfade(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], ErrUsage)
	}
	return c.engine.Crossfade(v)
}

func (c *Console) status([]string) error {
	for i := range c.engine.Decks() {
		st, err := c.engine.Status(i)
		if err != nil {
			return err
		}

		state := "stopped"
		switch {
		case !st.Loaded:
			state = "empty"
		case st.Playing:
			state = "playing"
		}
		loop := ""
		if st.Looping {
			loop = " loop"
		}

		c.printf("%s %-7s %s/%s (%3.0f%%) speed %.2f gain %.2f wet %.2f%s\n",
			st.Name, state,
			library.SecondsToMinutes(st.Position), library.SecondsToMinutes(st.Length),
			st.PositionRelative*100, st.Speed, st.Gain, st.WetDry, loop)
	}
	c.printf("crossfade %.2f\n", c.engine.CrossfadeValue())
	return nil
}

var meterBlocks = []rune(" ▁▂▃▄▅▆▇█")

func (c *Console) meter([]string) error {
	levels := c.engine.Tap().Spectrum(deckmix.TapFrames, 16)

	bar := make([]rune, len(levels))
	top := len(meterBlocks) - 1
	for i, v := range levels {
		bar[i] = meterBlocks[int(audio.Clamp(v, 0, 1)*float64(top))]
	}
	c.printf("[%s]\n", string(bar))
	return nil
}

func (c *Console) help([]string) error {
	for _, name := range Commands() {
		if cmd, ok := commands[name]; ok {
			c.printf("  %-40s %s\n", cmd.usage, cmd.help)
		}
	}
	c.printf("  %-40s %s\n", "quit", "leave")
	return nil
}

func (c *Console) manageLibrary(args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	rest := strings.Join(args[1:], " ")

	switch strings.ToLower(args[0]) {
	case "add":
		if rest == "" {
			return ErrUsage
		}
		seconds, err := c.probe(rest)
		if err != nil {
			return err
		}
		return c.lib.Add(library.NewTrack(rest, seconds))

	case "list":
		for i, t := range c.lib.Tracks() {
			c.printf("%3d  %-40s %6s\n", i, t.Title, t.Length)
		}
		return nil

	case "find":
		i := c.lib.Find(rest)
		if i < 0 {
			return fmt.Errorf("%q: %w", rest, ErrNoTrack)
		}
		t, _ := c.lib.Track(i)
		c.printf("%3d  %s\n", i, t.Title)
		return nil

	case "rm":
		i, err := strconv.Atoi(rest)
		if err != nil {
			return ErrUsage
		}
		c.lib.Remove(i)
		return nil

	case "save":
		return c.saveLibrary()

	case "load":
		n, err := c.LoadLibrary()
		if err != nil {
			return err
		}
		c.printf("%d tracks loaded\n", n)
		return nil
	}
	return ErrUsage
}

// probe decodes locator to measure its length.
func (c *Console) probe(locator string) (float64, error) {
	src, err := c.engine.Registry().Open(locator)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	clip, err := audio.ReadClip(src)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	return clip.Seconds(), nil
}

func (c *Console) saveLibrary() error {
	f, err := os.Create(c.libPath)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := c.lib.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	c.log.Infof("library saved to %s", c.libPath)
	return nil
}

// LoadLibrary reads the library file. A missing file is an empty library.
func (c *Console) LoadLibrary() (int, error) {
	f, err := os.Open(c.libPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return c.lib.Load(f)
}
