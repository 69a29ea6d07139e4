// SPDX-License-Identifier: EPL-2.0

package library

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pion/logging"
)

// Library is an ordered track list with unique titles. It is safe for
// concurrent use.
type Library struct {
	log    logging.LeveledLogger
	tracks []Track

	mtx *sync.Mutex
}

// New returns an empty Library. A nil logger selects the default one.
func New(log logging.LeveledLogger) *Library {
	if log == nil {
		log = logging.NewDefaultLoggerFactory().NewLogger("library")
	}

	return &Library{
		log: log,
		mtx: &sync.Mutex{},
	}
}

// Add appends t unless a track with the same title is already present.
func (l *Library) Add(t Track) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.indexOf(t.Title) >= 0 {
		l.log.Warnf("%q: %v", t.Title, ErrDuplicateTrack)
		return fmt.Errorf("%q: %w", t.Title, ErrDuplicateTrack)
	}

	l.tracks = append(l.tracks, t)
	l.log.Debugf("track added: %s", t.Title)
	return nil
}

// Contains reports whether a track titled title is present.
func (l *Library) Contains(title string) bool {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.indexOf(title) >= 0
}

func (l *Library) indexOf(title string) int {
	for i, t := range l.tracks {
		if t.Title == title {
			return i
		}
	}
	return -1
}

// Remove deletes the track at i. Invalid indices are ignored.
func (l *Library) Remove(i int) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if i < 0 || i >= len(l.tracks) {
		return
	}
	l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
}

// Find returns the index of the first track whose title contains text,
// or -1. Matching is case sensitive. An empty text matches nothing.
func (l *Library) Find(text string) int {
	if text == "" {
		return -1
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	for i, t := range l.tracks {
		if strings.Contains(t.Title, text) {
			return i
		}
	}
	return -1
}

// Track returns the track at i.
func (l *Library) Track(i int) (Track, bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if i < 0 || i >= len(l.tracks) {
		return Track{}, false
	}
	return l.tracks[i], true
}

// Tracks returns a copy of the track list.
func (l *Library) Tracks() []Track {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	out := make([]Track, len(l.tracks))
	copy(out, l.tracks)
	return out
}

func (l *Library) Len() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return len(l.tracks)
}

// Save writes one line per track to w.
func (l *Library) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range l.Tracks() {
		if _, err := fmt.Fprintf(bw, "%s,%s\n", t.Locator, t.Length); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Load appends the tracks read from r. Blank lines are skipped; tracks
// whose title is already present are skipped with a warning. A line
// without a comma stops the load with ErrMalformedLine, keeping the
// tracks read before it.
func (l *Library) Load(r io.Reader) (int, error) {
	added := 0
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		cut := strings.LastIndexByte(text, ',')
		if cut < 0 {
			return added, fmt.Errorf("line %d: %w", line, ErrMalformedLine)
		}

		locator := text[:cut]
		t := Track{Locator: locator, Title: titleOf(locator), Length: text[cut+1:]}
		if err := l.Add(t); err != nil {
			continue
		}
		added++
	}

	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("%w", err)
	}
	return added, nil
}
