// SPDX-License-Identifier: EPL-2.0

package library

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/pion/logging"
)

func quietLogger() logging.LeveledLogger {
	return logging.NewDefaultLeveledLoggerForScope("test", logging.LogLevelDisabled, io.Discard)
}

func TestSecondsToMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59.4, "0:59"},
		{59.5, "1:00"},
		{65, "1:05"},
		{600, "10:00"},
		{3725.2, "62:05"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}

	for _, tt := range tests {
		if got := SecondsToMinutes(tt.seconds); got != tt.want {
			t.Errorf("SecondsToMinutes(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestNewTrack(t *testing.T) {
	t.Parallel()

	tr := NewTrack("/music/sets/Intro Mix.final.wav", 125)
	if tr.Title != "Intro Mix.final" {
		t.Errorf("Title = %q, want %q", tr.Title, "Intro Mix.final")
	}
	if tr.Length != "2:05" {
		t.Errorf("Length = %q, want %q", tr.Length, "2:05")
	}
	if tr.Locator != "/music/sets/Intro Mix.final.wav" {
		t.Errorf("Locator = %q", tr.Locator)
	}
}

func TestLibrary_AddRejectsDuplicates(t *testing.T) {
	t.Parallel()

	lib := New(quietLogger())
	if err := lib.Add(NewTrack("/a/song.wav", 10)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err := lib.Add(NewTrack("/b/song.mp3", 20))
	if !errors.Is(err, ErrDuplicateTrack) {
		t.Fatalf("Add(duplicate title) error = %v, want ErrDuplicateTrack", err)
	}
	if lib.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lib.Len())
	}
	if !lib.Contains("song") {
		t.Error("Contains(\"song\") = false")
	}
}

func TestLibrary_RemoveAndFind(t *testing.T) {
	t.Parallel()

	lib := New(quietLogger())
	for _, p := range []string{"/m/Deep House.wav", "/m/Techno Live.mp3", "/m/House Party.ogg"} {
		if err := lib.Add(NewTrack(p, 60)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		text string
		want int
	}{
		{"House", 0},
		{"Live", 1},
		{"Party", 2},
		{"house", -1},
		{"Jazz", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := lib.Find(tt.text); got != tt.want {
			t.Errorf("Find(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}

	lib.Remove(-1)
	lib.Remove(3)
	if lib.Len() != 3 {
		t.Fatalf("invalid Remove changed Len() to %d", lib.Len())
	}

	lib.Remove(0)
	if got := lib.Find("House"); got != 1 {
		t.Errorf("Find(\"House\") after Remove(0) = %d, want 1", got)
	}
	if tr, ok := lib.Track(0); !ok || tr.Title != "Techno Live" {
		t.Errorf("Track(0) = %+v, %v", tr, ok)
	}
	if _, ok := lib.Track(5); ok {
		t.Error("Track(5) ok = true")
	}
}

func TestLibrary_SaveLoad(t *testing.T) {
	t.Parallel()

	lib := New(quietLogger())
	tracks := []Track{
		NewTrack("/music/a.wav", 65),
		NewTrack("/music/comma, in path.mp3", 600),
	}
	for _, tr := range tracks {
		if err := lib.Add(tr); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := lib.Save(&buf); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := "/music/a.wav,1:05\n/music/comma, in path.mp3,10:00\n"
	if buf.String() != want {
		t.Fatalf("Save() wrote %q, want %q", buf.String(), want)
	}

	loaded := New(quietLogger())
	n, err := loaded.Load(&buf)
	if err != nil || n != 2 {
		t.Fatalf("Load() = %d, %v, want 2, nil", n, err)
	}

	got := loaded.Tracks()
	for i := range tracks {
		if got[i] != tracks[i] {
			t.Errorf("track %d = %+v, want %+v", i, got[i], tracks[i])
		}
	}
}

func TestLibrary_LoadEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{"crlf and blank lines", "/m/a.wav,0:10\r\n\r\n/m/b.wav,0:20\r\n", 2, nil},
		{"duplicate titles skipped", "/m/a.wav,0:10\n/n/a.mp3,0:11\n", 1, nil},
		{"missing comma", "/m/a.wav,0:10\nbroken\n/m/c.wav,0:30\n", 1, ErrMalformedLine},
		{"empty length kept", "/m/a.wav,\n", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lib := New(quietLogger())
			n, err := lib.Load(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if n != tt.want || lib.Len() != tt.want {
				t.Errorf("Load() added %d (Len %d), want %d", n, lib.Len(), tt.want)
			}
		})
	}
}

func ExampleLibrary_Find() {
	lib := New(logging.NewDefaultLeveledLoggerForScope("library", logging.LogLevelDisabled, io.Discard))
	_ = lib.Add(NewTrack("/music/Sunrise.wav", 241.6))
	_ = lib.Add(NewTrack("/music/Sunset Drive.mp3", 189))

	i := lib.Find("Sunset")
	tr, _ := lib.Track(i)
	fmt.Println(i, tr.Title, tr.Length)
	// Output: 1 Sunset Drive 3:09
}
