// SPDX-License-Identifier: EPL-2.0

// Package library keeps the list of tracks a user can load onto a deck.
//
// A library is persisted as one line per track:
//
//	<file-path>,<length>
//
// where length is formatted by SecondsToMinutes. Only the last comma on a
// line separates the fields, so paths may contain commas.
package library

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Track is one library entry. Title is the file name without extension
// and identifies the track inside a Library.
type Track struct {
	Locator string
	Title   string
	Length  string
}

// NewTrack builds a Track for locator with a length of seconds.
func NewTrack(locator string, seconds float64) Track {
	return Track{
		Locator: locator,
		Title:   titleOf(locator),
		Length:  SecondsToMinutes(seconds),
	}
}

func titleOf(locator string) string {
	base := filepath.Base(locator)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SecondsToMinutes rounds seconds to the nearest second and formats it as
// m:ss. Negative and NaN inputs format as 0:00.
func SecondsToMinutes(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	s := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
