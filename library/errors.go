// SPDX-License-Identifier: EPL-2.0

package library

import "errors"

var (
	ErrDuplicateTrack = errors.New("track already in library")
	ErrMalformedLine  = errors.New("malformed library line")
)
