// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize     = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat      = errors.New("no decoder registered for format")
	ErrUnsupportedLocator = errors.New("unsupported locator")
	ErrEmptySource        = errors.New("source produced no samples")
	ErrNoChannels         = errors.New("source reports no channels")

	// ErrOutOfRange is returned by setters that reject a value outside
	// their documented domain. The previous value is kept.
	ErrOutOfRange = errors.New("value out of range")
)
