// SPDX-License-Identifier: EPL-2.0

package deck

import "errors"

var (
	ErrNoRegistry = errors.New("deck has no format registry")
	ErrNoClip     = errors.New("no clip loaded")
)
