// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var ErrNoInput = errors.New("no such mixer input")
