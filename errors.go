// SPDX-License-Identifier: EPL-2.0

package deckmix

import "errors"

var ErrNoDeck = errors.New("no such deck")
