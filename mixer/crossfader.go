// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"

	"github.com/ik5/deckmix/audio"
	"github.com/pion/logging"
)

// EqualPower maps x in [0, 1] to the gains of the two sides so that
// left² + right² == 1.
func EqualPower(x float64) (left, right float64) {
	angle := x * math.Pi / 2
	return math.Sin(angle), math.Cos(angle)
}

// Crossfader writes equal-power gains into two mixer inputs.
type Crossfader struct {
	log logging.LeveledLogger

	mixer       *Mixer
	left, right int
	value       audio.Param
}

// NewCrossfader controls inputs left and right of m. Nothing is written
// until the first Set; Value reports 0.5 until then.
func NewCrossfader(m *Mixer, left, right int, log logging.LeveledLogger) *Crossfader {
	if log == nil {
		log = logging.NewDefaultLoggerFactory().NewLogger("crossfade")
	}

	c := &Crossfader{
		log:   log,
		mixer: m,
		left:  left,
		right: right,
	}
	c.value.Store(0.5)
	return c
}

// Set moves the fader. x outside [0, 1] is rejected and logged.
func (c *Crossfader) Set(x float64) error {
	if !audio.InRange(x, 0, 1) {
		c.log.Warnf("crossfade %v outside [0, 1], ignored", x)
		return fmt.Errorf("crossfade %v: %w", x, audio.ErrOutOfRange)
	}

	c.value.Store(x)
	gl, gr := EqualPower(x)
	if err := c.mixer.SetGain(c.left, audio.Clamp(gl, 0, 1)); err != nil {
		return err
	}
	return c.mixer.SetGain(c.right, audio.Clamp(gr, 0, 1))
}

func (c *Crossfader) Value() float64 { return c.value.Load() }
