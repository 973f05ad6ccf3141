// Package control holds the heart-rate band controller: a rate-limited,
// deadbanded, clamped proportional rule that nudges a single-direction motor
// command so the smoothed heart rate settles into the active target band.
package control

import (
	"fmt"
	"math"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
)

// Controller consumes BPM readings and issues motor commands. All state is
// owned by the calling goroutine. Mode changes swap the target band only;
// smoothing state and the current command survive them.
type Controller struct {
	settings *models.Settings
	driver   motor.Driver

	mode        models.Mode
	smoothedBPM float64
	command     uint8
	lastControl time.Time
	bootstrap   bool // true once smoothedBPM holds a real value
}

// New creates a controller in Idle with the command parked at CmdMin, which
// is applied to the driver immediately (the belt idles at its lowest moving
// speed, matching the firmware's power-on behavior).
func New(settings *models.Settings, driver motor.Driver) *Controller {
	c := &Controller{
		settings: settings,
		driver:   driver,
		command:  settings.CmdMin,
	}
	if err := driver.Write(c.command); err != nil {
		fmt.Printf("[WARN] motor write failed: %v\n", err)
	}
	return c
}

// SetMode switches the active mode. Smoothing state and the current command
// are deliberately preserved so a Diet→Training switch mid-run is seamless.
func (c *Controller) SetMode(mode models.Mode) { c.mode = mode }

// Mode returns the active mode.
func (c *Controller) Mode() models.Mode { return c.mode }

// SmoothedBPM returns the current EMA of valid readings (0 before the first).
func (c *Controller) SmoothedBPM() float64 { return c.smoothedBPM }

// Command returns the current motor command magnitude.
func (c *Controller) Command() uint8 { return c.command }

// Step runs one controller invocation. It may be called far more often than
// the control period: smoothing is applied on every valid reading, while the
// command is only recomputed once per period. Invalid readings are logged and
// skipped without touching any state.
func (c *Controller) Step(bpm int, now time.Time) uint8 {
	if bpm < c.settings.HRValidMin || bpm > c.settings.HRValidMax {
		fmt.Printf("[WARN] invalid BPM reading: %d\n", bpm)
		return c.command
	}

	if !c.bootstrap {
		// First valid reading seeds the EMA directly to avoid a long
		// zero-biased ramp-in.
		c.smoothedBPM = float64(bpm)
		c.bootstrap = true
	} else {
		a := c.settings.SmoothFactor
		c.smoothedBPM = a*c.smoothedBPM + (1.0-a)*float64(bpm)
	}

	if now.Sub(c.lastControl) < time.Duration(c.settings.ControlMs)*time.Millisecond {
		return c.command
	}
	c.lastControl = now

	band, active := c.mode.Band(c.settings)
	if !active {
		// Idle: hold the last command.
		return c.command
	}

	var delta float64
	switch {
	case c.smoothedBPM < band.Low-c.settings.Deadband:
		delta = c.settings.Kp * (band.Low - c.smoothedBPM)
	case c.smoothedBPM > band.High+c.settings.Deadband:
		delta = -c.settings.Kp * (c.smoothedBPM - band.High)
	}

	// The command accumulates: each period nudges it by the proportional
	// delta instead of setting it from the error absolutely. Settling time
	// and overshoot depend on this.
	next := models.Clamp(int(c.command)+int(math.Round(delta)),
		int(c.settings.CmdMin), int(c.settings.CmdMax))

	if uint8(next) != c.command {
		c.command = uint8(next)
		if err := c.driver.Write(c.command); err != nil {
			fmt.Printf("[WARN] motor write failed: %v\n", err)
		}
	}
	return c.command
}
