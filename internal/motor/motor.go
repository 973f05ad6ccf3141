// Package motor abstracts the single-direction treadmill drive. The belt
// only ever runs forward; drivers modulate magnitude and must never reverse.
package motor

import "fmt"

// Driver is the actuator sink. Write applies a command magnitude; the
// direction is fixed by the hardware wiring.
type Driver interface {
	Write(cmd uint8) error
}

// Console logs each command change, standing in for a PWM bridge during
// development and in tests that want visible output.
type Console struct {
	last    uint8
	written bool
}

// Write logs the command when it changes.
func (c *Console) Write(cmd uint8) error {
	if !c.written || cmd != c.last {
		fmt.Printf("[MOTOR] command -> %d\n", cmd)
	}
	c.last = cmd
	c.written = true
	return nil
}

// Null discards commands. Used when running detection-only.
type Null struct{}

// Write implements Driver.
func (Null) Write(uint8) error { return nil }

// Recorder captures every written command for tests.
type Recorder struct {
	Commands []uint8
}

// Write implements Driver.
func (r *Recorder) Write(cmd uint8) error {
	r.Commands = append(r.Commands, cmd)
	return nil
}

// Last returns the most recent command, or 0 if none was written.
func (r *Recorder) Last() uint8 {
	if len(r.Commands) == 0 {
		return 0
	}
	return r.Commands[len(r.Commands)-1]
}
