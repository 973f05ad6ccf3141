// Package ecg turns a raw bioelectric amplitude stream into heartbeat events
// and a de-noised beats-per-minute estimate. The chain is Conditioner →
// Detector → RRTracker, usually assembled through Pipeline and fed by a
// Sampler at a fixed rate.
package ecg

import "math"

// Conditioner removes baseline wander from the raw signal and smooths the
// rectified remainder into an envelope. State is zero-initialized and never
// reset while the process runs.
type Conditioner struct {
	dcAlpha  float64 // weight on the previous baseline value
	envAlpha float64 // weight on the previous envelope value

	dcMean float64
	envEma float64
}

// NewConditioner creates a conditioner. dcAlpha close to 1 (e.g. 0.995) makes
// the baseline track slowly enough to act as drift removal; envAlpha trades
// envelope smoothness against responsiveness (e.g. 0.3).
func NewConditioner(dcAlpha, envAlpha float64) *Conditioner {
	return &Conditioner{dcAlpha: dcAlpha, envAlpha: envAlpha}
}

// Condition processes one raw sample and returns the current envelope value.
func (c *Conditioner) Condition(raw int) float64 {
	c.dcMean = c.dcAlpha*c.dcMean + (1.0-c.dcAlpha)*float64(raw)
	env := math.Abs(float64(raw) - c.dcMean)
	c.envEma = c.envAlpha*c.envEma + (1.0-c.envAlpha)*env
	return c.envEma
}

// Baseline returns the current DC estimate.
func (c *Conditioner) Baseline() float64 { return c.dcMean }

// Envelope returns the current envelope value without processing a sample.
func (c *Conditioner) Envelope() float64 { return c.envEma }
