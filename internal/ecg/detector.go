package ecg

import "time"

// Detector tracks a dynamic threshold over the envelope signal and emits
// accepted peaks on hysteretic rising edges. A refractory lockout bounds the
// maximum representable rate (250 ms ≈ 240 bpm); candidates inside the
// lockout are dropped silently, but the above-threshold flag still updates,
// so one continuous excursion produces at most one accepted peak.
type Detector struct {
	thresholdAlpha float64 // weight on the previous tracker value
	gain           float64
	refractory     time.Duration

	thresholdEma float64
	above        bool
	lastPeak     time.Time
}

// NewDetector creates a detector. thresholdAlpha is the weight kept on the
// previous tracker value per sample: 0.99 adapts over a few seconds at 250 Hz.
// The firmware this was lifted from shipped with the weights swapped, which
// pins the threshold at gain× the envelope itself and can never fire; the
// slow weighting here is the tuning the rest of the pipeline assumes.
func NewDetector(thresholdAlpha, gain float64, refractory time.Duration) *Detector {
	return &Detector{
		thresholdAlpha: thresholdAlpha,
		gain:           gain,
		refractory:     refractory,
		// Starts above: the zero-initialized tracker would otherwise turn
		// the very first sample into a rising edge and record a phantom
		// peak. Acceptance requires the envelope to arm below threshold
		// first, so the startup transient passes without firing.
		above: true,
	}
}

// Detect processes one envelope value. It returns true when a peak is
// accepted. The very first accepted crossing only establishes the reference
// time; the caller diffs consecutive accepted peaks for RR intervals.
func (d *Detector) Detect(envelope float64, now time.Time) bool {
	d.thresholdEma = d.thresholdAlpha*d.thresholdEma + (1.0-d.thresholdAlpha)*envelope
	threshold := d.thresholdEma * d.gain

	nowAbove := envelope > threshold
	accepted := false

	if nowAbove && !d.above {
		if d.lastPeak.IsZero() || now.Sub(d.lastPeak) >= d.refractory {
			d.lastPeak = now
			accepted = true
		}
	}
	d.above = nowAbove

	return accepted
}

// Threshold returns the current effective threshold value.
func (d *Detector) Threshold() float64 { return d.thresholdEma * d.gain }

// LastPeak returns the time of the last accepted peak (zero before the first).
func (d *Detector) LastPeak() time.Time { return d.lastPeak }
