package ecg

import (
	"math"
	"time"
)

// RRTracker converts accepted peak times into a smoothed BPM estimate. The
// most recent intervals live in a fixed-capacity ring; the exposed estimate
// is only overwritten when the window mean maps to a physiologically valid
// rate, so isolated double-detections and dropouts cannot corrupt it.
type RRTracker struct {
	buf      []float64 // intervals in ms
	idx      int
	filled   bool
	validMin int
	validMax int

	lastPeak time.Time
	bpm      int
}

// NewRRTracker creates a tracker averaging over window intervals and
// accepting estimates in [validMin, validMax] bpm.
func NewRRTracker(window, validMin, validMax int) *RRTracker {
	if window < 1 {
		window = 1
	}
	return &RRTracker{
		buf:      make([]float64, window),
		validMin: validMin,
		validMax: validMax,
	}
}

// OnPeak records an accepted peak. The first call only establishes the
// reference time; later calls push the interval since the previous peak and
// recompute the estimate. Returns the current estimate.
func (t *RRTracker) OnPeak(now time.Time) int {
	if t.lastPeak.IsZero() {
		t.lastPeak = now
		return t.bpm
	}

	rr := float64(now.Sub(t.lastPeak).Milliseconds())
	t.lastPeak = now
	t.push(rr)
	return t.bpm
}

func (t *RRTracker) push(rr float64) {
	t.buf[t.idx] = rr
	t.idx++
	if t.idx >= len(t.buf) {
		t.idx = 0
		t.filled = true
	}

	n := t.idx
	if t.filled {
		n = len(t.buf)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += t.buf[i]
	}
	if n == 0 || sum <= 0 {
		return
	}

	bpm := int(math.Round(60000.0 / (sum / float64(n))))
	if bpm >= t.validMin && bpm <= t.validMax {
		t.bpm = bpm
	}
}

// BPM returns the latest accepted estimate, 0 before the first valid one.
func (t *RRTracker) BPM() int { return t.bpm }

// HasEstimate reports whether at least one valid estimate has been produced.
func (t *RRTracker) HasEstimate() bool { return t.bpm != 0 }

// LastPeak returns the time of the last recorded peak.
func (t *RRTracker) LastPeak() time.Time { return t.lastPeak }
