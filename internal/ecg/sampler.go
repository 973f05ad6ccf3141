package ecg

import "time"

// Source yields one raw amplitude reading per call, bounded to the sensor's
// reportable range. Implementations must not block; the sampler polls at the
// configured rate from the main service loop.
type Source interface {
	Read() int
}

// Sampler drives a Source at a fixed rate. When servicing is delayed it
// advances the last-sample time by exactly one period per processed sample
// instead of resynchronizing to the clock, which bounds drift without
// producing a burst of simultaneous catch-up samples.
type Sampler struct {
	source  Source
	period  time.Duration
	last    time.Time
	started bool
}

// NewSampler creates a sampler reading source at rateHz.
func NewSampler(source Source, rateHz int) *Sampler {
	if rateHz < 1 {
		rateHz = 1
	}
	return &Sampler{
		source: source,
		period: time.Second / time.Duration(rateHz),
	}
}

// Period returns the configured sample period.
func (s *Sampler) Period() time.Duration { return s.period }

// Poll processes every sample due at now, invoking fn once per sample with
// the raw reading and that sample's nominal time. It returns the number of
// samples processed.
func (s *Sampler) Poll(now time.Time, fn func(raw int, ts time.Time)) int {
	if !s.started {
		s.last = now
		s.started = true
	}

	n := 0
	for now.Sub(s.last) >= s.period {
		s.last = s.last.Add(s.period)
		fn(s.source.Read(), s.last)
		n++
	}
	return n
}
