package ecg

import (
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
)

// Pipeline chains the conditioner, the detector and the RR tracker into the
// sample → envelope → peak → BPM flow. All state is owned by the calling
// goroutine; nothing here blocks or locks.
type Pipeline struct {
	conditioner *Conditioner
	detector    *Detector
	tracker     *RRTracker
}

// NewPipeline assembles a pipeline from settings.
func NewPipeline(s *models.Settings) *Pipeline {
	return &Pipeline{
		conditioner: NewConditioner(s.DCAlpha, s.EnvelopeAlpha),
		detector:    NewDetector(s.ThresholdAlpha, s.ThresholdGain, time.Duration(s.RefractoryMs)*time.Millisecond),
		tracker:     NewRRTracker(s.RRWindow, s.BPMValidMin, s.BPMValidMax),
	}
}

// Process runs one raw sample through the chain. It returns the envelope
// value and whether a heartbeat was accepted at this sample.
func (p *Pipeline) Process(raw int, now time.Time) (envelope float64, beat bool) {
	envelope = p.conditioner.Condition(raw)
	if p.detector.Detect(envelope, now) {
		p.tracker.OnPeak(now)
		beat = true
	}
	return envelope, beat
}

// BPM returns the latest accepted estimate, 0 before the first valid one.
func (p *Pipeline) BPM() int { return p.tracker.BPM() }

// HasEstimate reports whether a valid estimate exists yet.
func (p *Pipeline) HasEstimate() bool { return p.tracker.HasEstimate() }

// LastPeak returns the time of the most recent accepted peak.
func (p *Pipeline) LastPeak() time.Time { return p.tracker.LastPeak() }
