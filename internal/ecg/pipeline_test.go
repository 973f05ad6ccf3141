package ecg

import (
	"testing"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
)

// pulseTrain drives the pipeline with a clean square pulse train: pulseWidth
// samples at high amplitude every periodSamples samples, baseline elsewhere.
func pulseTrain(p *Pipeline, base time.Time, totalSamples, periodSamples, pulseWidth int) {
	for i := 0; i < totalSamples; i++ {
		raw := 512
		if i%periodSamples < pulseWidth {
			raw = 900
		}
		p.Process(raw, base.Add(time.Duration(i)*4*time.Millisecond))
	}
}

func TestPipeline_ConvergesToPulseRate(t *testing.T) {
	tests := []struct {
		name          string
		periodSamples int // at 250 Hz
		want          int
	}{
		{"100 bpm", 150, 100}, // 600 ms
		{"75 bpm", 200, 75},   // 800 ms
		{"50 bpm", 300, 50},   // 1200 ms
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(models.DefaultSettings())
			base := time.Unix(1000, 0)

			// 60 s of signal: enough for the baseline transient to die
			// out and the RR window to turn over on clean beats.
			pulseTrain(p, base, 15000, tt.periodSamples, 10)

			got := p.BPM()
			if got < tt.want-1 || got > tt.want+1 {
				t.Errorf("BPM() = %d, want %d ±1", got, tt.want)
			}
		})
	}
}

func TestPipeline_NoEstimateOnFlatSignal(t *testing.T) {
	p := NewPipeline(models.DefaultSettings())
	base := time.Unix(1000, 0)

	for i := 0; i < 5000; i++ {
		p.Process(512, base.Add(time.Duration(i)*4*time.Millisecond))
	}

	// The startup transient may establish a peak reference, but a flat
	// signal must never yield a valid rate.
	if p.BPM() != 0 {
		t.Errorf("BPM() = %d on a flat signal, want 0", p.BPM())
	}
}

func TestPipeline_BeatFlag(t *testing.T) {
	p := NewPipeline(models.DefaultSettings())
	base := time.Unix(1000, 0)

	// Let the baseline settle first.
	pulseTrain(p, base, 5000, 150, 10)

	beats := 0
	for i := 5000; i < 7500; i++ { // 10 s
		raw := 512
		if i%150 < 10 {
			raw = 900
		}
		_, beat := p.Process(raw, base.Add(time.Duration(i)*4*time.Millisecond))
		if beat {
			beats++
		}
	}

	// 10 s at 100 bpm: one accepted beat per pulse.
	if beats < 15 || beats > 18 {
		t.Errorf("accepted %d beats in 10 s at 100 bpm, want ~16", beats)
	}
}
