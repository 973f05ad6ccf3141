package ecg

import (
	"math"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
)

// Sim generates a synthetic (non-clinical) ECG-like waveform scaled to ADC
// counts, for running the full loop without hardware. The cycle is a sum of
// gaussian P/QRS/T bumps over a slow baseline plus cheap deterministic noise.
type Sim struct {
	fs    float64
	hrBPM float64
	noise float64
	phase float64
}

// NewSim creates a simulator at fs Hz producing hrBPM beats per minute.
// noise is the peak noise amplitude as a fraction of the R wave (0.0-0.05).
func NewSim(fs, hrBPM, noise float64) *Sim {
	return &Sim{fs: fs, hrBPM: hrBPM, noise: noise}
}

// SetRate changes the simulated heart rate for subsequent samples.
func (s *Sim) SetRate(hrBPM float64) { s.hrBPM = hrBPM }

// Read returns the next sample as an ADC count in [0, 1023] and advances the
// cycle phase. Implements Source.
func (s *Sim) Read() int {
	cycleHz := s.hrBPM / 60.0
	s.phase += cycleHz / s.fs
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}

	t := s.phase // 0..1 within the cycle

	baseline := 0.05 * math.Sin(2*math.Pi*0.33*t)

	p := 0.08 * gauss(t, 0.18, 0.03)
	q := -0.12 * gauss(t, 0.30, 0.01)
	r := 1.00 * gauss(t, 0.32, 0.008)
	sw := -0.25 * gauss(t, 0.35, 0.012)
	tw := 0.25 * gauss(t, 0.60, 0.06)

	n := s.noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	v := baseline + p + q + r + sw + tw + n

	// Center on mid-scale, R wave spanning ~40% of the ADC range.
	return models.Clamp(int(math.Round(512+400*v)), 0, 1023)
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
