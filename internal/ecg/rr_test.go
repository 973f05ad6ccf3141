package ecg

import (
	"testing"
	"time"
)

func TestRRTracker_FirstPeakOnlySetsReference(t *testing.T) {
	tr := NewRRTracker(5, 40, 200)
	base := time.Unix(1000, 0)

	if bpm := tr.OnPeak(base); bpm != 0 {
		t.Errorf("bpm after first peak = %d, want 0", bpm)
	}
	if tr.HasEstimate() {
		t.Error("estimate reported before the second peak")
	}
}

func TestRRTracker_Convergence(t *testing.T) {
	tests := []struct {
		name     string
		periodMs int
		want     int
	}{
		{"100 bpm", 600, 100},
		{"80 bpm", 750, 80},
		{"60 bpm", 1000, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewRRTracker(5, 40, 200)
			base := time.Unix(1000, 0)
			for i := 0; i <= 10; i++ {
				tr.OnPeak(base.Add(time.Duration(i*tt.periodMs) * time.Millisecond))
			}
			if got := tr.BPM(); got != tt.want {
				t.Errorf("BPM() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRRTracker_PartialFillAveraging(t *testing.T) {
	tr := NewRRTracker(5, 40, 200)
	base := time.Unix(1000, 0)

	// Two peaks 600 ms apart: one interval in a five-slot window must
	// already yield an estimate from the partial mean.
	tr.OnPeak(base)
	tr.OnPeak(base.Add(600 * time.Millisecond))

	if got := tr.BPM(); got != 100 {
		t.Errorf("BPM() with one interval = %d, want 100", got)
	}
}

func TestRRTracker_OutlierRejection(t *testing.T) {
	// Window of one makes the rejection visible on a single interval.
	tr := NewRRTracker(1, 40, 200)
	base := time.Unix(1000, 0)

	tr.OnPeak(base)
	tr.OnPeak(base.Add(600 * time.Millisecond)) // 100 bpm, accepted
	if got := tr.BPM(); got != 100 {
		t.Fatalf("BPM() = %d, want 100", got)
	}

	// 100 ms interval implies 600 bpm: outside [40,200], the exposed
	// estimate must keep its previous value.
	tr.OnPeak(base.Add(700 * time.Millisecond))
	if got := tr.BPM(); got != 100 {
		t.Errorf("BPM() after artifact = %d, want unchanged 100", got)
	}

	// A dropout (20 s gap, 3 bpm) is rejected the same way.
	tr.OnPeak(base.Add(20700 * time.Millisecond))
	if got := tr.BPM(); got != 100 {
		t.Errorf("BPM() after dropout = %d, want unchanged 100", got)
	}
}

func TestRRTracker_RingOverwritesOldest(t *testing.T) {
	tr := NewRRTracker(3, 40, 200)
	base := time.Unix(1000, 0)

	// Fill with 1000 ms intervals, then shift to 600 ms. Once the ring
	// holds only 600s the estimate must be exactly 100.
	ts := base
	tr.OnPeak(ts)
	for i := 0; i < 3; i++ {
		ts = ts.Add(1000 * time.Millisecond)
		tr.OnPeak(ts)
	}
	if got := tr.BPM(); got != 60 {
		t.Fatalf("BPM() = %d, want 60", got)
	}

	for i := 0; i < 3; i++ {
		ts = ts.Add(600 * time.Millisecond)
		tr.OnPeak(ts)
	}
	if got := tr.BPM(); got != 100 {
		t.Errorf("BPM() after window turnover = %d, want 100", got)
	}
}
