package ecg

import "testing"

func TestConditioner_BaselineConvergence(t *testing.T) {
	c := NewConditioner(0.995, 0.3)

	for i := 0; i < 3000; i++ {
		c.Condition(512)
	}

	if base := c.Baseline(); base < 511 || base > 513 {
		t.Errorf("baseline = %.2f, want ~512", base)
	}
	if env := c.Envelope(); env > 5 {
		t.Errorf("envelope = %.2f on a flat signal, want near 0", env)
	}
}

func TestConditioner_StepResponse(t *testing.T) {
	c := NewConditioner(0.995, 0.3)
	for i := 0; i < 3000; i++ {
		c.Condition(512)
	}

	// A 400-count step should show up in the envelope immediately: the
	// rectified deviation is weighted at 0.7 on the very next sample.
	env := c.Condition(912)
	if env < 250 {
		t.Errorf("envelope after step = %.2f, want > 250", env)
	}
}

func TestConditioner_DriftRemoval(t *testing.T) {
	c := NewConditioner(0.995, 0.3)

	// Slow ramp: the baseline should follow and keep the envelope small.
	raw := 400
	for i := 0; i < 10000; i++ {
		if i%50 == 0 && raw < 600 {
			raw++
		}
		c.Condition(raw)
	}

	if env := c.Envelope(); env > 10 {
		t.Errorf("envelope = %.2f under slow drift, want small", env)
	}
}
