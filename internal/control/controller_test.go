package control

import (
	"testing"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
)

func newController() (*Controller, *motor.Recorder) {
	rec := &motor.Recorder{}
	c := New(models.DefaultSettings(), rec)
	return c, rec
}

func TestController_StartsAtMinimum(t *testing.T) {
	c, rec := newController()
	if c.Command() != 70 {
		t.Errorf("initial command = %d, want 70", c.Command())
	}
	if rec.Last() != 70 {
		t.Error("initial command was not applied to the driver")
	}
}

func TestController_InvalidReadingSkipsCycle(t *testing.T) {
	c, rec := newController()
	c.SetMode(models.ModeDiet)
	base := time.Unix(1000, 0)

	writes := len(rec.Commands)
	for _, bpm := range []int{0, 39, 201, 500} {
		c.Step(bpm, base)
		base = base.Add(2 * time.Second)
	}

	if c.SmoothedBPM() != 0 {
		t.Errorf("smoothing state touched by invalid readings: %.1f", c.SmoothedBPM())
	}
	if len(rec.Commands) != writes {
		t.Error("invalid readings reached the motor")
	}
}

func TestController_BootstrapSeedsSmoothing(t *testing.T) {
	c, _ := newController()
	base := time.Unix(1000, 0)

	c.Step(80, base)
	if c.SmoothedBPM() != 80 {
		t.Errorf("first valid reading smoothed to %.1f, want exactly 80", c.SmoothedBPM())
	}

	// Subsequent readings blend: 0.6*80 + 0.4*100 = 88.
	c.Step(100, base.Add(time.Second))
	if got := c.SmoothedBPM(); got != 88 {
		t.Errorf("smoothed = %.1f, want 88.0", got)
	}
}

func TestController_DeadbandHolds(t *testing.T) {
	c, rec := newController()
	c.SetMode(models.ModeDiet) // band 60-70, deadband 1.5
	base := time.Unix(1000, 0)

	writes := len(rec.Commands)
	for i := 0; i < 20; i++ {
		c.Step(65, base.Add(time.Duration(i)*time.Second))
	}

	if c.Command() != 70 {
		t.Errorf("command = %d inside the deadband, want unchanged 70", c.Command())
	}
	if len(rec.Commands) != writes {
		t.Error("motor written while holding inside the deadband")
	}
}

func TestController_SaturatesAtMaxWithoutOscillation(t *testing.T) {
	c, _ := newController()
	c.SetMode(models.ModeDiet)
	base := time.Unix(1000, 0)

	// Heart rate pinned far below the band drives the command up to the
	// ceiling and keeps it there.
	var prev uint8
	for i := 0; i < 30; i++ {
		cmd := c.Step(45, base.Add(time.Duration(i)*time.Second))
		if cmd < prev {
			t.Fatalf("command moved backwards: %d -> %d", prev, cmd)
		}
		prev = cmd
	}

	if c.Command() != 255 {
		t.Errorf("command = %d after sustained low HR, want saturated 255", c.Command())
	}

	// Further steps must not overflow or leave the bound.
	for i := 30; i < 40; i++ {
		if cmd := c.Step(45, base.Add(time.Duration(i)*time.Second)); cmd != 255 {
			t.Fatalf("command = %d past saturation, want 255", cmd)
		}
	}
}

func TestController_SlowsDownToFloor(t *testing.T) {
	c, _ := newController()
	c.SetMode(models.ModeTraining) // band 70-80
	base := time.Unix(1000, 0)

	// Drive the command up first, then pin the heart rate high.
	for i := 0; i < 10; i++ {
		c.Step(50, base.Add(time.Duration(i)*time.Second))
	}
	if c.Command() <= 70 {
		t.Fatal("setup failed to raise the command")
	}

	for i := 10; i < 60; i++ {
		c.Step(150, base.Add(time.Duration(i)*time.Second))
	}
	if c.Command() != 70 {
		t.Errorf("command = %d after sustained high HR, want floor 70", c.Command())
	}
}

func TestController_RateLimit(t *testing.T) {
	c, _ := newController()
	c.SetMode(models.ModeDiet)
	base := time.Unix(1000, 0)

	first := c.Step(45, base)

	// 100 ms later: smoothing runs, the command does not move.
	second := c.Step(45, base.Add(100*time.Millisecond))
	if second != first {
		t.Errorf("command changed inside the control period: %d -> %d", first, second)
	}

	third := c.Step(45, base.Add(1100*time.Millisecond))
	if third == second {
		t.Error("command did not change after the control period elapsed")
	}
}

func TestController_IdleSmoothsWithoutActuation(t *testing.T) {
	c, rec := newController()
	base := time.Unix(1000, 0)

	writes := len(rec.Commands)
	for i, bpm := range []int{90, 100, 110, 120} {
		c.Step(bpm, base.Add(time.Duration(i)*2*time.Second))
	}

	if c.SmoothedBPM() == 0 {
		t.Error("smoothing did not run in idle")
	}
	if c.Command() != 70 || len(rec.Commands) != writes {
		t.Error("idle mode moved the motor")
	}
}

func TestController_ModeSwitchContinuity(t *testing.T) {
	c, _ := newController()
	c.SetMode(models.ModeDiet)
	base := time.Unix(1000, 0)

	for i := 0; i < 5; i++ {
		c.Step(55, base.Add(time.Duration(i)*time.Second))
	}
	smoothed, cmd := c.SmoothedBPM(), c.Command()

	c.SetMode(models.ModeTraining)
	if c.SmoothedBPM() != smoothed || c.Command() != cmd {
		t.Error("mode switch reset smoothing state or the command")
	}

	// The new band governs from the next due step: 55 bpm is far below
	// Training's 70, so the command keeps rising.
	c.Step(55, base.Add(10*time.Second))
	if c.Command() <= cmd {
		t.Error("controller ignored the new band after the switch")
	}
}
