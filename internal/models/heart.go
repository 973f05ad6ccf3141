// Package models contains data structures used throughout the application
package models

import "time"

// HeartRateStatus is a point-in-time snapshot of the detection pipeline and
// the controller, taken once per reporting interval. It is what the status
// line, the badge, the websocket dashboard and the NATS status subject all
// consume.
type HeartRateStatus struct {
	BPM          int       `json:"bpm"`          // Latest accepted estimate, 0 before the first one
	SmoothedBPM  float64   `json:"smoothedBpm"`  // Controller EMA of valid readings
	Command      uint8     `json:"command"`      // Current motor command magnitude
	Mode         Mode      `json:"mode"`         // Active mode
	TargetLow    float64   `json:"targetLow"`    // Active band, 0 when Idle
	TargetHigh   float64   `json:"targetHigh"`   // Active band, 0 when Idle
	Direction    string    `json:"direction"`    // "Up", "Flat" or "Down"
	Status       string    `json:"status"`       // "normal", "high", "low", "urgent_high", "urgent_low"
	Time         time.Time `json:"time"`         // Snapshot time
	NoEstimate   bool      `json:"noEstimate"`   // True before the second accepted peak
	StaleSeconds int       `json:"staleSeconds"` // Seconds since the last accepted peak
}

// TrendArrow returns the Unicode arrow character for the direction
func (s *HeartRateStatus) TrendArrow() string {
	switch s.Direction {
	case "Up":
		return "↑"
	case "Down":
		return "↓"
	case "Flat":
		return "→"
	}
	return "-"
}

// WaveFrame is one batch of conditioned envelope samples for streaming
// consumers. Samples travel as binary little-endian float32 on the wire;
// this struct only carries them inside the process.
type WaveFrame struct {
	Samples []float32
	Time    time.Time
}
