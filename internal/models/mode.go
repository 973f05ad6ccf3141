package models

import (
	"encoding/json"
	"fmt"
)

// Mode selects which target band the controller holds. The vocabulary is
// closed: anything that is not Diet or Training is Idle.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDiet
	ModeTraining
)

// TargetBand is the heart-rate band a mode tries to hold, in bpm.
type TargetBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Band returns the target band for the mode and whether one is active.
// Idle carries no band: smoothing runs but the motor command is frozen.
func (m Mode) Band(s *Settings) (TargetBand, bool) {
	switch m {
	case ModeDiet:
		return TargetBand{Low: s.DietLow, High: s.DietHigh}, true
	case ModeTraining:
		return TargetBand{Low: s.TrainingLow, High: s.TrainingHigh}, true
	}
	return TargetBand{}, false
}

func (m Mode) String() string {
	switch m {
	case ModeDiet:
		return "diet"
	case ModeTraining:
		return "training"
	}
	return "idle"
}

// MarshalJSON encodes the mode as its token string.
func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes a token string. "idle" and unknown tokens both map
// to Idle so stored snapshots never fail to parse.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseMode(token)
	if err != nil {
		parsed = ModeIdle
	}
	*m = parsed
	return nil
}

// ParseMode maps an operator token to a mode. Unknown non-empty tokens are
// rejected with an error; the caller is expected to revert to Idle.
func ParseMode(token string) (Mode, error) {
	switch token {
	case "diet":
		return ModeDiet, nil
	case "training":
		return ModeTraining, nil
	}
	return ModeIdle, fmt.Errorf("unknown mode %q (expected diet or training)", token)
}
