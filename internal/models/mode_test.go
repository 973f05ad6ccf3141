package models

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		token   string
		want    Mode
		wantErr bool
	}{
		{"diet", ModeDiet, false},
		{"training", ModeTraining, false},
		{"", ModeIdle, true},
		{"idle", ModeIdle, true},
		{"DIET", ModeIdle, true},
		{"sprint", ModeIdle, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.token)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestMode_Band(t *testing.T) {
	s := DefaultSettings()

	band, active := ModeDiet.Band(s)
	if !active || band.Low != 60 || band.High != 70 {
		t.Errorf("diet band = %+v active=%v, want 60-70 active", band, active)
	}

	band, active = ModeTraining.Band(s)
	if !active || band.Low != 70 || band.High != 80 {
		t.Errorf("training band = %+v active=%v, want 70-80 active", band, active)
	}

	if _, active = ModeIdle.Band(s); active {
		t.Error("idle reported an active band")
	}
}

func TestMode_JSON(t *testing.T) {
	data, err := json.Marshal(ModeTraining)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"training"` {
		t.Errorf("marshaled mode = %s, want %q", data, "training")
	}

	var m Mode
	if err := json.Unmarshal([]byte(`"diet"`), &m); err != nil || m != ModeDiet {
		t.Errorf("unmarshal diet = %v (err %v), want ModeDiet", m, err)
	}
	if err := json.Unmarshal([]byte(`"garbage"`), &m); err != nil || m != ModeIdle {
		t.Errorf("unmarshal unknown = %v (err %v), want ModeIdle", m, err)
	}
}
