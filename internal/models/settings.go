package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Settings contains all application settings
type Settings struct {
	mu sync.RWMutex `json:"-"`

	// Sampling
	SampleRateHz int `json:"sampleRateHz"` // ADC sample rate (200-360 recommended)

	// Signal conditioning / peak detection
	DCAlpha        float64 `json:"dcAlpha"`        // Baseline EMA weight on previous value (0.99-0.999)
	EnvelopeAlpha  float64 `json:"envelopeAlpha"`  // Envelope EMA weight on previous value
	ThresholdAlpha float64 `json:"thresholdAlpha"` // Threshold EMA weight on previous value
	ThresholdGain  float64 `json:"thresholdGain"`  // Threshold = tracker * gain (1.2-2.0)
	RefractoryMs   int     `json:"refractoryMs"`   // Minimum gap between accepted peaks
	RRWindow       int     `json:"rrWindow"`       // RR intervals averaged for the estimate (3-8)
	BPMValidMin    int     `json:"bpmValidMin"`    // Estimates outside this range are discarded
	BPMValidMax    int     `json:"bpmValidMax"`

	// Controller
	CmdMin       uint8   `json:"cmdMin"`       // Lowest command that actually moves the motor
	CmdMax       uint8   `json:"cmdMax"`       // Hardware ceiling
	ControlMs    int     `json:"controlMs"`    // Control period
	SmoothFactor float64 `json:"smoothFactor"` // BPM EMA weight on previous value (closer to 1 = slower)
	Kp           float64 `json:"kp"`           // Command change per bpm of error
	Deadband     float64 `json:"deadband"`     // bpm margin around the band edges
	HRValidMin   int     `json:"hrValidMin"`   // Readings outside this range skip the cycle
	HRValidMax   int     `json:"hrValidMax"`
	DietLow      float64 `json:"dietLow"`
	DietHigh     float64 `json:"dietHigh"`
	TrainingLow  float64 `json:"trainingLow"`
	TrainingHigh float64 `json:"trainingHigh"`

	// Alert settings
	EnableHighAlert       bool `json:"enableHighAlert"`
	EnableLowAlert        bool `json:"enableLowAlert"`
	EnableUrgentHighAlert bool `json:"enableUrgentHighAlert"`
	EnableUrgentLowAlert  bool `json:"enableUrgentLowAlert"`
	UrgentLowBPM          int  `json:"urgentLowBpm"`
	UrgentHighBPM         int  `json:"urgentHighBpm"`
	RepeatAlertMinutes    int  `json:"repeatAlertMinutes"` // 0 = no repeat

	// Reporting / streaming
	ReportSeconds int    `json:"reportSeconds"` // Status line interval
	WaveBatch     int    `json:"waveBatch"`     // Envelope samples per published frame
	NATSUrl       string `json:"natsUrl"`       // Empty disables NATS publishing
	HTTPAddr      string `json:"httpAddr"`      // Empty disables the dashboard
}

// DefaultSettings returns settings with the values the firmware shipped with
func DefaultSettings() *Settings {
	return &Settings{
		SampleRateHz: 250,

		DCAlpha:        0.995,
		EnvelopeAlpha:  0.3,
		ThresholdAlpha: 0.99,
		ThresholdGain:  1.5,
		RefractoryMs:   250,
		RRWindow:       5,
		BPMValidMin:    40,
		BPMValidMax:    200,

		CmdMin:       70,
		CmdMax:       255,
		ControlMs:    1000,
		SmoothFactor: 0.6,
		Kp:           3.5,
		Deadband:     1.5,
		HRValidMin:   40,
		HRValidMax:   200,
		DietLow:      60,
		DietHigh:     70,
		TrainingLow:  70,
		TrainingHigh: 80,

		EnableHighAlert:       true,
		EnableLowAlert:        true,
		EnableUrgentHighAlert: true,
		EnableUrgentLowAlert:  true,
		UrgentLowBPM:          45,
		UrgentHighBPM:         185,
		RepeatAlertMinutes:    5,

		ReportSeconds: 1,
		WaveBatch:     10,
		NATSUrl:       "",
		HTTPAddr:      ":8080",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	appDir := filepath.Join(configDir, "zxis-run")
	if err := os.MkdirAll(appDir, 0750); err != nil {
		return "", err
	}

	return appDir, nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load loads settings from disk, falling back to defaults when no file exists
func (s *Settings) Load() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return s.LoadFrom(path)
}

// LoadFrom loads settings from an explicit path
func (s *Settings) LoadFrom(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path) //nolint:gosec // Config path is controlled by the app, not user input
	if err != nil {
		if os.IsNotExist(err) {
			s.copySettingsFields(DefaultSettings())
			return nil
		}
		return err
	}

	return json.Unmarshal(data, s)
}

// Save saves settings to disk
func (s *Settings) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo saves settings to an explicit path
func (s *Settings) SaveTo(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Clone creates a copy of the settings
func (s *Settings) Clone() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &Settings{}
	clone.copySettingsFields(s)
	return clone
}

// Update updates settings from another Settings object
func (s *Settings) Update(other *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	s.copySettingsFields(other)
}

// copySettingsFields copies all fields from other to s, excluding the mutex.
// The caller must hold the necessary locks on s and other (if other is shared)
func (s *Settings) copySettingsFields(other *Settings) {
	s.SampleRateHz = other.SampleRateHz
	s.DCAlpha = other.DCAlpha
	s.EnvelopeAlpha = other.EnvelopeAlpha
	s.ThresholdAlpha = other.ThresholdAlpha
	s.ThresholdGain = other.ThresholdGain
	s.RefractoryMs = other.RefractoryMs
	s.RRWindow = other.RRWindow
	s.BPMValidMin = other.BPMValidMin
	s.BPMValidMax = other.BPMValidMax
	s.CmdMin = other.CmdMin
	s.CmdMax = other.CmdMax
	s.ControlMs = other.ControlMs
	s.SmoothFactor = other.SmoothFactor
	s.Kp = other.Kp
	s.Deadband = other.Deadband
	s.HRValidMin = other.HRValidMin
	s.HRValidMax = other.HRValidMax
	s.DietLow = other.DietLow
	s.DietHigh = other.DietHigh
	s.TrainingLow = other.TrainingLow
	s.TrainingHigh = other.TrainingHigh
	s.EnableHighAlert = other.EnableHighAlert
	s.EnableLowAlert = other.EnableLowAlert
	s.EnableUrgentHighAlert = other.EnableUrgentHighAlert
	s.EnableUrgentLowAlert = other.EnableUrgentLowAlert
	s.UrgentLowBPM = other.UrgentLowBPM
	s.UrgentHighBPM = other.UrgentHighBPM
	s.RepeatAlertMinutes = other.RepeatAlertMinutes
	s.ReportSeconds = other.ReportSeconds
	s.WaveBatch = other.WaveBatch
	s.NATSUrl = other.NATSUrl
	s.HTTPAddr = other.HTTPAddr
}

// GetHeartRateStatus classifies a smoothed bpm value against the active band.
// With no active band only the urgent thresholds apply.
func (s *Settings) GetHeartRateStatus(bpm float64, band TargetBand, active bool) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case bpm <= float64(s.UrgentLowBPM):
		return "urgent_low"
	case bpm >= float64(s.UrgentHighBPM):
		return "urgent_high"
	case active && bpm < band.Low-s.Deadband:
		return "low"
	case active && bpm > band.High+s.Deadband:
		return "high"
	default:
		return "normal"
	}
}
