// Package notifications handles desktop alerts for heart-rate excursions
package notifications

import (
	"fmt"
	"sync"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/gen2brain/beeep"
)

// Alert type constants
const (
	alertUrgentLow  = "urgent_low"
	alertLow        = "low"
	alertUrgentHigh = "urgent_high"
	alertHigh       = "high"
)

// Manager decides when a heart-rate status warrants a desktop notification
// and suppresses repeats within the configured window.
type Manager struct {
	settings      *models.Settings
	lastAlertTime map[string]time.Time
	mu            sync.Mutex
}

// NewManager creates a new notification manager
func NewManager(settings *models.Settings) *Manager {
	return &Manager{
		settings:      settings,
		lastAlertTime: make(map[string]time.Time),
	}
}

// UpdateSettings updates the settings reference
func (m *Manager) UpdateSettings(settings *models.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
}

// CheckAndNotify checks the status and sends a notification if needed
func (m *Manager) CheckAndNotify(status *models.HeartRateStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alertType := m.shouldAlert(status)
	if alertType == "" {
		return nil
	}

	if lastTime, ok := m.lastAlertTime[alertType]; ok {
		if m.settings.RepeatAlertMinutes > 0 {
			repeatDuration := time.Duration(m.settings.RepeatAlertMinutes) * time.Minute
			if time.Since(lastTime) < repeatDuration {
				return nil
			}
		} else {
			// No repeat, only alert once per status change
			return nil
		}
	}

	title, message := m.formatNotification(status, alertType)
	if err := m.sendNotification(title, message); err != nil {
		return err
	}

	m.lastAlertTime[alertType] = time.Now()
	return nil
}

// shouldAlert determines if an alert should be sent
func (m *Manager) shouldAlert(status *models.HeartRateStatus) string {
	if status.NoEstimate {
		return ""
	}

	switch status.Status {
	case alertUrgentLow:
		if m.settings.EnableUrgentLowAlert {
			return alertUrgentLow
		}
	case alertLow:
		if m.settings.EnableLowAlert {
			return alertLow
		}
	case alertUrgentHigh:
		if m.settings.EnableUrgentHighAlert {
			return alertUrgentHigh
		}
	case alertHigh:
		if m.settings.EnableHighAlert {
			return alertHigh
		}
	}
	return ""
}

// formatNotification creates the notification title and message
func (m *Manager) formatNotification(status *models.HeartRateStatus, alertType string) (string, string) {
	var title, message string
	valueStr := fmt.Sprintf("%.0f bpm", status.SmoothedBPM)

	switch alertType {
	case alertUrgentLow:
		title = "⚠️ URGENT LOW HEART RATE"
		message = fmt.Sprintf("Heart rate is critically low: %s %s", valueStr, status.TrendArrow())
	case alertLow:
		title = "⬇️ Heart Rate Below Band"
		message = fmt.Sprintf("Heart rate is under the target band: %s %s", valueStr, status.TrendArrow())
	case alertUrgentHigh:
		title = "⚠️ URGENT HIGH HEART RATE"
		message = fmt.Sprintf("Heart rate is critically high: %s %s", valueStr, status.TrendArrow())
	case alertHigh:
		title = "⬆️ Heart Rate Above Band"
		message = fmt.Sprintf("Heart rate is over the target band: %s %s", valueStr, status.TrendArrow())
	}

	return title, message
}

// sendNotification sends a system notification
func (m *Manager) sendNotification(title, message string) error {
	// Use beeep for cross-platform notifications
	return beeep.Notify(title, message, "")
}

// ClearAlertState clears the alert state for a specific type or all types
func (m *Manager) ClearAlertState(alertType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if alertType == "" {
		m.lastAlertTime = make(map[string]time.Time)
	} else {
		delete(m.lastAlertTime, alertType)
	}
}

// SendTestNotification sends a test notification
func (m *Manager) SendTestNotification() error {
	return beeep.Notify("ZXIS Run", "Test notification - alerts are working!", "")
}
