// Package app wires the detection pipeline, the controller and the outward
// surfaces into one cooperative loop.
package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/badge"
	"github.com/ZXIS-dev/ZXIS-Run/internal/control"
	"github.com/ZXIS-dev/ZXIS-Run/internal/ecg"
	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
	"github.com/ZXIS-dev/ZXIS-Run/internal/notifications"
	"github.com/ZXIS-dev/ZXIS-Run/internal/server"
	"github.com/ZXIS-dev/ZXIS-Run/internal/session"
	"github.com/ZXIS-dev/ZXIS-Run/internal/stream"
)

// Service owns all mutable core state. One goroutine runs the tick loop;
// everything the loop touches (filter state, RR history, controller state)
// stays on that goroutine. Only the status snapshot crosses to readers,
// behind a small lock. Nothing in the loop blocks: mode input arrives over a
// channel and every outward surface either buffers or drops.
type Service struct {
	settings   *models.Settings
	pipeline   *ecg.Pipeline
	sampler    *ecg.Sampler
	controller *control.Controller
	notify     *notifications.Manager
	badges     *badge.Generator

	publisher *stream.Publisher // optional
	hub       *server.Hub       // optional
	recorder  *session.Recorder // optional

	waveBuf      []float32
	lastReport   time.Time
	prevSmoothed float64

	mu         sync.RWMutex
	lastStatus *models.HeartRateStatus

	modeCh   chan string
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New assembles a service around a sample source and a motor driver.
func New(settings *models.Settings, source ecg.Source, driver motor.Driver) *Service {
	return &Service{
		settings:   settings,
		pipeline:   ecg.NewPipeline(settings),
		sampler:    ecg.NewSampler(source, settings.SampleRateHz),
		controller: control.New(settings, driver),
		notify:     notifications.NewManager(settings),
		badges:     badge.NewGenerator(),
		waveBuf:    make([]float32, 0, settings.WaveBatch),
		modeCh:     make(chan string, 4),
		stopCh:     make(chan struct{}),
	}
}

// SetPublisher attaches a NATS publisher. Must be called before Run.
func (s *Service) SetPublisher(p *stream.Publisher) { s.publisher = p }

// SetHub attaches a websocket hub. Must be called before Run.
func (s *Service) SetHub(h *server.Hub) { s.hub = h }

// SetRecorder attaches a session recorder. Must be called before Run.
func (s *Service) SetRecorder(r *session.Recorder) { s.recorder = r }

// Badges returns the badge generator for the dashboard.
func (s *Service) Badges() *badge.Generator { return s.badges }

// Status returns a copy of the latest snapshot, or nil before the first
// report. Implements server.StatusSource.
func (s *Service) Status() *models.HeartRateStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastStatus == nil {
		return nil
	}
	st := *s.lastStatus
	return &st
}

// Run executes the cooperative loop until Stop is called. The ticker fires
// at the sample period; the sampler's catch-up bookkeeping absorbs ticks the
// runtime delivers late.
func (s *Service) Run() {
	ticker := time.NewTicker(s.sampler.Period())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case line := <-s.modeCh:
			s.applyModeToken(line)
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// Stop terminates the loop. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// ReadModesFrom feeds operator lines into the loop until r is exhausted.
// Run it on its own goroutine; the scan blocks there, never in the loop.
func (s *Service) ReadModesFrom(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case s.modeCh <- scanner.Text():
		case <-s.stopCh:
			return
		}
	}
}

// tick is one pass of the loop: service the sampler, step the controller,
// and emit the periodic report. Split out from Run for tests.
func (s *Service) tick(now time.Time) {
	s.sampler.Poll(now, func(raw int, ts time.Time) {
		envelope, _ := s.pipeline.Process(raw, ts)
		s.waveBuf = append(s.waveBuf, float32(envelope))
		if len(s.waveBuf) >= s.settings.WaveBatch {
			s.flushWave(ts)
		}
	})

	// The controller smooths on every invocation and rate-limits command
	// recomputation internally. Before the first estimate there is nothing
	// to feed it ("no estimate" is a state, not an error).
	if s.pipeline.HasEstimate() {
		s.controller.Step(s.pipeline.BPM(), now)
	}

	interval := time.Duration(s.settings.ReportSeconds) * time.Second
	if s.lastReport.IsZero() || now.Sub(s.lastReport) >= interval {
		s.lastReport = now
		s.report(now)
	}
}

func (s *Service) flushWave(ts time.Time) {
	frame := models.WaveFrame{Samples: s.waveBuf, Time: ts}
	if s.hub != nil {
		s.hub.BroadcastWave(stream.EncodeWave(frame.Samples))
	}
	if err := s.publisher.PublishWave(frame); err != nil {
		fmt.Printf("[WARN] wave publish failed: %v\n", err)
	}
	s.waveBuf = make([]float32, 0, s.settings.WaveBatch)
}

// report assembles the status snapshot and pushes it to every surface.
func (s *Service) report(now time.Time) {
	status := s.buildStatus(now)

	s.mu.Lock()
	s.lastStatus = status
	s.mu.Unlock()

	fmt.Printf("[%s] BPM=%d (EMA=%.1f) | CMD=%d | band=%s\n",
		strings.ToUpper(status.Mode.String()), status.BPM, status.SmoothedBPM,
		status.Command, bandLabel(status))

	if status.SmoothedBPM > 0 {
		s.badges.AddHistory(status.SmoothedBPM)
	}
	if err := s.notify.CheckAndNotify(status); err != nil {
		fmt.Printf("[WARN] notification failed: %v\n", err)
	}
	if s.hub != nil {
		s.hub.BroadcastStatus(status)
	}
	if err := s.publisher.PublishStatus(status); err != nil {
		fmt.Printf("[WARN] status publish failed: %v\n", err)
	}
	if s.recorder != nil {
		s.recorder.Add(status)
	}
}

func (s *Service) buildStatus(now time.Time) *models.HeartRateStatus {
	mode := s.controller.Mode()
	band, active := mode.Band(s.settings)
	smoothed := s.controller.SmoothedBPM()

	status := &models.HeartRateStatus{
		BPM:         s.pipeline.BPM(),
		SmoothedBPM: smoothed,
		Command:     s.controller.Command(),
		Mode:        mode,
		Direction:   direction(s.prevSmoothed, smoothed),
		Time:        now,
		NoEstimate:  !s.pipeline.HasEstimate(),
	}
	if active {
		status.TargetLow = band.Low
		status.TargetHigh = band.High
	}
	if status.NoEstimate {
		status.Status = "normal"
	} else {
		status.Status = s.settings.GetHeartRateStatus(smoothed, band, active)
	}
	if last := s.pipeline.LastPeak(); !last.IsZero() {
		status.StaleSeconds = int(now.Sub(last).Seconds())
	}

	s.prevSmoothed = smoothed
	return status
}

// applyModeToken handles one operator line. Unknown non-empty tokens revert
// to Idle with a visible error; empty lines change nothing.
func (s *Service) applyModeToken(line string) {
	token := strings.TrimSpace(line)
	if token == "" {
		return
	}

	mode, err := models.ParseMode(token)
	if err != nil {
		fmt.Printf("[ERROR] %v, reverting to idle\n", err)
		s.controller.SetMode(models.ModeIdle)
		return
	}
	s.controller.SetMode(mode)
	fmt.Printf("mode changed: %s\n", mode)
}

func direction(prev, cur float64) string {
	const margin = 0.5
	switch {
	case prev == 0 || cur == 0:
		return "Flat"
	case cur-prev > margin:
		return "Up"
	case prev-cur > margin:
		return "Down"
	default:
		return "Flat"
	}
}

func bandLabel(status *models.HeartRateStatus) string {
	if status.TargetLow == 0 && status.TargetHigh == 0 {
		return "none"
	}
	return fmt.Sprintf("%.0f-%.0f", status.TargetLow, status.TargetHigh)
}
