// Package stream publishes the conditioned waveform and status snapshots
// over NATS so remote consumers (dashboards, recorders) can tap the live
// session without touching the control loop.
package stream

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/nats-io/nats.go"
)

// Wire subjects.
const (
	SubjectWave   = "hr.wave"
	SubjectStatus = "hr.status"
)

// Connect dials the NATS server with the reconnect policy used for
// long-running sessions.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("zxis-run"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// Publisher fans the session out to NATS. A nil Publisher is valid and
// discards everything, so callers never need to branch on configuration.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher wraps an established connection.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// PublishWave sends one envelope batch as binary little-endian float32.
func (p *Publisher) PublishWave(frame models.WaveFrame) error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Publish(SubjectWave, EncodeWave(frame.Samples))
}

// PublishStatus sends a status snapshot as JSON.
func (p *Publisher) PublishStatus(status *models.HeartRateStatus) error {
	if p == nil || p.nc == nil {
		return nil
	}
	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.nc.Publish(SubjectStatus, b)
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		_ = p.nc.Drain()
	}
}

// EncodeWave packs samples as little-endian float32.
func EncodeWave(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// DecodeWave unpacks a little-endian float32 payload.
func DecodeWave(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
