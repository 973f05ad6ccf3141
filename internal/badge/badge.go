// Package badge renders the live heart-rate status into a small PNG served
// by the dashboard (and usable as a pinned widget anywhere that can show an
// image URL).
package badge

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width   = 96
	height  = 96
	radius  = 18
	history = 32 // recent BPM values drawn as a sparkline strip
)

// Generator renders status badges and keeps a short BPM history for the
// sparkline strip along the bottom edge.
type Generator struct {
	mu     sync.Mutex
	recent []float64
}

// NewGenerator creates a badge generator.
func NewGenerator() *Generator {
	return &Generator{recent: make([]float64, 0, history)}
}

// AddHistory appends a BPM value to the sparkline history.
func (g *Generator) AddHistory(bpm float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recent = append(g.recent, bpm)
	if len(g.recent) > history {
		g.recent = g.recent[1:]
	}
}

// ClearHistory drops the sparkline history.
func (g *Generator) ClearHistory() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recent = g.recent[:0]
}

// Render draws the badge for a status snapshot and returns it PNG-encoded.
// Returns nil if encoding fails; callers treat that as "no badge".
func (g *Generator) Render(status *models.HeartRateStatus) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()

	dc := gg.NewContext(width, height)
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	r, gr, b := parseHexColor(statusColor(status))
	dc.SetRGB255(int(r), int(gr), int(b))
	dc.DrawRoundedRectangle(0, 0, float64(width), float64(height), radius)
	dc.Fill()

	// Black or white text depending on background brightness
	brightness := (int(r)*299 + int(gr)*587 + int(b)*114) / 1000
	if brightness > 128 {
		dc.SetColor(color.Black)
	} else {
		dc.SetColor(color.White)
	}

	text := "--"
	if status != nil && status.BPM > 0 {
		text = fmt.Sprintf("%d", status.BPM)
	}
	if err := loadFont(dc, 38); err == nil {
		dc.DrawStringAnchored(text, width/2, height/2-16, 0.5, 0.5)
	}
	if err := loadFont(dc, 13); err == nil && status != nil {
		label := fmt.Sprintf("%s %s", status.Mode, status.TrendArrow())
		dc.DrawStringAnchored(label, width/2, height/2+10, 0.5, 0.5)
	}

	g.drawSparkline(dc)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil
	}
	return buf.Bytes()
}

// drawSparkline plots the recent BPM history along the bottom strip.
func (g *Generator) drawSparkline(dc *gg.Context) {
	if len(g.recent) < 2 {
		return
	}

	minVal, maxVal := g.recent[0], g.recent[0]
	for _, v := range g.recent {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	span := maxVal - minVal
	if span == 0 {
		span = 1
	}

	const top, bottom = float64(height) - 26, float64(height) - 8
	step := float64(width-16) / float64(len(g.recent)-1)

	dc.SetLineWidth(1.5)
	for i, v := range g.recent {
		x := 8 + float64(i)*step
		y := bottom - (v-minVal)/span*(bottom-top)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
}

func loadFont(dc *gg.Context, size float64) error {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	return nil
}

// statusColor maps the status classification to the badge background.
func statusColor(status *models.HeartRateStatus) string {
	if status == nil || status.NoEstimate {
		return "#808080" // Gray for unknown
	}

	switch status.Status {
	case "urgent_low", "urgent_high":
		return "#ef4444" // Red
	case "low":
		return "#f97316" // Orange
	case "high":
		return "#facc15" // Yellow
	default:
		return "#4ade80" // Green
	}
}

// parseHexColor parses a hex color string to RGB values
func parseHexColor(hex string) (r, g, b byte) {
	if len(hex) == 7 && hex[0] == '#' {
		_, _ = fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	}
	return
}
