// Package server exposes the live session over HTTP: a websocket fan-out of
// the waveform and status stream, a JSON status snapshot and the PNG badge.
// It only ever reads snapshots; nothing here can feed back into the core
// loop.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/badge"
	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusSource yields the latest status snapshot, or nil before the first.
type StatusSource interface {
	Status() *models.HeartRateStatus
}

// Hub tracks connected websocket clients and broadcasts to them. Writes that
// fail or stall past the deadline drop the client.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// BroadcastWave sends an envelope batch to every client as a binary message.
func (h *Hub) BroadcastWave(b []byte) {
	h.broadcast(websocket.BinaryMessage, b)
}

// BroadcastStatus sends a status snapshot to every client as JSON text.
func (h *Hub) BroadcastStatus(status *models.HeartRateStatus) {
	b, err := json.Marshal(status)
	if err != nil {
		return
	}
	h.broadcast(websocket.TextMessage, b)
}

func (h *Hub) broadcast(messageType int, b []byte) {
	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(messageType, b); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
}

// Server is the HTTP dashboard.
type Server struct {
	hub    *Hub
	source StatusSource
	badges *badge.Generator
}

// New creates a server reading snapshots from source.
func New(source StatusSource, badges *badge.Generator) *Server {
	return &Server{hub: NewHub(), source: source, badges: badges}
}

// Hub returns the websocket hub for broadcasting.
func (s *Server) Hub() *Hub { return s.hub }

// Handler builds the route table. staticDir, when non-empty, is served at /.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/badge.png", s.handleBadge)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.add(c)

	// Reader loop only to detect disconnects; clients never send data.
	go func() {
		defer func() {
			s.hub.remove(c)
			_ = c.Close()
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.source.Status()
	if status == nil {
		http.Error(w, "no status yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	img := s.badges.Render(s.source.Status())
	if img == nil {
		http.Error(w, "badge unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}
