/*
 * Copyright 2025 Wirelark Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/models"
)

const (
	streamTypeTopology = "topology"
	streamTypeDevices  = "connected_devices"
	streamTypePing     = "ping"

	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// streamHub tracks open WebSocket connections and fans broadcasts out to
// them. Writes to a single connection are serialized by the hub mutex.
type streamHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	logger logger.Logger
}

func newStreamHub(log logger.Logger) *streamHub {
	return &streamHub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: log,
	}
}

func (h *streamHub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.conns[conn] = struct{}{}

	return true
}

func (h *streamHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, conn)
}

// broadcast sends msg to every connection, dropping the ones that fail.
func (h *streamHub) broadcast(msg models.StreamMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			h.drop(conn)
			continue
		}

		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug().Err(err).Msg("Dropping stream client after write failure")
			h.drop(conn)
		}
	}
}

// send writes msg to a single connection, dropping it on failure.
func (h *streamHub) send(conn *websocket.Conn, msg models.StreamMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; !ok {
		return
	}

	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		h.drop(conn)
		return
	}

	if err := conn.WriteJSON(msg); err != nil {
		h.drop(conn)
	}
}

// drop closes and removes a connection; callers hold the hub mutex.
func (h *streamHub) drop(conn *websocket.Conn) {
	_ = conn.Close()
	delete(h.conns, conn)
}

func (h *streamHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for conn := range h.conns {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	}

	h.conns = make(map[*websocket.Conn]struct{})
}

// handleStream upgrades the request to a WebSocket and pushes snapshot
// updates until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.checkStreamOrigin(r)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	if !s.hub.register(conn) {
		_ = conn.Close()
		return
	}

	s.logger.Info().
		Str("remote_addr", r.RemoteAddr).
		Msg("Stream client connected")

	// Send the current views immediately so a fresh client does not wait a
	// full refresh interval for its first frame.
	snapshot := s.engine.GetTopology(r.Context())
	devices := s.engine.GetConnectedDevices(r.Context())

	s.hub.send(conn, models.StreamMessage{Type: streamTypeTopology, Data: snapshot, Timestamp: time.Now()})
	s.hub.send(conn, models.StreamMessage{Type: streamTypeDevices, Data: devices, Timestamp: time.Now()})

	go s.pingLoop(conn)

	// Drain the connection so close frames and control messages are
	// processed. The read failing means the client went away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.unregister(conn)
	_ = conn.Close()

	s.logger.Info().
		Str("remote_addr", r.RemoteAddr).
		Msg("Stream client disconnected")
}

func (s *Server) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.hub.mu.Lock()
		_, ok := s.hub.conns[conn]
		s.hub.mu.Unlock()

		if !ok {
			return
		}

		deadline := time.Now().Add(streamWriteTimeout)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
	}
}

// checkStreamOrigin mirrors the CORS policy for WebSocket upgrades: an empty
// origin list allows everything.
func (s *Server) checkStreamOrigin(r *http.Request) bool {
	if len(s.corsOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, o := range s.corsOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}

	return false
}
