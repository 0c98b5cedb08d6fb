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
	"time"

	"github.com/wirelark/fortidash/pkg/models"
)

// getTopology returns the fused topology snapshot. The engine never fails the
// read path, so this always answers 200; degraded views carry their feed
// errors inline.
func (s *Server) getTopology(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.GetTopology(r.Context())
	s.encodeJSONResponse(w, snapshot)
}

// refreshTopology drops the fused snapshot caches and rebuilds both views,
// pushing the fresh topology to stream subscribers.
func (s *Server) refreshTopology(w http.ResponseWriter, r *http.Request) {
	s.engine.InvalidateTopologyCache()

	snapshot := s.engine.GetTopology(r.Context())
	devices := s.engine.GetConnectedDevices(r.Context())

	s.Broadcast(streamTypeTopology, snapshot)
	s.Broadcast(streamTypeDevices, devices)

	s.encodeJSONResponse(w, snapshot)
}

func (s *Server) getConnectedDevices(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.GetConnectedDevices(r.Context())
	s.encodeJSONResponse(w, snapshot)
}

func (s *Server) getSwitches(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.GetTopology(r.Context())
	s.encodeJSONResponse(w, snapshot.Switches)
}

func (s *Server) getAccessPoints(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.GetTopology(r.Context())
	s.encodeJSONResponse(w, snapshot.AccessPoints)
}

func (s *Server) getHistory(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSONResponse(w, s.engine.History())
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	status := models.ServiceStatus{
		Service:       "fortidash",
		Version:       s.version,
		Configured:    s.engine.Configured(),
		ApplianceHost: s.engine.ApplianceHost(),
		Uptime:        time.Since(s.startedAt).Round(time.Second).String(),
		StartedAt:     s.startedAt,
	}

	s.encodeJSONResponse(w, status)
}
