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

package models

import "time"

// ErrorResponse is the JSON body returned for API errors.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ServiceStatus reports the dashboard's own health and upstream reachability.
type ServiceStatus struct {
	Service       string    `json:"service"`
	Version       string    `json:"version"`
	Configured    bool      `json:"configured"`
	ApplianceHost string    `json:"appliance_host"`
	Uptime        string    `json:"uptime"`
	StartedAt     time.Time `json:"started_at"`
}

// StreamMessage is a message pushed over the WebSocket stream.
type StreamMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
