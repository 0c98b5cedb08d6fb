/*
 * Copyright 2025 Wirelark Labs
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

// TopologyTotals aggregates client counts across the whole topology.
type TopologyTotals struct {
	WiredClients    int `json:"wired_clients"`
	WirelessClients int `json:"wireless_clients"`
}

// TopologySnapshot is one fused view of the network, built from a single
// fan-out cycle. Snapshots are immutable once assembled; a newer build
// supersedes the previous one in the cache.
type TopologySnapshot struct {
	Firewall     *Firewall      `json:"firewall"`
	Switches     []Switch       `json:"switches"`
	AccessPoints []AccessPoint  `json:"access_points"`
	Totals       TopologyTotals `json:"totals"`
	FetchedAt    time.Time      `json:"fetched_at"`
	Degraded     bool           `json:"degraded"`
	Errors       []string       `json:"errors,omitempty"`
}

// DeviceSummary counts the classified endpoint lists. It is always derived
// from the lists so the counts cannot drift from them.
type DeviceSummary struct {
	Total        int `json:"total"`
	Wired        int `json:"wired"`
	Wireless     int `json:"wireless"`
	DetectedOnly int `json:"detected"`
}

// ConnectedDeviceSnapshot is the classified endpoint view. A MAC appears in
// exactly one of Wired, Wireless, or DetectedOnly.
type ConnectedDeviceSnapshot struct {
	Wired        []Client      `json:"wired"`
	Wireless     []Client      `json:"wireless"`
	DetectedOnly []Client      `json:"detected"`
	Summary      DeviceSummary `json:"summary"`
	FetchedAt    time.Time     `json:"fetched_at"`
	Degraded     bool          `json:"degraded"`
	Errors       []string      `json:"errors,omitempty"`
}

// Summarize recomputes Summary from the classified lists.
func (s *ConnectedDeviceSnapshot) Summarize() {
	s.Summary = DeviceSummary{
		Wired:        len(s.Wired),
		Wireless:     len(s.Wireless),
		DetectedOnly: len(s.DetectedOnly),
		Total:        len(s.Wired) + len(s.Wireless) + len(s.DetectedOnly),
	}
}

// SeriesPoint is one sample of the client totals, persisted to the fallback
// store so a restart can still chart recent history.
type SeriesPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	WiredClients    int       `json:"wired_clients"`
	WirelessClients int       `json:"wireless_clients"`
}
