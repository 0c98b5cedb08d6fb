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

package fortigate

import (
	"context"
	"encoding/json"
	"fmt"
)

// Monitor endpoints consumed by the correlation engine. These paths are fixed
// by FortiOS and must not be altered.
const (
	EndpointSystemStatus    = "monitor/system/status"
	EndpointSwitchPortStats = "monitor/switch-controller/managed-switch/port-stats"
	EndpointSwitchStatus    = "monitor/switch-controller/managed-switch/status"
	EndpointManagedAPs      = "monitor/wifi/managed_ap"
	EndpointArpTable        = "monitor/system/arp"
	EndpointDetectedDevices = "monitor/user/detected-device/query"
	EndpointUserDevices     = "monitor/user/device/query"
)

// SystemStatus returns the appliance identity.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	raw, err := c.Get(ctx, EndpointSystemStatus)
	if err != nil {
		return nil, err
	}

	var envelope monitorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode system status envelope: %w", err)
	}

	var status SystemStatus
	if len(envelope.Results) > 0 {
		if err := json.Unmarshal(envelope.Results, &status); err != nil {
			return nil, fmt.Errorf("decode system status: %w", err)
		}
	}

	// FortiOS reports version and serial on the envelope, not in results.
	if status.Version == "" {
		status.Version = envelope.Version
	}

	if status.Serial == "" {
		status.Serial = envelope.Serial
	}

	return &status, nil
}

// SwitchPortStats returns per-switch, per-port traffic and PoE counters.
func (c *Client) SwitchPortStats(ctx context.Context) ([]ManagedSwitch, error) {
	var switches []ManagedSwitch
	if err := c.getResults(ctx, EndpointSwitchPortStats, &switches); err != nil {
		return nil, err
	}

	return switches, nil
}

// SwitchIdentities returns the switch hardware-identity table.
func (c *Client) SwitchIdentities(ctx context.Context) ([]SwitchIdentity, error) {
	var identities []SwitchIdentity
	if err := c.getResults(ctx, EndpointSwitchStatus, &identities); err != nil {
		return nil, err
	}

	return identities, nil
}

// ManagedAPs returns the access-point roster.
func (c *Client) ManagedAPs(ctx context.Context) ([]ManagedAP, error) {
	var aps []ManagedAP
	if err := c.getResults(ctx, EndpointManagedAPs, &aps); err != nil {
		return nil, err
	}

	return aps, nil
}

// ArpTable returns the IP-to-MAC address-resolution table.
func (c *Client) ArpTable(ctx context.Context) ([]ArpEntry, error) {
	var entries []ArpEntry
	if err := c.getResults(ctx, EndpointArpTable, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// DetectedDevices returns the detected-device roster, the primary source for
// wired port bindings.
func (c *Client) DetectedDevices(ctx context.Context) ([]DetectedDevice, error) {
	var devices []DetectedDevice
	if err := c.getResults(ctx, EndpointDetectedDevices, &devices); err != nil {
		return nil, err
	}

	return devices, nil
}

// UserDevices returns the identified client roster.
func (c *Client) UserDevices(ctx context.Context) ([]UserDevice, error) {
	var devices []UserDevice
	if err := c.getResults(ctx, EndpointUserDevices, &devices); err != nil {
		return nil, err
	}

	return devices, nil
}

func (c *Client) getResults(ctx context.Context, endpoint string, dst interface{}) error {
	raw, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}

	var envelope monitorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s envelope: %w", endpoint, err)
	}

	if len(envelope.Results) == 0 {
		return nil
	}

	if err := json.Unmarshal(envelope.Results, dst); err != nil {
		return fmt.Errorf("decode %s results: %w", endpoint, err)
	}

	return nil
}
