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

// Package models defines the fused device and snapshot types served to the UI.
package models

// DeviceStatus is the normalized operational state of a managed device.
type DeviceStatus string

const (
	StatusUp      DeviceStatus = "up"
	StatusDown    DeviceStatus = "down"
	StatusWarning DeviceStatus = "warning"
	StatusUnknown DeviceStatus = "unknown"
)

// Firewall describes the FortiGate appliance itself.
type Firewall struct {
	ID        string       `json:"id"`
	Hostname  string       `json:"hostname"`
	Model     string       `json:"model"`
	Serial    string       `json:"serial"`
	Version   string       `json:"version"`
	IPAddress string       `json:"ip_address"`
	Status    DeviceStatus `json:"status"`
}

// SwitchPort carries per-port traffic counters, PoE state, and the wired
// clients correlated onto the port.
type SwitchPort struct {
	Name            string   `json:"name"`
	RxPackets       uint64   `json:"rx_packets"`
	TxPackets       uint64   `json:"tx_packets"`
	RxBytes         uint64   `json:"rx_bytes"`
	TxBytes         uint64   `json:"tx_bytes"`
	PoECapable      bool     `json:"poe_capable"`
	PoEPowerWatts   float64  `json:"poe_power_watts"`
	PoEMaxWatts     float64  `json:"poe_max_watts"`
	WiredClients    int      `json:"wired_clients"`
	DetectedDevices []string `json:"detected_devices"`
}

// Switch describes a managed FortiSwitch enriched with correlated client data.
type Switch struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Serial              string       `json:"serial"`
	Model               string       `json:"model"`
	IPAddress           string       `json:"ip_address"`
	FirmwareVersion     string       `json:"firmware_version"`
	Status              DeviceStatus `json:"status"`
	PortsTotal          int          `json:"ports_total"`
	PortsUp             int          `json:"ports_up"`
	PoEPowerConsumption float64      `json:"poe_power_consumption"`
	PoEPowerBudget      float64      `json:"poe_power_budget"`
	PoEPowerPercentage  int          `json:"poe_power_percentage"`
	WiredClientTotal    int          `json:"wired_client_total"`
	Ports               []SwitchPort `json:"ports"`
}

// AccessPoint describes a managed FortiAP.
type AccessPoint struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Serial           string       `json:"serial"`
	Model            string       `json:"model"`
	IPAddress        string       `json:"ip_address"`
	FirmwareVersion  string       `json:"firmware_version"`
	Status           DeviceStatus `json:"status"`
	BoardMAC         string       `json:"board_mac"`
	ClientsConnected int          `json:"clients_connected"`
	SSIDs            []string     `json:"ssids"`
	Temperature      int          `json:"temperature"`
}

// ConnectionType classifies how an endpoint reaches the network.
type ConnectionType string

const (
	ConnectionWired    ConnectionType = "wired"
	ConnectionWireless ConnectionType = "wireless"
	ConnectionDetected ConnectionType = "detected"
)

// Client is a genuine endpoint (not vendor equipment) observed on the network.
type Client struct {
	MAC            string         `json:"mac"`
	Hostname       string         `json:"hostname"`
	IPAddress      string         `json:"ip_address"`
	Vendor         string         `json:"vendor"`
	HardwareFamily string         `json:"hardware_family"`
	OSName         string         `json:"os_name"`
	OSVersion      string         `json:"os_version"`
	ConnectionType ConnectionType `json:"connection_type"`
	Interface      string         `json:"interface"`
	IsOnline       bool           `json:"is_online"`
	LastSeen       int64          `json:"last_seen"`

	// Wireless enrichment, populated when the client is behind a managed AP.
	APName string `json:"ap_name,omitempty"`
	SSID   string `json:"ssid,omitempty"`

	// Wired enrichment, populated when a port binding resolved the client.
	SwitchID   string `json:"switch_id,omitempty"`
	SwitchPort string `json:"switch_port,omitempty"`
}

// PortBinding is a derived observation tying a client MAC to a switch port.
// It is produced by correlating the detected-device feed with the MAC to
// switch-identity map and is never authoritative on its own.
type PortBinding struct {
	ClientMAC  string `json:"client_mac"`
	SwitchID   string `json:"switch_id"`
	PortName   string `json:"port_name"`
	SourceIP   string `json:"source_ip"`
	Hostname   string `json:"hostname"`
	IsOnline   bool   `json:"is_online"`
	ObservedAt int64  `json:"observed_at"`
}
