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

import "encoding/json"

// monitorEnvelope is the common wrapper around every FortiOS monitor response.
type monitorEnvelope struct {
	Results    json.RawMessage `json:"results"`
	Status     string          `json:"status"`
	HTTPStatus int             `json:"http_status"`
	Version    string          `json:"version"`
	Serial     string          `json:"serial"`
}

// errorEnvelope is decoded best-effort from non-2xx response bodies.
type errorEnvelope struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// SystemStatus is the appliance identity from /monitor/system/status.
type SystemStatus struct {
	Hostname    string `json:"hostname"`
	Model       string `json:"model"`
	ModelName   string `json:"model_name"`
	ModelNumber string `json:"model_number"`
	Serial      string `json:"serial"`
	Version     string `json:"version"`
}

// SwitchPortStats is one port entry from the managed-switch port-stats feed.
// FortiOS reports counters with dashed keys.
type SwitchPortStats struct {
	RxPackets  uint64  `json:"rx-packets"`
	TxPackets  uint64  `json:"tx-packets"`
	RxBytes    uint64  `json:"rx-bytes"`
	TxBytes    uint64  `json:"tx-bytes"`
	PoECapable bool    `json:"poe_capable"`
	PoEPower   float64 `json:"poe_power"`
	PoEMax     float64 `json:"poe_max"`
}

// ManagedSwitch is one switch from
// /monitor/switch-controller/managed-switch/port-stats.
type ManagedSwitch struct {
	Name      string                     `json:"name"`
	SwitchID  string                     `json:"switch-id"`
	Serial    string                     `json:"serial"`
	Model     string                     `json:"model"`
	OSVersion string                     `json:"os_version"`
	IPAddress string                     `json:"ip_address"`
	Status    string                     `json:"status"`
	Ports     map[string]SwitchPortStats `json:"ports"`
}

// SwitchIdentity is one switch from
// /monitor/switch-controller/managed-switch/status, carrying the burned-in
// MAC that detected devices report as their master MAC.
type SwitchIdentity struct {
	SwitchID  string `json:"switch-id"`
	Name      string `json:"name"`
	Serial    string `json:"serial"`
	BurnInMAC string `json:"burn_in_mac"`
	Status    string `json:"status"`
}

// APSSIDGroup is the nested SSID list shape FortiOS uses on managed APs.
type APSSIDGroup struct {
	List []string `json:"list"`
}

// ManagedAP is one access point from /monitor/wifi/managed_ap.
type ManagedAP struct {
	Name                string        `json:"name"`
	WTPID               string        `json:"wtp_id"`
	Serial              string        `json:"serial"`
	OSVersion           string        `json:"os_version"`
	Status              string        `json:"status"`
	State               string        `json:"state"`
	LocalIPv4Addr       string        `json:"local_ipv4_addr"`
	BoardMAC            string        `json:"board_mac"`
	Clients             int           `json:"clients"`
	SensorsTemperatures []int         `json:"sensors_temperatures"`
	SSID                []APSSIDGroup `json:"ssid"`
}

// ArpEntry is one row of /monitor/system/arp.
type ArpEntry struct {
	IP        string `json:"ip"`
	MAC       string `json:"mac"`
	Interface string `json:"interface"`
	Age       int    `json:"age"`
}

// DetectedDevice is one row of /monitor/user/detected-device/query: a
// MAC-to-interface observation behind a managed switch or AP.
type DetectedDevice struct {
	MAC               string `json:"mac"`
	IPv4Address       string `json:"ipv4_address"`
	Hostname          string `json:"hostname"`
	HardwareVendor    string `json:"hardware_vendor"`
	HardwareType      string `json:"hardware_type"`
	HardwareFamily    string `json:"hardware_family"`
	DetectedInterface string `json:"detected_interface"`
	MasterMAC         string `json:"master_mac"`
	IsOnline          bool   `json:"is_online"`
	LastSeen          int64  `json:"last_seen"`
}

// UserDevice is one row of /monitor/user/device/query: the identified client
// roster, including vendor equipment that callers must filter out.
type UserDevice struct {
	MAC               string `json:"mac"`
	IPv4Address       string `json:"ipv4_address"`
	Hostname          string `json:"hostname"`
	HardwareVendor    string `json:"hardware_vendor"`
	HardwareType      string `json:"hardware_type"`
	HardwareFamily    string `json:"hardware_family"`
	OSName            string `json:"os_name"`
	OSVersion         string `json:"os_version"`
	DetectedInterface string `json:"detected_interface"`
	MasterMAC         string `json:"master_mac"`
	HostSrc           string `json:"host_src"`
	IsOnline          bool   `json:"is_online"`
	LastSeen          int64  `json:"last_seen"`
}
