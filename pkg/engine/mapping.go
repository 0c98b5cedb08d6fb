package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/models"
)

// All MAC comparisons in the engine go through normalizeMAC, so case
// differences between feeds can never break a join.
func normalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// modelFromOSVersion extracts the hardware model from a firmware string such
// as "FAP431F-v7.4.1-build1234".
func modelFromOSVersion(osVersion, defaultModel string) string {
	if osVersion == "" {
		return defaultModel
	}

	if idx := strings.Index(osVersion, "-"); idx > 0 {
		return osVersion[:idx]
	}

	return osVersion
}

func statusFromAPState(status, state string) models.DeviceStatus {
	if status == "connected" || state == "connected" {
		return models.StatusUp
	}

	if status == "" && state == "" {
		return models.StatusUnknown
	}

	return models.StatusDown
}

// mapFirewall turns the system-status feed into the firewall record. Every
// optional upstream field gets its default here, not in the correlation
// logic.
func mapFirewall(status *fortigate.SystemStatus, host string) *models.Firewall {
	model := status.ModelName
	if model == "" {
		model = status.Model
	}

	if model == "" {
		model = "FortiGate"
	}

	hostname := status.Hostname
	if hostname == "" {
		hostname = "FortiGate"
	}

	id := status.Serial
	if id == "" {
		id = hostname
	}

	return &models.Firewall{
		ID:        id,
		Hostname:  hostname,
		Model:     model,
		Serial:    status.Serial,
		Version:   status.Version,
		IPAddress: host,
		Status:    models.StatusUp,
	}
}

// mapSwitch transforms one port-stats entry. Ports are sorted by natural
// port-name order so snapshots are deterministic.
func mapSwitch(raw fortigate.ManagedSwitch) models.Switch {
	ports := make([]models.SwitchPort, 0, len(raw.Ports))

	portsUp := 0

	var poeConsumption, poeBudget float64

	for name, stats := range raw.Ports {
		if stats.RxPackets > 0 || stats.TxPackets > 0 {
			portsUp++
		}

		poeConsumption += stats.PoEPower
		poeBudget += stats.PoEMax

		ports = append(ports, models.SwitchPort{
			Name:          name,
			RxPackets:     stats.RxPackets,
			TxPackets:     stats.TxPackets,
			RxBytes:       stats.RxBytes,
			TxBytes:       stats.TxBytes,
			PoECapable:    stats.PoECapable,
			PoEPowerWatts: stats.PoEPower,
			PoEMaxWatts:   stats.PoEMax,
		})
	}

	sort.Slice(ports, func(i, j int) bool {
		return portLess(ports[i].Name, ports[j].Name)
	})

	name := raw.Name
	if name == "" {
		name = raw.SwitchID
	}

	if name == "" {
		name = "Unknown"
	}

	model := raw.Model
	if model == "" {
		model = "FortiSwitch"
	}

	status := models.StatusDown
	if portsUp > 0 {
		status = models.StatusUp
	}

	poePercentage := 0
	if poeBudget > 0 {
		poePercentage = int(math.Round(poeConsumption / poeBudget * 100))
	}

	id := raw.SwitchID
	if id == "" {
		id = raw.Serial
	}

	return models.Switch{
		ID:                  id,
		Name:                name,
		Serial:              raw.Serial,
		Model:               model,
		IPAddress:           raw.IPAddress,
		FirmwareVersion:     raw.OSVersion,
		Status:              status,
		PortsTotal:          len(ports),
		PortsUp:             portsUp,
		PoEPowerConsumption: math.Round(poeConsumption*10) / 10,
		PoEPowerBudget:      math.Round(poeBudget*10) / 10,
		PoEPowerPercentage:  poePercentage,
		Ports:               ports,
	}
}

func mapSwitches(raw []fortigate.ManagedSwitch) []models.Switch {
	switches := make([]models.Switch, 0, len(raw))
	for _, sw := range raw {
		switches = append(switches, mapSwitch(sw))
	}

	return switches
}

// mapAccessPoint transforms one managed-AP entry.
func mapAccessPoint(raw fortigate.ManagedAP) models.AccessPoint {
	name := raw.Name
	if name == "" {
		name = raw.WTPID
	}

	if name == "" {
		name = "Unknown"
	}

	var ssids []string
	for _, group := range raw.SSID {
		ssids = append(ssids, group.List...)
	}

	temperature := 0
	if len(raw.SensorsTemperatures) > 0 {
		temperature = raw.SensorsTemperatures[0]
	}

	id := raw.Serial
	if id == "" {
		id = name
	}

	return models.AccessPoint{
		ID:               id,
		Name:             name,
		Serial:           raw.Serial,
		Model:            modelFromOSVersion(raw.OSVersion, "FortiAP"),
		IPAddress:        raw.LocalIPv4Addr,
		FirmwareVersion:  raw.OSVersion,
		Status:           statusFromAPState(raw.Status, raw.State),
		BoardMAC:         normalizeMAC(raw.BoardMAC),
		ClientsConnected: raw.Clients,
		SSIDs:            ssids,
		Temperature:      temperature,
	}
}

func mapAccessPoints(raw []fortigate.ManagedAP) []models.AccessPoint {
	aps := make([]models.AccessPoint, 0, len(raw))
	for _, ap := range raw {
		aps = append(aps, mapAccessPoint(ap))
	}

	return aps
}

// buildMacToSwitchMap keys switch IDs by lowercased burned-in MAC. Entries
// missing either side are skipped. The map is built once per fan-out and
// read-only afterwards.
func buildMacToSwitchMap(identities []fortigate.SwitchIdentity) map[string]string {
	m := make(map[string]string, len(identities))

	for _, identity := range identities {
		mac := normalizeMAC(identity.BurnInMAC)
		if mac == "" || identity.SwitchID == "" {
			continue
		}

		m[mac] = identity.SwitchID
	}

	return m
}

// buildPortBindings correlates the detected-device feed with the MAC to
// switch-identity map. Entries whose master MAC has no mapping keep an empty
// switch ID; they still match ports by name alone, which is unambiguous in
// single-switch deployments.
func buildPortBindings(detected []fortigate.DetectedDevice, macToSwitch map[string]string) []models.PortBinding {
	bindings := make([]models.PortBinding, 0, len(detected))

	for _, device := range detected {
		mac := normalizeMAC(device.MAC)
		if mac == "" || device.DetectedInterface == "" {
			continue
		}

		bindings = append(bindings, models.PortBinding{
			ClientMAC:  mac,
			SwitchID:   macToSwitch[normalizeMAC(device.MasterMAC)],
			PortName:   device.DetectedInterface,
			SourceIP:   device.IPv4Address,
			Hostname:   device.Hostname,
			IsOnline:   device.IsOnline,
			ObservedAt: device.LastSeen,
		})
	}

	return bindings
}

// enrichSwitchPorts counts distinct client MACs per port and sums them into
// the switch's wired-client total. A port with no binding but nonzero packet
// counters is assumed to host exactly one unidentified client; this is a
// documented heuristic, not a guarantee.
func enrichSwitchPorts(sw *models.Switch, bindings []models.PortBinding) {
	total := 0

	for i := range sw.Ports {
		port := &sw.Ports[i]

		seen := make(map[string]struct{})

		var macs []string

		for _, binding := range bindings {
			if binding.PortName != port.Name {
				continue
			}

			if binding.SwitchID != "" && binding.SwitchID != sw.ID {
				continue
			}

			if _, ok := seen[binding.ClientMAC]; ok {
				continue
			}

			seen[binding.ClientMAC] = struct{}{}
			macs = append(macs, binding.ClientMAC)
		}

		sort.Strings(macs)
		port.DetectedDevices = macs
		port.WiredClients = len(macs)

		if port.WiredClients == 0 && (port.RxPackets > 0 || port.TxPackets > 0) {
			port.WiredClients = 1
		}

		total += port.WiredClients
	}

	sw.WiredClientTotal = total
}

// mapClient transforms one user-device entry into a client record.
func mapClient(device fortigate.UserDevice) models.Client {
	hostname := device.Hostname
	if hostname == "" {
		hostname = "Unknown"
	}

	return models.Client{
		MAC:            normalizeMAC(device.MAC),
		Hostname:       hostname,
		IPAddress:      device.IPv4Address,
		Vendor:         device.HardwareVendor,
		HardwareFamily: device.HardwareFamily,
		OSName:         device.OSName,
		OSVersion:      device.OSVersion,
		Interface:      device.DetectedInterface,
		IsOnline:       device.IsOnline,
		LastSeen:       device.LastSeen,
	}
}

// mapDetectedClient transforms a detected-device entry that never appeared in
// the client roster.
func mapDetectedClient(device fortigate.DetectedDevice) models.Client {
	hostname := device.Hostname
	if hostname == "" {
		hostname = "Unknown"
	}

	return models.Client{
		MAC:            normalizeMAC(device.MAC),
		Hostname:       hostname,
		IPAddress:      device.IPv4Address,
		Vendor:         device.HardwareVendor,
		HardwareFamily: device.HardwareFamily,
		ConnectionType: models.ConnectionDetected,
		Interface:      device.DetectedInterface,
		IsOnline:       device.IsOnline,
		LastSeen:       device.LastSeen,
	}
}

// portLess orders "port2" before "port10" by comparing the numeric suffix.
func portLess(a, b string) bool {
	prefixA, numA, okA := splitPortName(a)
	prefixB, numB, okB := splitPortName(b)

	if okA && okB && prefixA == prefixB {
		return numA < numB
	}

	return a < b
}

func splitPortName(name string) (prefix string, num int, ok bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}

	if i == len(name) {
		return name, 0, false
	}

	num, err := strconv.Atoi(name[i:])
	if err != nil {
		return name, 0, false
	}

	return name[:i], num, true
}
