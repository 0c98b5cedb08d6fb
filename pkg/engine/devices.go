package engine

import (
	"context"
	"strings"

	"github.com/wirelark/fortidash/pkg/fallback"
	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/models"
)

// Vendor equipment families excluded from the endpoint classification; the
// firewall, switches, and APs are topology nodes, not clients.
var vendorEquipmentFamilies = map[string]struct{}{
	"fortigate":   {},
	"fortiap":     {},
	"fortiswitch": {},
}

// Interface-name markers identifying a wireless-side observation.
var wirelessInterfaceMarkers = []string{"wifi", "wlan"}

// GetConnectedDevices returns the classified endpoint view. Like GetTopology
// it never returns an error; failures degrade the snapshot instead.
func (e *Engine) GetConnectedDevices(ctx context.Context) *models.ConnectedDeviceSnapshot {
	if cached, ok := e.snapshots.Get(devicesCacheKey); ok {
		return cached.(*models.ConnectedDeviceSnapshot)
	}

	if !e.client.Configured() {
		return e.devicesFromFallback(fortigate.ErrUnconfigured)
	}

	feeds := e.fetchDeviceFeeds(ctx)

	// Classification is meaningless without the client roster; substitute
	// the whole last-known view instead of serving a half-classified one.
	if feeds.failedFeed(feedUserDevices) {
		return e.devicesFromFallback(feeds.failed[feedUserDevices])
	}

	snapshot := e.assembleDevices(feeds)

	e.snapshots.Set(devicesCacheKey, snapshot)
	e.saveKind(fallback.KindClients, snapshot)

	return snapshot
}

// assembleDevices classifies every observed endpoint into exactly one of
// wired, wireless, or detected-only.
func (e *Engine) assembleDevices(feeds *feedSet) *models.ConnectedDeviceSnapshot {
	snapshot := &models.ConnectedDeviceSnapshot{
		Wired:        []models.Client{},
		Wireless:     []models.Client{},
		DetectedOnly: []models.Client{},
		FetchedAt:    e.nowFn(),
	}

	snapshot.Errors = feeds.collectErrors(deviceFeedOrder)
	snapshot.Degraded = len(snapshot.Errors) > 0

	aps := mapAccessPoints(feeds.aps)

	apByMAC := make(map[string]*models.AccessPoint, len(aps))
	for i := range aps {
		if aps[i].BoardMAC != "" {
			apByMAC[aps[i].BoardMAC] = &aps[i]
		}
	}

	macToSwitch := buildMacToSwitchMap(feeds.identities)
	bindings := buildPortBindings(feeds.detected, macToSwitch)

	bindingByMAC := make(map[string]*models.PortBinding, len(bindings))
	for i := range bindings {
		if _, ok := bindingByMAC[bindings[i].ClientMAC]; !ok {
			bindingByMAC[bindings[i].ClientMAC] = &bindings[i]
		}
	}

	ipByMAC := make(map[string]string, len(feeds.arp))
	for _, entry := range feeds.arp {
		if mac := normalizeMAC(entry.MAC); mac != "" && entry.IP != "" {
			ipByMAC[mac] = entry.IP
		}
	}

	seen := make(map[string]struct{})

	for _, device := range feeds.users {
		mac := normalizeMAC(device.MAC)
		if mac == "" {
			continue
		}

		if _, ok := seen[mac]; ok {
			continue
		}

		if isVendorEquipment(device.HardwareFamily) {
			continue
		}

		seen[mac] = struct{}{}

		client := mapClient(device)

		if isWirelessInterface(device.DetectedInterface) || apByMAC[normalizeMAC(device.MasterMAC)] != nil {
			client.ConnectionType = models.ConnectionWireless

			if ap := apByMAC[normalizeMAC(device.MasterMAC)]; ap != nil {
				client.APName = ap.Name
				if len(ap.SSIDs) > 0 {
					client.SSID = ap.SSIDs[0]
				}
			}

			e.backfillIP(&client, ipByMAC)
			snapshot.Wireless = append(snapshot.Wireless, client)

			continue
		}

		client.ConnectionType = models.ConnectionWired

		if binding := bindingByMAC[mac]; binding != nil {
			client.SwitchID = binding.SwitchID
			client.SwitchPort = binding.PortName
		}

		e.backfillIP(&client, ipByMAC)
		snapshot.Wired = append(snapshot.Wired, client)
	}

	for _, device := range feeds.detected {
		mac := normalizeMAC(device.MAC)
		if mac == "" {
			continue
		}

		if _, ok := seen[mac]; ok {
			continue
		}

		if isVendorEquipment(device.HardwareFamily) {
			continue
		}

		seen[mac] = struct{}{}

		client := mapDetectedClient(device)
		e.backfillIP(&client, ipByMAC)
		snapshot.DetectedOnly = append(snapshot.DetectedOnly, client)
	}

	snapshot.Summarize()

	return snapshot
}

func (e *Engine) backfillIP(client *models.Client, ipByMAC map[string]string) {
	if client.IPAddress == "" {
		client.IPAddress = ipByMAC[client.MAC]
	}
}

func isVendorEquipment(hardwareFamily string) bool {
	_, ok := vendorEquipmentFamilies[strings.ToLower(hardwareFamily)]
	return ok
}

func isWirelessInterface(name string) bool {
	name = strings.ToLower(name)

	for _, marker := range wirelessInterfaceMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}

	return false
}

// devicesFromFallback serves the last persisted classified view, degraded.
func (e *Engine) devicesFromFallback(cause error) *models.ConnectedDeviceSnapshot {
	snapshot := &models.ConnectedDeviceSnapshot{
		Wired:        []models.Client{},
		Wireless:     []models.Client{},
		DetectedOnly: []models.Client{},
	}

	ok, _ := e.store.LoadInto(fallback.KindClients, snapshot)
	if !ok {
		snapshot.FetchedAt = e.nowFn()
	}

	snapshot.Degraded = true
	snapshot.Errors = []string{cause.Error()}
	snapshot.Summarize()

	e.logger.Warn().Err(cause).Msg("Serving connected devices from fallback data")

	return snapshot
}
