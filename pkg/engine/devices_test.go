package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/models"
)

func TestGetConnectedDevicesClassification(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	require.Len(t, snapshot.Wired, 1)
	require.Len(t, snapshot.Wireless, 1)

	wired := snapshot.Wired[0]
	assert.Equal(t, "11:22:33:44:55:66", wired.MAC)
	assert.Equal(t, models.ConnectionWired, wired.ConnectionType)
	assert.Equal(t, "SW1", wired.SwitchID)
	assert.Equal(t, "port3", wired.SwitchPort)

	wireless := snapshot.Wireless[0]
	assert.Equal(t, "66:55:44:33:22:11", wireless.MAC)
	assert.Equal(t, models.ConnectionWireless, wireless.ConnectionType)
	assert.Equal(t, "lobby-ap", wireless.APName)
	assert.Equal(t, "corp", wireless.SSID)

	assert.Equal(t, 2, snapshot.Summary.Total)
	assert.Equal(t, 1, snapshot.Summary.Wired)
	assert.Equal(t, 1, snapshot.Summary.Wireless)
	assert.Equal(t, 0, snapshot.Summary.DetectedOnly)
}

func TestGetConnectedDevicesWirelessByInterfaceMarker(t *testing.T) {
	client := healthyClient()
	client.users = []fortigate.UserDevice{{
		MAC:               "66:55:44:33:22:11",
		Hostname:          "tablet",
		DetectedInterface: "wlan-guest",
		// Master MAC matches nothing; the interface name alone classifies
		// the client as wireless.
		MasterMAC: "00:00:00:00:00:99",
	}}

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	require.Len(t, snapshot.Wireless, 1)
	assert.Empty(t, snapshot.Wireless[0].APName)
	assert.Empty(t, snapshot.Wired)
}

func TestGetConnectedDevicesFiltersVendorEquipment(t *testing.T) {
	client := healthyClient()
	client.users = append(client.users,
		fortigate.UserDevice{MAC: "aa:00:00:00:00:01", HardwareFamily: "FortiSwitch"},
		fortigate.UserDevice{MAC: "aa:00:00:00:00:02", HardwareFamily: "FortiAP"},
		fortigate.UserDevice{MAC: "aa:00:00:00:00:03", HardwareFamily: "FortiGate"},
	)
	client.detected = append(client.detected, fortigate.DetectedDevice{
		MAC:            "aa:00:00:00:00:01",
		HardwareFamily: "FortiSwitch",
	})

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	assert.Equal(t, 2, snapshot.Summary.Total)
}

func TestGetConnectedDevicesDetectedOnly(t *testing.T) {
	client := healthyClient()
	client.detected = append(client.detected, fortigate.DetectedDevice{
		MAC:               "22:33:44:55:66:77",
		Hostname:          "camera",
		DetectedInterface: "port5",
		IsOnline:          true,
	})

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	require.Len(t, snapshot.DetectedOnly, 1)
	only := snapshot.DetectedOnly[0]
	assert.Equal(t, "22:33:44:55:66:77", only.MAC)
	assert.Equal(t, models.ConnectionDetected, only.ConnectionType)

	// The printer appears in the roster, so its detected-device row must
	// not duplicate it.
	assert.Equal(t, 1, snapshot.Summary.DetectedOnly)
	assert.Equal(t, 3, snapshot.Summary.Total)
}

func TestGetConnectedDevicesDeduplicatesRoster(t *testing.T) {
	client := healthyClient()
	client.users = append(client.users, fortigate.UserDevice{
		MAC:      "11:22:33:44:55:66", // duplicate of the printer
		Hostname: "printer-again",
	})

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	assert.Equal(t, 2, snapshot.Summary.Total)
	require.Len(t, snapshot.Wired, 1)
	assert.Equal(t, "printer", snapshot.Wired[0].Hostname)
}

func TestGetConnectedDevicesBackfillsIPFromArp(t *testing.T) {
	client := healthyClient()

	// The phone has no IP in the roster but does appear in ARP.
	client.arp = append(client.arp, fortigate.ArpEntry{
		IP:  "10.0.0.30",
		MAC: "66:55:44:33:22:11",
	})

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	require.Len(t, snapshot.Wireless, 1)
	assert.Equal(t, "10.0.0.30", snapshot.Wireless[0].IPAddress)
}

func TestGetConnectedDevicesDegradedOnSecondaryFeedFailure(t *testing.T) {
	client := healthyClient()
	client.errs = map[string]error{feedArpTable: errors.New("arp down")}

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	// Secondary feeds only reduce enrichment; classification still runs.
	assert.True(t, snapshot.Degraded)
	assert.Contains(t, snapshot.Errors, "arp-table: arp down")
	assert.Equal(t, 2, snapshot.Summary.Total)
}

func TestGetConnectedDevicesRosterFailureServesFallback(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	// A healthy cycle persists the classified view.
	warm := eng.GetConnectedDevices(context.Background())
	require.False(t, warm.Degraded)

	client.errs = map[string]error{feedUserDevices: errors.New("roster down")}
	eng.InvalidateTopologyCache()

	snapshot := eng.GetConnectedDevices(context.Background())

	assert.True(t, snapshot.Degraded)
	require.Len(t, snapshot.Errors, 1)
	assert.Contains(t, snapshot.Errors[0], "roster down")

	// The lists are the persisted ones, not a half-classified live build.
	assert.Equal(t, 2, snapshot.Summary.Total)
	require.Len(t, snapshot.Wired, 1)
	assert.Equal(t, "printer", snapshot.Wired[0].Hostname)
}

func TestGetConnectedDevicesUnconfiguredWithoutFallback(t *testing.T) {
	client := healthyClient()
	client.unconfigured = true

	eng := newTestEngine(t, client)

	snapshot := eng.GetConnectedDevices(context.Background())

	assert.True(t, snapshot.Degraded)
	assert.Equal(t, 0, snapshot.Summary.Total)
	assert.NotNil(t, snapshot.Wired)
	assert.NotNil(t, snapshot.Wireless)
	assert.NotNil(t, snapshot.DetectedOnly)
}

func TestGetConnectedDevicesCachesSnapshot(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	first := eng.GetConnectedDevices(context.Background())
	second := eng.GetConnectedDevices(context.Background())

	assert.Same(t, first, second)
}
