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

func TestGetTopologyHappyPath(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	require.NotNil(t, snapshot.Firewall)
	assert.Equal(t, "edge-fw", snapshot.Firewall.Hostname)
	assert.Equal(t, models.StatusUp, snapshot.Firewall.Status)
	assert.Equal(t, "192.0.2.1", snapshot.Firewall.IPAddress)

	require.Len(t, snapshot.Switches, 1)
	assert.Equal(t, models.StatusUp, snapshot.Switches[0].Status)

	require.Len(t, snapshot.AccessPoints, 1)
	assert.Equal(t, models.StatusUp, snapshot.AccessPoints[0].Status)

	assert.False(t, snapshot.Degraded)
	assert.Empty(t, snapshot.Errors)
}

func TestGetTopologyBindsDetectedDeviceToPort(t *testing.T) {
	// The detected device reports its master by the switch burned-in MAC in
	// a different case than the identity feed; the join must still land it
	// on port3, and the binding must suppress the traffic heuristic there.
	client := healthyClient()
	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	require.Len(t, snapshot.Switches, 1)
	sw := snapshot.Switches[0]

	var port3 *models.SwitchPort

	for i := range sw.Ports {
		if sw.Ports[i].Name == "port3" {
			port3 = &sw.Ports[i]
		}
	}

	require.NotNil(t, port3)
	assert.Equal(t, 1, port3.WiredClients)
	assert.Equal(t, []string{"11:22:33:44:55:66"}, port3.DetectedDevices)
}

func TestGetTopologyWiredTotalPrefersArp(t *testing.T) {
	// Two distinct client IPs in ARP after excluding the switch and AP own
	// entries; the heuristic sum would say otherwise (port1 traffic plus
	// the port3 binding gives 2 as well, so inflate ARP to make them
	// differ).
	client := healthyClient()
	client.arp = append(client.arp,
		fortigate.ArpEntry{IP: "10.0.0.22", MAC: "11:22:33:44:55:88"},
		fortigate.ArpEntry{IP: "10.0.0.22", MAC: "11:22:33:44:55:88"}, // duplicate IP
		fortigate.ArpEntry{IP: "10.0.0.23", MAC: "11:22:33:44:55:99"},
	)

	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	assert.Equal(t, 4, snapshot.Totals.WiredClients)
	assert.Equal(t, 2, snapshot.Totals.WirelessClients)
}

func TestGetTopologyWiredTotalFallsBackToHeuristicSum(t *testing.T) {
	client := healthyClient()
	client.errs = map[string]error{feedArpTable: errors.New("boom")}

	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	// port1 heuristic client plus the port3 binding.
	assert.Equal(t, 2, snapshot.Totals.WiredClients)
	assert.True(t, snapshot.Degraded)
	assert.Contains(t, snapshot.Errors, "arp-table: boom")
}

func TestGetTopologyEmptyArpFallsBackToHeuristicSum(t *testing.T) {
	client := healthyClient()
	client.arp = nil

	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	assert.Equal(t, 2, snapshot.Totals.WiredClients)
	assert.False(t, snapshot.Degraded)
}

func TestGetTopologyCachesSnapshot(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	first := eng.GetTopology(context.Background())
	callsAfterFirst := client.calls

	second := eng.GetTopology(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, callsAfterFirst, client.calls)
}

func TestInvalidateTopologyCacheForcesRebuild(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	first := eng.GetTopology(context.Background())
	eng.InvalidateTopologyCache()
	second := eng.GetTopology(context.Background())

	assert.NotSame(t, first, second)
}

func TestGetTopologyDegradedPerFeed(t *testing.T) {
	client := healthyClient()
	client.errs = map[string]error{
		feedManagedAPs: errors.New("ap feed down"),
	}

	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	// Nothing persisted yet, so the AP slot is filled from the seed data
	// while the rest of the snapshot stays live.
	assert.True(t, snapshot.Degraded)
	assert.Contains(t, snapshot.Errors, "managed-aps: ap feed down")
	require.Len(t, snapshot.Switches, 1)
	assert.NotEmpty(t, snapshot.AccessPoints)
}

func TestGetTopologyUnconfigured(t *testing.T) {
	client := healthyClient()
	client.unconfigured = true

	eng := newTestEngine(t, client)

	snapshot := eng.GetTopology(context.Background())

	assert.True(t, snapshot.Degraded)
	require.Len(t, snapshot.Errors, 1)
	assert.Equal(t, fortigate.ErrUnconfigured.Error(), snapshot.Errors[0])

	// Seed data fills the view so the dashboard never renders empty.
	assert.NotNil(t, snapshot.Firewall)
	assert.Equal(t, models.StatusUnknown, snapshot.Firewall.Status)
	assert.NotEmpty(t, snapshot.Switches)
	assert.NotEmpty(t, snapshot.AccessPoints)

	// The fallback snapshot is not cached: fixing the token must take
	// effect on the very next read.
	assert.EqualValues(t, 0, client.calls)

	client.unconfigured = false

	live := eng.GetTopology(context.Background())
	assert.False(t, live.Degraded)
}

func TestGetTopologyServedFromFallbackAfterOutage(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	// A healthy cycle persists every component.
	warm := eng.GetTopology(context.Background())
	require.False(t, warm.Degraded)

	// Total outage afterwards: every feed fails.
	client.errs = map[string]error{
		feedSystemStatus:     errors.New("down"),
		feedSwitchPortStats:  errors.New("down"),
		feedSwitchIdentities: errors.New("down"),
		feedManagedAPs:       errors.New("down"),
		feedArpTable:         errors.New("down"),
		feedDetectedDevices:  errors.New("down"),
	}
	eng.InvalidateTopologyCache()

	snapshot := eng.GetTopology(context.Background())

	assert.True(t, snapshot.Degraded)
	assert.Len(t, snapshot.Errors, 6)

	// Components come from the persisted snapshots of the healthy cycle.
	require.NotNil(t, snapshot.Firewall)
	assert.Equal(t, models.StatusUnknown, snapshot.Firewall.Status)
	require.Len(t, snapshot.Switches, 1)
	assert.Equal(t, "core-sw", snapshot.Switches[0].Name)
	require.Len(t, snapshot.AccessPoints, 1)
	assert.Equal(t, "lobby-ap", snapshot.AccessPoints[0].Name)
}

func TestHistoryAccumulatesSeries(t *testing.T) {
	client := healthyClient()
	eng := newTestEngine(t, client)

	require.Empty(t, eng.History())

	eng.GetTopology(context.Background())
	eng.InvalidateTopologyCache()
	eng.GetTopology(context.Background())

	series := eng.History()
	require.Len(t, series, 2)
	assert.Equal(t, 2, series[0].WiredClients)
	assert.Equal(t, 2, series[0].WirelessClients)
}
