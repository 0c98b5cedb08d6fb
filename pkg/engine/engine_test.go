package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wirelark/fortidash/pkg/cache"
	"github.com/wirelark/fortidash/pkg/fallback"
	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/logger"
)

// fakeClient serves canned feed data and injects per-feed failures.
type fakeClient struct {
	unconfigured bool

	system     *fortigate.SystemStatus
	switches   []fortigate.ManagedSwitch
	identities []fortigate.SwitchIdentity
	aps        []fortigate.ManagedAP
	arp        []fortigate.ArpEntry
	detected   []fortigate.DetectedDevice
	users      []fortigate.UserDevice

	errs  map[string]error
	calls int64
}

func (f *fakeClient) Configured() bool {
	return !f.unconfigured
}

func (f *fakeClient) feedErr(name string) error {
	atomic.AddInt64(&f.calls, 1)

	if f.errs == nil {
		return nil
	}

	return f.errs[name]
}

func (f *fakeClient) SystemStatus(context.Context) (*fortigate.SystemStatus, error) {
	if err := f.feedErr(feedSystemStatus); err != nil {
		return nil, err
	}

	return f.system, nil
}

func (f *fakeClient) SwitchPortStats(context.Context) ([]fortigate.ManagedSwitch, error) {
	if err := f.feedErr(feedSwitchPortStats); err != nil {
		return nil, err
	}

	return f.switches, nil
}

func (f *fakeClient) SwitchIdentities(context.Context) ([]fortigate.SwitchIdentity, error) {
	if err := f.feedErr(feedSwitchIdentities); err != nil {
		return nil, err
	}

	return f.identities, nil
}

func (f *fakeClient) ManagedAPs(context.Context) ([]fortigate.ManagedAP, error) {
	if err := f.feedErr(feedManagedAPs); err != nil {
		return nil, err
	}

	return f.aps, nil
}

func (f *fakeClient) ArpTable(context.Context) ([]fortigate.ArpEntry, error) {
	if err := f.feedErr(feedArpTable); err != nil {
		return nil, err
	}

	return f.arp, nil
}

func (f *fakeClient) DetectedDevices(context.Context) ([]fortigate.DetectedDevice, error) {
	if err := f.feedErr(feedDetectedDevices); err != nil {
		return nil, err
	}

	return f.detected, nil
}

func (f *fakeClient) UserDevices(context.Context) ([]fortigate.UserDevice, error) {
	if err := f.feedErr(feedUserDevices); err != nil {
		return nil, err
	}

	return f.users, nil
}

// healthyClient returns a fake serving a small but fully-populated network:
// one firewall, one switch with a bound client, one AP with wireless clients.
func healthyClient() *fakeClient {
	return &fakeClient{
		system: &fortigate.SystemStatus{
			Hostname:  "edge-fw",
			ModelName: "FortiGate",
			Serial:    "FGT60F0000000001",
			Version:   "v7.4.3",
		},
		switches: []fortigate.ManagedSwitch{{
			SwitchID: "SW1",
			Name:     "core-sw",
			Serial:   "FS124E0000000001",
			Ports: map[string]fortigate.SwitchPortStats{
				"port1": {RxPackets: 500, TxPackets: 400},
				"port2": {},
				"port3": {},
			},
		}},
		identities: []fortigate.SwitchIdentity{{
			SwitchID:  "SW1",
			BurnInMAC: "AA:BB:CC:00:00:01",
		}},
		aps: []fortigate.ManagedAP{{
			Name:     "lobby-ap",
			Serial:   "FAP231F0000000001",
			Status:   "connected",
			BoardMAC: "DD:EE:FF:00:00:01",
			Clients:  2,
			SSID:     []fortigate.APSSIDGroup{{List: []string{"corp"}}},
		}},
		arp: []fortigate.ArpEntry{
			{IP: "10.0.0.20", MAC: "11:22:33:44:55:66"},
			{IP: "10.0.0.21", MAC: "11:22:33:44:55:77"},
			{IP: "10.0.0.2", MAC: "AA:BB:CC:00:00:01"},  // switch itself
			{IP: "10.0.0.3", MAC: "DD:EE:FF:00:00:01"},  // AP itself
		},
		detected: []fortigate.DetectedDevice{{
			MAC:               "11:22:33:44:55:66",
			IPv4Address:       "10.0.0.20",
			Hostname:          "printer",
			DetectedInterface: "port3",
			MasterMAC:         "aa:bb:cc:00:00:01", // identity feed reports uppercase
			IsOnline:          true,
		}},
		users: []fortigate.UserDevice{
			{
				MAC:               "11:22:33:44:55:66",
				IPv4Address:       "10.0.0.20",
				Hostname:          "printer",
				HardwareFamily:    "Printer",
				DetectedInterface: "lan1",
				MasterMAC:         "AA:BB:CC:00:00:01",
				IsOnline:          true,
			},
			{
				MAC:               "66:55:44:33:22:11",
				Hostname:          "phone",
				HardwareFamily:    "Phone",
				DetectedInterface: "wifi-corp",
				MasterMAC:         "DD:EE:FF:00:00:01",
				IsOnline:          true,
			},
		},
	}
}

func newTestEngine(t *testing.T, client ApplianceClient) *Engine {
	t.Helper()

	store, err := fallback.NewStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	return New(client, "192.0.2.1", cache.New("snapshots", time.Minute), store, logger.NewTestLogger())
}
