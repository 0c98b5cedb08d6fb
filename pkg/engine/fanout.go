package engine

import (
	"context"
	"sync"

	"github.com/wirelark/fortidash/pkg/fortigate"
)

// Feed names, used to key collected failures and to label snapshot errors.
const (
	feedSystemStatus     = "system-status"
	feedSwitchPortStats  = "switch-port-stats"
	feedSwitchIdentities = "switch-identities"
	feedManagedAPs       = "managed-aps"
	feedArpTable         = "arp-table"
	feedDetectedDevices  = "detected-devices"
	feedUserDevices      = "user-devices"
)

var (
	topologyFeedOrder = []string{
		feedSystemStatus,
		feedSwitchPortStats,
		feedSwitchIdentities,
		feedManagedAPs,
		feedArpTable,
		feedDetectedDevices,
	}

	deviceFeedOrder = []string{
		feedUserDevices,
		feedDetectedDevices,
		feedArpTable,
		feedManagedAPs,
		feedSwitchIdentities,
	}
)

// feedSet collects the results of one fan-out cycle. Each sub-request writes
// its own field; only the failure map is shared and needs the mutex. A failed
// sub-request never cancels the others.
type feedSet struct {
	mu     sync.Mutex
	failed map[string]error

	system     *fortigate.SystemStatus
	switches   []fortigate.ManagedSwitch
	identities []fortigate.SwitchIdentity
	aps        []fortigate.ManagedAP
	arp        []fortigate.ArpEntry
	detected   []fortigate.DetectedDevice
	users      []fortigate.UserDevice
}

func newFeedSet() *feedSet {
	return &feedSet{failed: make(map[string]error)}
}

func (f *feedSet) fail(name string, err error) {
	f.mu.Lock()
	f.failed[name] = err
	f.mu.Unlock()
}

func (f *feedSet) failedFeed(name string) bool {
	_, ok := f.failed[name]
	return ok
}

// settleAll runs every fetcher concurrently and waits for all of them,
// collecting each failure instead of aborting on the first one.
func settleAll(fetchers map[string]func() error, feeds *feedSet) {
	var wg sync.WaitGroup

	for name, fetch := range fetchers {
		wg.Add(1)

		go func(name string, fetch func() error) {
			defer wg.Done()

			if err := fetch(); err != nil {
				feeds.fail(name, err)
			}
		}(name, fetch)
	}

	wg.Wait()
}

// fetchTopologyFeeds issues the six topology sub-requests concurrently.
func (e *Engine) fetchTopologyFeeds(ctx context.Context) *feedSet {
	feeds := newFeedSet()

	settleAll(map[string]func() error{
		feedSystemStatus: func() error {
			system, err := e.client.SystemStatus(ctx)
			if err != nil {
				return err
			}
			feeds.system = system
			return nil
		},
		feedSwitchPortStats: func() error {
			switches, err := e.client.SwitchPortStats(ctx)
			if err != nil {
				return err
			}
			feeds.switches = switches
			return nil
		},
		feedSwitchIdentities: func() error {
			identities, err := e.client.SwitchIdentities(ctx)
			if err != nil {
				return err
			}
			feeds.identities = identities
			return nil
		},
		feedManagedAPs: func() error {
			aps, err := e.client.ManagedAPs(ctx)
			if err != nil {
				return err
			}
			feeds.aps = aps
			return nil
		},
		feedArpTable: func() error {
			arp, err := e.client.ArpTable(ctx)
			if err != nil {
				return err
			}
			feeds.arp = arp
			return nil
		},
		feedDetectedDevices: func() error {
			detected, err := e.client.DetectedDevices(ctx)
			if err != nil {
				return err
			}
			feeds.detected = detected
			return nil
		},
	}, feeds)

	return feeds
}

// fetchDeviceFeeds issues the five connected-device sub-requests
// concurrently.
func (e *Engine) fetchDeviceFeeds(ctx context.Context) *feedSet {
	feeds := newFeedSet()

	settleAll(map[string]func() error{
		feedUserDevices: func() error {
			users, err := e.client.UserDevices(ctx)
			if err != nil {
				return err
			}
			feeds.users = users
			return nil
		},
		feedDetectedDevices: func() error {
			detected, err := e.client.DetectedDevices(ctx)
			if err != nil {
				return err
			}
			feeds.detected = detected
			return nil
		},
		feedArpTable: func() error {
			arp, err := e.client.ArpTable(ctx)
			if err != nil {
				return err
			}
			feeds.arp = arp
			return nil
		},
		feedManagedAPs: func() error {
			aps, err := e.client.ManagedAPs(ctx)
			if err != nil {
				return err
			}
			feeds.aps = aps
			return nil
		},
		feedSwitchIdentities: func() error {
			identities, err := e.client.SwitchIdentities(ctx)
			if err != nil {
				return err
			}
			feeds.identities = identities
			return nil
		},
	}, feeds)

	return feeds
}

// collectErrors returns "<feed>: <error>" lines in the given feed order.
func (f *feedSet) collectErrors(order []string) []string {
	var errs []string

	for _, name := range order {
		if err, ok := f.failed[name]; ok {
			errs = append(errs, name+": "+err.Error())
		}
	}

	return errs
}
