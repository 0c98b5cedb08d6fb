package engine

import (
	"context"

	"github.com/wirelark/fortidash/pkg/fallback"
	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/models"
)

// GetTopology returns the fused topology view. It never returns an error:
// partial failures degrade the snapshot, and a total failure is served from
// the fallback store or the seed dataset with degraded set.
func (e *Engine) GetTopology(ctx context.Context) *models.TopologySnapshot {
	if cached, ok := e.snapshots.Get(topologyCacheKey); ok {
		return cached.(*models.TopologySnapshot)
	}

	if !e.client.Configured() {
		// Fatal for the cycle; no fan-out is attempted. The result is not
		// cached so a fixed token takes effect on the next read.
		return e.topologyFromFallback(fortigate.ErrUnconfigured)
	}

	feeds := e.fetchTopologyFeeds(ctx)
	snapshot, bindings := e.assembleTopology(feeds)

	e.snapshots.Set(topologyCacheKey, snapshot)
	e.persistTopology(feeds, snapshot, bindings)

	if snapshot.Degraded {
		e.logger.Warn().
			Strs("errors", snapshot.Errors).
			Msg("Topology build degraded")
	} else {
		e.logger.Debug().
			Int("switches", len(snapshot.Switches)).
			Int("access_points", len(snapshot.AccessPoints)).
			Msg("Topology build complete")
	}

	return snapshot
}

// assembleTopology joins and enriches the fan-out results, substituting
// fallback data per failed feed.
func (e *Engine) assembleTopology(feeds *feedSet) (*models.TopologySnapshot, []models.PortBinding) {
	snapshot := &models.TopologySnapshot{FetchedAt: e.nowFn()}

	snapshot.Errors = feeds.collectErrors(topologyFeedOrder)
	snapshot.Degraded = len(snapshot.Errors) > 0

	if feeds.system != nil {
		snapshot.Firewall = mapFirewall(feeds.system, e.applianceHost)
	} else {
		firewall := &models.Firewall{}
		if ok, _ := e.store.LoadInto(fallback.KindSystem, firewall); ok {
			firewall.Status = models.StatusUnknown
			snapshot.Firewall = firewall
		} else {
			snapshot.Firewall = fallback.SeedFirewall()
		}
	}

	macToSwitch := buildMacToSwitchMap(feeds.identities)

	var bindings []models.PortBinding

	if !feeds.failedFeed(feedDetectedDevices) {
		bindings = buildPortBindings(feeds.detected, macToSwitch)
	} else {
		_, _ = e.store.LoadInto(fallback.KindDetectedDevices, &bindings)
	}

	if !feeds.failedFeed(feedSwitchPortStats) {
		switches := mapSwitches(feeds.switches)
		for i := range switches {
			enrichSwitchPorts(&switches[i], bindings)
		}

		snapshot.Switches = switches
	} else {
		// Persisted switches were enriched by an earlier cycle; leave them
		// as stored rather than re-deriving from possibly mismatched feeds.
		var switches []models.Switch
		if ok, _ := e.store.LoadInto(fallback.KindSwitches, &switches); ok {
			snapshot.Switches = switches
		} else {
			snapshot.Switches = fallback.SeedSwitches()
		}
	}

	if !feeds.failedFeed(feedManagedAPs) {
		snapshot.AccessPoints = mapAccessPoints(feeds.aps)
	} else {
		var aps []models.AccessPoint
		if ok, _ := e.store.LoadInto(fallback.KindAccessPoints, &aps); ok {
			snapshot.AccessPoints = aps
		} else {
			snapshot.AccessPoints = fallback.SeedAccessPoints()
		}
	}

	snapshot.Totals = e.computeTotals(feeds, snapshot, macToSwitch)

	return snapshot, bindings
}

// computeTotals prefers the ground-truth ARP count for wired clients and only
// falls back to the per-port heuristic sum when the ARP table is unavailable
// or empty. The wireless total is the authoritative per-AP client count, not
// re-derived.
func (e *Engine) computeTotals(feeds *feedSet, snapshot *models.TopologySnapshot, macToSwitch map[string]string) models.TopologyTotals {
	totals := models.TopologyTotals{}

	if !feeds.failedFeed(feedArpTable) && len(feeds.arp) > 0 {
		totals.WiredClients = countWiredFromArp(feeds.arp, applianceMACs(macToSwitch, snapshot.AccessPoints))
	} else {
		for _, sw := range snapshot.Switches {
			totals.WiredClients += sw.WiredClientTotal
		}
	}

	for _, ap := range snapshot.AccessPoints {
		totals.WirelessClients += ap.ClientsConnected
	}

	return totals
}

// countWiredFromArp counts distinct non-appliance IPs in the ARP table.
func countWiredFromArp(arp []fortigate.ArpEntry, appliance map[string]struct{}) int {
	seen := make(map[string]struct{}, len(arp))

	for _, entry := range arp {
		if entry.IP == "" {
			continue
		}

		if _, ok := appliance[normalizeMAC(entry.MAC)]; ok {
			continue
		}

		seen[entry.IP] = struct{}{}
	}

	return len(seen)
}

// applianceMACs collects the vendor equipment MACs known from the current
// cycle: switch burned-in MACs and AP board MACs.
func applianceMACs(macToSwitch map[string]string, aps []models.AccessPoint) map[string]struct{} {
	macs := make(map[string]struct{}, len(macToSwitch)+len(aps))

	for mac := range macToSwitch {
		macs[mac] = struct{}{}
	}

	for _, ap := range aps {
		if ap.BoardMAC != "" {
			macs[ap.BoardMAC] = struct{}{}
		}
	}

	return macs
}

// persistTopology saves each successfully-fetched component under its own
// kind so a later total failure can rebuild from independently-fresh pieces.
func (e *Engine) persistTopology(feeds *feedSet, snapshot *models.TopologySnapshot, bindings []models.PortBinding) {
	if feeds.system != nil {
		e.saveKind(fallback.KindSystem, snapshot.Firewall)
	}

	if !feeds.failedFeed(feedSwitchPortStats) {
		e.saveKind(fallback.KindSwitches, snapshot.Switches)
	}

	if !feeds.failedFeed(feedManagedAPs) {
		e.saveKind(fallback.KindAccessPoints, snapshot.AccessPoints)
	}

	if !feeds.failedFeed(feedArpTable) {
		e.saveKind(fallback.KindArp, feeds.arp)
	}

	if !feeds.failedFeed(feedDetectedDevices) {
		e.saveKind(fallback.KindDetectedDevices, bindings)
	}

	e.appendSeriesPoint(snapshot.Totals)
}

func (e *Engine) saveKind(kind fallback.Kind, data interface{}) {
	if err := e.store.Save(kind, data); err != nil {
		e.logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to persist fallback snapshot")
	}
}

// appendSeriesPoint records the totals into the bounded history series.
func (e *Engine) appendSeriesPoint(totals models.TopologyTotals) {
	var series []models.SeriesPoint

	_, _ = e.store.LoadInto(fallback.KindHistoricalSeries, &series)

	series = append(series, models.SeriesPoint{
		Timestamp:       e.nowFn(),
		WiredClients:    totals.WiredClients,
		WirelessClients: totals.WirelessClients,
	})

	if len(series) > maxSeriesPoints {
		series = series[len(series)-maxSeriesPoints:]
	}

	e.saveKind(fallback.KindHistoricalSeries, series)
}

// History returns the persisted client-count series, oldest first.
func (e *Engine) History() []models.SeriesPoint {
	var series []models.SeriesPoint

	_, _ = e.store.LoadInto(fallback.KindHistoricalSeries, &series)

	return series
}

// topologyFromFallback assembles a snapshot entirely from the fallback store
// and seed dataset, for cycles that cannot reach the fan-out at all.
func (e *Engine) topologyFromFallback(cause error) *models.TopologySnapshot {
	snapshot := &models.TopologySnapshot{
		FetchedAt: e.nowFn(),
		Degraded:  true,
		Errors:    []string{cause.Error()},
	}

	firewall := &models.Firewall{}
	if ok, _ := e.store.LoadInto(fallback.KindSystem, firewall); ok {
		firewall.Status = models.StatusUnknown
		snapshot.Firewall = firewall
	} else {
		snapshot.Firewall = fallback.SeedFirewall()
	}

	var switches []models.Switch
	if ok, _ := e.store.LoadInto(fallback.KindSwitches, &switches); ok {
		snapshot.Switches = switches
	} else {
		snapshot.Switches = fallback.SeedSwitches()
	}

	var aps []models.AccessPoint
	if ok, _ := e.store.LoadInto(fallback.KindAccessPoints, &aps); ok {
		snapshot.AccessPoints = aps
	} else {
		snapshot.AccessPoints = fallback.SeedAccessPoints()
	}

	for _, sw := range snapshot.Switches {
		snapshot.Totals.WiredClients += sw.WiredClientTotal
	}

	for _, ap := range snapshot.AccessPoints {
		snapshot.Totals.WirelessClients += ap.ClientsConnected
	}

	e.logger.Warn().Err(cause).Msg("Serving topology from fallback data")

	return snapshot
}
