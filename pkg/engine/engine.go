// Package engine fuses the FortiGate monitor feeds into topology and
// connected-device snapshots, substituting fallback data when feeds fail.
package engine

import (
	"time"

	"github.com/wirelark/fortidash/pkg/cache"
	"github.com/wirelark/fortidash/pkg/fallback"
	"github.com/wirelark/fortidash/pkg/logger"
)

const (
	topologyCacheKey = "topology"
	devicesCacheKey  = "connected-devices"

	// Retained points of the client-count history series, 24h at the
	// default 5 minute refresh interval.
	maxSeriesPoints = 288
)

// Engine builds the fused views. Snapshots are cached in the short-TTL cache
// and the read path never returns an error: a failed build degrades to
// fallback data instead.
type Engine struct {
	client        ApplianceClient
	applianceHost string
	snapshots     *cache.Cache
	store         *fallback.Store
	logger        logger.Logger
	nowFn         func() time.Time
}

// New wires the engine. The snapshot cache and fallback store are owned by
// the composition root; the engine only reads and writes them.
func New(client ApplianceClient, applianceHost string, snapshots *cache.Cache, store *fallback.Store, log logger.Logger) *Engine {
	return &Engine{
		client:        client,
		applianceHost: applianceHost,
		snapshots:     snapshots,
		store:         store,
		logger:        log,
		nowFn:         time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now != nil {
		e.nowFn = now
	}
}

// InvalidateTopologyCache drops the fused snapshots so the next read rebuilds
// them. Raw per-endpoint responses keep their own TTL.
func (e *Engine) InvalidateTopologyCache() {
	e.snapshots.Delete(topologyCacheKey)
	e.snapshots.Delete(devicesCacheKey)
}

// Configured reports whether the upstream appliance client has credentials.
func (e *Engine) Configured() bool {
	return e.client.Configured()
}

// ApplianceHost returns the configured FortiGate host.
func (e *Engine) ApplianceHost() string {
	return e.applianceHost
}
