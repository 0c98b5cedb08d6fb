// Package dashboard wires the appliance client, correlation engine, and API
// server into a runnable service.
package dashboard

import (
	"context"
	"time"

	"github.com/wirelark/fortidash/pkg/api"
	"github.com/wirelark/fortidash/pkg/cache"
	"github.com/wirelark/fortidash/pkg/engine"
	"github.com/wirelark/fortidash/pkg/fallback"
	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/logger"
)

const (
	streamTypeTopology = "topology"
	streamTypeDevices  = "connected_devices"
)

// Service is the composed dashboard: caches, upstream client, engine, and
// API server, plus the background refresh loop.
type Service struct {
	config        *Config
	apiCache      *cache.Cache
	snapshotCache *cache.Cache
	engine        *engine.Engine
	server        *api.Server
	logger        logger.Logger
}

// NewService builds the service graph from a validated config.
func NewService(cfg *Config, version string, log logger.Logger) (*Service, error) {
	apiCache := cache.New("fortigate-api", time.Duration(cfg.APICacheTTL))
	snapshotCache := cache.New("snapshots", time.Duration(cfg.SnapshotCacheTTL))

	store, err := fallback.NewStore(cfg.FallbackDir, log)
	if err != nil {
		return nil, err
	}

	client := fortigate.NewClient(&cfg.FortiGate, apiCache, log)
	eng := engine.New(client, cfg.FortiGate.Host, snapshotCache, store, log)

	server := api.NewServer(eng,
		api.WithAPIKey(cfg.APIKey),
		api.WithAllowedOrigins(cfg.CORSOrigins),
		api.WithVersion(version),
		api.WithLogger(log),
	)

	return &Service{
		config:        cfg,
		apiCache:      apiCache,
		snapshotCache: snapshotCache,
		engine:        eng,
		server:        server,
		logger:        log,
	}, nil
}

// Start runs the service until ctx is canceled. The cache sweepers and the
// refresh loop stop with the context; the API server shuts down gracefully.
func (s *Service) Start(ctx context.Context) error {
	sweep := time.Duration(s.config.SweepInterval)
	s.apiCache.StartSweeper(ctx, sweep)
	s.snapshotCache.StartSweeper(ctx, sweep)

	go s.refreshLoop(ctx)

	return s.server.Start(ctx, s.config.ListenAddr)
}

// refreshLoop warms the fused snapshots on a fixed cadence so API reads stay
// hot and stream clients receive periodic updates without polling.
func (s *Service) refreshLoop(ctx context.Context) {
	interval := time.Duration(s.config.RefreshInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	started := time.Now()

	s.engine.InvalidateTopologyCache()

	snapshot := s.engine.GetTopology(ctx)
	devices := s.engine.GetConnectedDevices(ctx)

	s.server.Broadcast(streamTypeTopology, snapshot)
	s.server.Broadcast(streamTypeDevices, devices)

	s.logger.Debug().
		Dur("elapsed", time.Since(started)).
		Bool("degraded", snapshot.Degraded || devices.Degraded).
		Msg("Background refresh complete")
}
