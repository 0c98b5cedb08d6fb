package dashboard

import (
	"errors"
	"os"
	"time"

	"github.com/wirelark/fortidash/pkg/fortigate"
	"github.com/wirelark/fortidash/pkg/logger"
	"github.com/wirelark/fortidash/pkg/models"
)

const (
	defaultListenAddr   = ":8080"
	defaultFallbackDir  = "/var/lib/fortidash/fallback"
	defaultAPICacheTTL  = 5 * time.Minute
	defaultSnapshotTTL  = 1 * time.Minute
	defaultSweepEvery   = 5 * time.Minute
	defaultRefreshEvery = 5 * time.Minute
)

var errMissingHost = errors.New("fortigate.host is required")

// Config is the dashboard service configuration.
type Config struct {
	ListenAddr string `json:"listen_addr"`

	FortiGate fortigate.Config `json:"fortigate"`

	// Optional shared API key protecting the query surface.
	APIKey string `json:"api_key"`

	CORSOrigins []string `json:"cors_origins"`

	FallbackDir string `json:"fallback_dir"`

	// The raw per-endpoint cache keeps entries longer than the fused
	// snapshot cache: the fused view aggregates volatile counters and must
	// refresh more often.
	APICacheTTL      models.Duration `json:"api_cache_ttl"`
	SnapshotCacheTTL models.Duration `json:"snapshot_cache_ttl"`

	SweepInterval   models.Duration `json:"sweep_interval"`
	RefreshInterval models.Duration `json:"refresh_interval"`

	Logging *logger.Config `json:"logging"`
}

// Validate fills defaults and checks required fields. A missing API token is
// not a validation failure: the engine degrades to fallback data and the
// client reports it as unconfigured per request.
func (c *Config) Validate() error {
	if c.FortiGate.Host == "" {
		return errMissingHost
	}

	if c.FortiGate.APIToken == "" {
		c.FortiGate.APIToken = os.Getenv("FORTIGATE_API_TOKEN")
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.FallbackDir == "" {
		c.FallbackDir = defaultFallbackDir
	}

	if time.Duration(c.APICacheTTL) == 0 {
		c.APICacheTTL = models.Duration(defaultAPICacheTTL)
	}

	if time.Duration(c.SnapshotCacheTTL) == 0 {
		c.SnapshotCacheTTL = models.Duration(defaultSnapshotTTL)
	}

	if time.Duration(c.SweepInterval) == 0 {
		c.SweepInterval = models.Duration(defaultSweepEvery)
	}

	if time.Duration(c.RefreshInterval) == 0 {
		c.RefreshInterval = models.Duration(defaultRefreshEvery)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	return nil
}
