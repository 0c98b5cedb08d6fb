// Package fallback persists the last-known-good result per data kind so the
// dashboard keeps serving useful data through upstream outages and restarts.
package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wirelark/fortidash/pkg/logger"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600

	// Snapshots older than this are too stale to present as current, even
	// as a fallback.
	defaultMaxAge = 24 * time.Hour
)

var errEmptyDir = errors.New("fallback store directory is required")

// Kind names one persisted data type. Each kind lives in its own file so a
// total upstream failure can still reconstruct a topology from
// independently-fresh pieces.
type Kind string

const (
	KindSystem           Kind = "system"
	KindSwitches         Kind = "switches"
	KindAccessPoints     Kind = "access-points"
	KindArp              Kind = "arp"
	KindDetectedDevices  Kind = "detected-devices"
	KindClients          Kind = "clients"
	KindHistoricalSeries Kind = "historical-series"
)

type envelope struct {
	StoredAt int64           `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Store is a file-per-kind JSON snapshot store with atomic writes.
type Store struct {
	dir    string
	maxAge time.Duration
	logger logger.Logger
	mu     sync.Mutex
	nowFn  func() time.Time
}

// NewStore creates the backing directory if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, errEmptyDir
	}

	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create fallback directory: %w", err)
	}

	return &Store{
		dir:    dir,
		maxAge: defaultMaxAge,
		logger: log,
		nowFn:  time.Now,
	}, nil
}

// SetNowFunc overrides the clock, for tests.
func (s *Store) SetNowFunc(now func() time.Time) {
	if now == nil {
		return
	}

	s.mu.Lock()
	s.nowFn = now
	s.mu.Unlock()
}

// Save marshals data and writes it under kind. The write goes to a temp file
// first and is renamed into place, so a crash mid-write never leaves a
// snapshot that fails to parse on load.
func (s *Store) Save(kind Kind, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope{
		StoredAt: s.nowFn().UnixMilli(),
		Data:     raw,
	})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", kind, err)
	}

	path := s.path(kind)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, payload, filePerms); err != nil {
		return fmt.Errorf("write temporary %s snapshot: %w", kind, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("persist %s snapshot: %w", kind, err)
	}

	return nil
}

// Load returns the stored data for kind, or ok=false when no snapshot exists
// or the snapshot is older than the staleness boundary.
func (s *Store) Load(kind Kind) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read %s snapshot: %w", kind, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, fmt.Errorf("decode %s snapshot: %w", kind, err)
	}

	age := s.nowFn().Sub(time.UnixMilli(env.StoredAt))
	if age >= s.maxAge {
		s.logger.Debug().
			Str("kind", string(kind)).
			Dur("age", age).
			Msg("Fallback snapshot too stale, treating as absent")

		return nil, false, nil
	}

	return env.Data, true, nil
}

// LoadInto decodes the stored data for kind into dst when a fresh snapshot
// exists.
func (s *Store) LoadInto(kind Kind, dst interface{}) (bool, error) {
	raw, ok, err := s.Load(kind)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s data: %w", kind, err)
	}

	return true, nil
}

func (s *Store) path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}
