package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/chaincfg/internal/toolchain"
	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyPublished is returned by a second Publish
	ErrAlreadyPublished = errors.New("configuration already published")

	// ErrNotPublished is returned when an operation needs a published snapshot
	ErrNotPublished = errors.New("configuration not published")
)

// Manager owns the loaded configuration and its published snapshot
type Manager struct {
	config   *toolchain.ToolchainConfig
	store    ports.SnapshotStore
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	snapshot *ports.Snapshot
}

// NewManager creates a new publisher manager for cfg
func NewManager(
	cfg *toolchain.ToolchainConfig,
	store ports.SnapshotStore,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	ttl time.Duration,
) *Manager {
	return &Manager{
		config:   cfg.Clone(),
		store:    store,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Publish stores the redacted snapshot and announces it. It succeeds at
// most once; a failed attempt may be retried.
func (m *Manager) Publish(ctx context.Context) (*ports.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot != nil {
		return nil, ErrAlreadyPublished
	}

	snapshot := &ports.Snapshot{
		ID:                uuid.New().String(),
		LoadedAt:          m.now().UTC(),
		Config:            m.config.Redacted(),
		SigningKeyPresent: signingKeyPresent(m.config),
		APIKeyPresent:     m.config.Verification.APIKey.Present(),
	}

	if err := m.store.Save(ctx, snapshot); err != nil {
		m.logger.Error("failed to save snapshot",
			zap.String("snapshot_id", snapshot.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	m.snapshot = snapshot
	m.metrics.RecordConfigLoaded(m.config)

	event := ports.Event{
		ID:         uuid.New().String(),
		Type:       ports.EventConfigLoaded,
		SnapshotID: snapshot.ID,
		Timestamp:  m.now().UTC(),
		Data: map[string]interface{}{
			"networks":            m.config.NetworkNames(),
			"compiler_version":    m.config.Compiler.Version,
			"signing_key_present": snapshot.SigningKeyPresent,
			"api_key_present":     snapshot.APIKeyPresent,
		},
	}

	// snapshot is stored; event failures are logged only
	if err := m.eventBus.Publish(ctx, ports.TopicConfig, event); err != nil {
		m.logger.Error("failed to publish config loaded event",
			zap.String("snapshot_id", snapshot.ID),
			zap.Error(err))
	}

	m.logger.Info("configuration published",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("compiler_version", m.config.Compiler.Version),
		zap.Strings("networks", m.config.NetworkNames()),
		zap.Object("signing_key", m.config.Networks[toolchain.NetworkPolygon].SigningKey),
		zap.Object("api_key", m.config.Verification.APIKey))

	return copySnapshot(snapshot), nil
}

// Config returns a copy of the full configuration, secrets included
func (m *Manager) Config() *toolchain.ToolchainConfig {
	return m.config.Clone()
}

// Snapshot returns the published snapshot, or nil before Publish
func (m *Manager) Snapshot() *ports.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return nil
	}
	return copySnapshot(m.snapshot)
}

// Published reports whether Publish has succeeded
func (m *Manager) Published() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot != nil
}

// Refresh extends the stored snapshot's TTL, saving it again if the store
// no longer has it. It reports whether the snapshot had to be restored.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	snapshot := m.Snapshot()
	if snapshot == nil {
		return false, ErrNotPublished
	}

	err := m.store.SetTTL(ctx, snapshot.ID, m.ttl)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ports.ErrSnapshotNotFound) {
		return false, fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	if err := m.store.Save(ctx, snapshot); err != nil {
		return false, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return true, nil
}

func signingKeyPresent(cfg *toolchain.ToolchainConfig) bool {
	for _, n := range cfg.Networks {
		if n.SigningKey.Present() {
			return true
		}
	}
	return false
}

func copySnapshot(s *ports.Snapshot) *ports.Snapshot {
	c := *s
	c.Config = s.Config.Clone()
	return &c
}
