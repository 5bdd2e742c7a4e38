package publisher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Keepalive periodically refreshes the published snapshot
type Keepalive struct {
	manager  *Manager
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewKeepalive creates a new keepalive for manager
func NewKeepalive(manager *Manager, interval time.Duration, logger *zap.Logger) *Keepalive {
	return &Keepalive{
		manager:  manager,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger,
	}
}

// Start starts the keepalive loop. Calling Start twice is a no-op.
func (k *Keepalive) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.running {
		return
	}
	k.running = true
	k.stopCh = make(chan struct{})
	k.doneCh = make(chan struct{})

	go k.run(k.stopCh, k.doneCh)
}

// Stop stops the keepalive loop and waits for it to exit
func (k *Keepalive) Stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	k.running = false
	stopCh, doneCh := k.stopCh, k.doneCh
	k.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main keepalive loop
func (k *Keepalive) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			k.refresh()
		}
	}
}

// refresh extends the snapshot TTL once and records the outcome
func (k *Keepalive) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	restored, err := k.manager.Refresh(ctx)
	switch {
	case err != nil:
		k.manager.metrics.RecordSnapshotRefresh("error")
		k.logger.Warn("snapshot refresh failed", zap.Error(err))
	case restored:
		k.manager.metrics.RecordSnapshotRefresh("restored")
		k.logger.Warn("snapshot was missing from store and has been restored")
	default:
		k.manager.metrics.RecordSnapshotRefresh("ok")
		k.logger.Debug("snapshot refreshed")
	}
}
