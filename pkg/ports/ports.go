// Package ports defines the snapshot, event and metrics contracts shared by
// the publisher, the adapters and the API servers.
package ports

import (
	"context"
	"time"

	"github.com/aescanero/chaincfg/internal/toolchain"
)

// Snapshot is a published, redacted copy of the toolchain configuration
type Snapshot struct {
	ID                string                     `json:"id"`
	LoadedAt          time.Time                  `json:"loaded_at"`
	Config            *toolchain.ToolchainConfig `json:"config"`
	SigningKeyPresent bool                       `json:"signing_key_present"`
	APIKeyPresent     bool                       `json:"api_key_present"`
}

// EventType identifies an event
type EventType string

// Event types
const (
	EventConfigLoaded EventType = "config.loaded"
)

// TopicConfig carries configuration lifecycle events
const TopicConfig = "config.events"

// Event is published on the event bus
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	SnapshotID string                 `json:"snapshot_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// EventHandler handles a delivered event
type EventHandler func(ctx context.Context, event Event) error

// SnapshotStore persists published snapshots
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	Latest(ctx context.Context) (*Snapshot, error)
	List(ctx context.Context) ([]string, error)
	SetTTL(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// EventBus distributes events to subscribers
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// MetricsCollector records service metrics
type MetricsCollector interface {
	RecordConfigLoaded(cfg *toolchain.ToolchainConfig)
	RecordSnapshotRefresh(status string)
	RecordHTTPRequest(method, path string, status int)
}
