// Package publisher performs the single unconfigured to configured
// transition of the daemon.
//
// The manager:
//   - Holds the toolchain configuration loaded at startup
//   - Saves a redacted snapshot to the snapshot store
//   - Publishes a config.loaded event on the event bus
//   - Records configuration metrics
//
// The keepalive refreshes the stored snapshot's TTL while the process runs
// and restores it if the store lost it.
package publisher
