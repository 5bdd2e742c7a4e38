// Package events provides event bus implementations.
//
// Implementations:
//   - redis: Redis Streams, one read cursor per subscription
//   - memory: In-memory, for single-process use and tests
package events
