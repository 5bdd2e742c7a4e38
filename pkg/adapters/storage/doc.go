// Package storage provides snapshot storage implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL
//   - memory: In-memory, for single-process use and tests
package storage
