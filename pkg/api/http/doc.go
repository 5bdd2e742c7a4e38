// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes read-only endpoints for:
//   - The redacted toolchain configuration and its parts
//   - The published snapshot
//   - Point-of-use readiness checks
//   - Health checks
//   - Prometheus metrics
//
// Secret values never leave the process; responses only say whether a
// secret is present.
package http
