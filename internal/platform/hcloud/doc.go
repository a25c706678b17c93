// Package hcloud wraps the Hetzner Cloud API for the hcloud cell backend.
//
// The package is organized by resource:
//
//   - client.go: client initialization, options and the Client interface
//   - operations.go: generic idempotent delete
//   - server.go: role server lifecycle (create, delete, list by label, relabel)
//   - ssh_key.go: SSH key management for the cell keypair
//   - errors.go: API error classification
//
// Calls are never retried. A failed call surfaces to the caller, which
// decides whether to compensate.
//
// Timeouts are configurable via environment variables:
//
//   - HCLOUD_TIMEOUT_SERVER_CREATE: server creation wait (default: 10m)
//   - HCLOUD_TIMEOUT_DELETE: resource deletion wait (default: 5m)
package hcloud
