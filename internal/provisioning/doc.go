// Package provisioning provides shared types and orchestration for the
// cell lifecycle.
//
// # Subpackages
//
//   - create/: bucket, keypair, seed and stack phases run as a saga
//   - update/: reseed and stack update
//   - destroy/: confirmed, best-effort teardown
//   - scale/: role capacity changes with the scale-down guard
//
// # Core Types
//
// Context carries configuration, the backend, the observer and the prompter.
// Phase defines a lifecycle step with Name() and Provision() methods.
// Phases that can undo their effects also implement Compensator, and
// RunSaga compensates completed phases in reverse order when a later
// phase fails.
package provisioning
