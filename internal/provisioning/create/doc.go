// Package create provisions a new cell.
//
// Phases run in order bucket, keypair, seed, stack. When one fails, the
// bucket and keypair created by this invocation are removed again, newest
// first, and the original error is returned.
package create
