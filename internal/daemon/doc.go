// Package daemon hosts the long-running service: it owns the queue store,
// the workflow manager, the single-instance file lock, and the HTTP API
// that accepts submissions and serves status.
package daemon
