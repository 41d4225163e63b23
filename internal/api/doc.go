// Package api defines wire-format types and converters for the daemon HTTP
// API. It translates internal queue models into transport-friendly DTOs so
// CLI and external consumers never couple to internal types.
//
// Jobs are addressed two ways: the numeric ID on queue management routes,
// and the opaque token on submission routes where callers never saw an ID.
// DTOs use camelCase JSON tags; timestamps are RFC3339 with milliseconds;
// internal enums are exposed as lowercase strings.
package api
