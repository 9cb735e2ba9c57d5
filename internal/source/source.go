// Package source contains the data source adapters and the machinery
// they share: the capability interface, the per-endpoint rate limiter,
// the persisted response cache and the named registry.
package source

import (
	"context"
	"time"
)

// Query is a request against a data source. Function selects the
// operation for API-backed sources (e.g. GLOBAL_QUOTE, OVERVIEW);
// file-backed sources only look at Symbol.
type Query struct {
	Function string
	Symbol   string
}

// Result is a raw source response, shape owned by the source.
type Result map[string]interface{}

// DataSource is the capability set every adapter exposes.
type DataSource interface {
	// Metadata describes the source; Name is the registry key.
	Metadata() Metadata

	// Connect establishes the connection (session, file load).
	Connect(ctx context.Context) error

	// Disconnect releases the connection. Safe to call when not
	// connected.
	Disconnect() error

	// HealthCheck reports whether the source is available and
	// responding.
	HealthCheck(ctx context.Context) bool

	// Schema returns the field groups the source can serve.
	Schema() map[string][]string

	// ExecuteQuery runs a query and returns the raw result. Per-symbol
	// data problems (unknown symbol, empty payload) are returned as
	// errors; upstream throttling is handled inside the adapter and is
	// not an error.
	ExecuteQuery(ctx context.Context, q Query) (Result, error)
}

// Metadata describes a data source.
type Metadata struct {
	Name        string
	Kind        string // "api", "csv"
	Description string
	LastUpdated time.Time
}
