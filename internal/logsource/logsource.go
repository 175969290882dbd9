// Package logsource defines the contract for reading append-only trading
// logs. Sessions live under <config_type>/<run_id>/ and are read as whole
// named byte streams; the engine is agnostic to whether the backend is a
// remote object store or the local filesystem.
package logsource

import (
	"context"
	"errors"
)

// Canonical file names inside a run folder. These are fixed by the trading
// engine that writes the logs and must not change.
const (
	FileEvents      = "events.jsonl"
	FileAnalytics   = "analytics.jsonl"
	FilePerformance = "performance.json"
	FileAgentLog    = "agent.log"
	FileTradeLogs   = "trade_logs.log"
)

// Source errors.
var (
	// ErrNotFound is returned when a config type, run, or object does not
	// exist. Callers treat it as "no data", not a failure.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the backend itself cannot be
	// reached. This is the only error class that propagates to callers as
	// a hard failure; no partial answer is meaningful without a source.
	ErrUnavailable = errors.New("log source unavailable")
)

// Source reads trading logs for one deployment. Implementations must be
// safe for concurrent use.
type Source interface {
	// ListConfigTypes lists the top-level config type groups
	// (e.g. "fixed", "relative", "1year").
	ListConfigTypes(ctx context.Context) ([]string, error)

	// ListRuns lists run IDs under a config type, most recent first.
	// Returns ErrNotFound if the config type does not exist.
	ListRuns(ctx context.Context, configType string) ([]string, error)

	// ListFiles lists file names inside a run folder.
	ListFiles(ctx context.Context, configType, runID string) ([]string, error)

	// ReadObject reads one named object from a run folder.
	// Returns ErrNotFound when the object or run is absent.
	ReadObject(ctx context.Context, configType, runID, name string) ([]byte, error)

	// ListTickPartitions lists tick partition names for a YYYYMMDD date,
	// ordered by modification recency, most recent first. The order is a
	// scan-priority heuristic only; freshness is decided by tick
	// timestamps, not by this order.
	ListTickPartitions(ctx context.Context, configType, date string) ([]string, error)

	// ReadTickPartition reads one tick partition by name.
	ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error)
}

// TickPartitionPrefix returns the name prefix shared by all tick
// partitions of a date.
func TickPartitionPrefix(date string) string {
	return "ticks_" + date
}
