package storage

import (
	"context"

	"trading-dashboard/internal/domain"
)

// SummaryStore archives per-session summaries. The archive is a
// rebuildable projection of the session logs: the log source stays the
// source of truth, the store exists so multi-month aggregates do not
// re-read every log on every request.
type SummaryStore interface {
	// Insert adds a new summary. Returns ErrDuplicateKey if
	// (config_type, run_id) exists.
	Insert(ctx context.Context, s *domain.SessionSummary) error

	// Upsert inserts or replaces the summary for (config_type, run_id).
	Upsert(ctx context.Context, s *domain.SessionSummary) error

	// GetByRunID retrieves one archived summary. Returns ErrNotFound if
	// not exists.
	GetByRunID(ctx context.Context, configType, runID string) (*domain.SessionSummary, error)

	// ListByDateRange retrieves summaries for a config type whose
	// session date (YYYY-MM-DD) falls in [from, to] inclusive; empty
	// bounds are open. Ordered by session timestamp ASC.
	ListByDateRange(ctx context.Context, configType, from, to string) ([]domain.SessionSummary, error)

	// ListRunIDs lists archived run IDs for a config type, most recent
	// first.
	ListRunIDs(ctx context.Context, configType string) ([]string, error)
}

// TickStore holds per-day tick snapshots in columnar form for fast
// latest-price lookups across large symbol sets.
type TickStore interface {
	// InsertBulk appends ticks for a config type and YYYYMMDD date.
	InsertBulk(ctx context.Context, configType, date string, ticks []domain.Tick) error

	// LatestBySymbol returns the freshest tick per requested symbol for
	// the date. Symbols with no tick that day are absent from the
	// result, not an error.
	LatestBySymbol(ctx context.Context, configType, date string, symbols []string) (map[string]domain.Tick, error)
}
