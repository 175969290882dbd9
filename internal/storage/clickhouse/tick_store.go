package clickhouse

import (
	"context"
	"fmt"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

// TickStore implements storage.TickStore using ClickHouse. Ticks are
// append-only rows in a MergeTree ordered by (config_type, trade_date,
// symbol, ts); latest-price lookups collapse them with argMax.
type TickStore struct {
	conn *Conn
}

// NewTickStore creates a new TickStore.
func NewTickStore(conn *Conn) *TickStore {
	return &TickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// InsertBulk appends ticks for a config type and YYYYMMDD date.
// Symbols are stored normalized, without exchange prefix.
func (st *TickStore) InsertBulk(ctx context.Context, configType, date string, ticks []domain.Tick) error {
	if configType == "" || date == "" {
		return storage.ErrInvalidInput
	}
	if len(ticks) == 0 {
		return nil
	}

	batch, err := st.conn.PrepareBatch(ctx, `
		INSERT INTO ticks (config_type, trade_date, symbol, price, volume, ts)
	`)
	if err != nil {
		return fmt.Errorf("prepare tick batch: %w", err)
	}

	for _, tk := range ticks {
		err := batch.Append(
			configType,
			date,
			domain.NormalizeSymbol(tk.Symbol),
			tk.Price,
			tk.Volume,
			tk.TS,
		)
		if err != nil {
			return fmt.Errorf("append tick: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send tick batch: %w", err)
	}
	return nil
}

// LatestBySymbol returns the freshest tick per requested symbol for the
// date. Freshness is by the tick's own ts, not insertion order.
func (st *TickStore) LatestBySymbol(ctx context.Context, configType, date string, symbols []string) (map[string]domain.Tick, error) {
	out := make(map[string]domain.Tick)
	if len(symbols) == 0 {
		return out, nil
	}

	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = domain.NormalizeSymbol(s)
	}

	query := `
		SELECT
			symbol,
			argMax(price, ts) AS price,
			argMax(volume, ts) AS volume,
			max(ts) AS ts
		FROM ticks
		WHERE config_type = ? AND trade_date = ? AND symbol IN (?)
		GROUP BY symbol
	`
	rows, err := st.conn.Query(ctx, query, configType, date, normalized)
	if err != nil {
		return nil, fmt.Errorf("query latest ticks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tk domain.Tick
		if err := rows.Scan(&tk.Symbol, &tk.Price, &tk.Volume, &tk.TS); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		out[tk.Symbol] = tk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return out, nil
}
