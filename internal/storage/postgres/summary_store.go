package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

const summaryColumns = `
	config_type, run_id, session_id, session_ts, capital,
	total_pnl, total_trades, winners, losers, win_rate,
	avg_winner, avg_loser, execution_rate, total_decisions,
	avg_slippage_bps, total_fees, by_setup, by_regime, trades
`

const insertSummaryQuery = `
	INSERT INTO session_summaries (` + summaryColumns + `)
	VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16, $17, $18, $19
	)
`

func summaryArgs(s *domain.SessionSummary) ([]any, error) {
	bySetup, err := json.Marshal(s.BySetup)
	if err != nil {
		return nil, fmt.Errorf("marshal by_setup: %w", err)
	}
	byRegime, err := json.Marshal(s.ByRegime)
	if err != nil {
		return nil, fmt.Errorf("marshal by_regime: %w", err)
	}
	trades, err := json.Marshal(s.Trades)
	if err != nil {
		return nil, fmt.Errorf("marshal trades: %w", err)
	}
	return []any{
		s.ConfigType, s.RunID, s.SessionID, s.Timestamp, s.Capital,
		s.TotalPnL, s.TotalTrades, s.Winners, s.Losers, s.WinRate,
		s.AvgWinner, s.AvgLoser, s.ExecutionRate, s.TotalDecisions,
		s.AvgSlippageBps, s.TotalFees, bySetup, byRegime, trades,
	}, nil
}

// Insert adds a new summary. Returns ErrDuplicateKey if the run was
// already archived.
func (st *SummaryStore) Insert(ctx context.Context, s *domain.SessionSummary) error {
	if s == nil || s.RunID == "" || s.ConfigType == "" {
		return storage.ErrInvalidInput
	}
	args, err := summaryArgs(s)
	if err != nil {
		return err
	}
	if _, err := st.pool.Exec(ctx, insertSummaryQuery, args...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert session summary: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the archived summary for the run.
func (st *SummaryStore) Upsert(ctx context.Context, s *domain.SessionSummary) error {
	if s == nil || s.RunID == "" || s.ConfigType == "" {
		return storage.ErrInvalidInput
	}
	args, err := summaryArgs(s)
	if err != nil {
		return err
	}
	query := insertSummaryQuery + `
	ON CONFLICT (config_type, run_id) DO UPDATE SET
		session_id = EXCLUDED.session_id,
		session_ts = EXCLUDED.session_ts,
		capital = EXCLUDED.capital,
		total_pnl = EXCLUDED.total_pnl,
		total_trades = EXCLUDED.total_trades,
		winners = EXCLUDED.winners,
		losers = EXCLUDED.losers,
		win_rate = EXCLUDED.win_rate,
		avg_winner = EXCLUDED.avg_winner,
		avg_loser = EXCLUDED.avg_loser,
		execution_rate = EXCLUDED.execution_rate,
		total_decisions = EXCLUDED.total_decisions,
		avg_slippage_bps = EXCLUDED.avg_slippage_bps,
		total_fees = EXCLUDED.total_fees,
		by_setup = EXCLUDED.by_setup,
		by_regime = EXCLUDED.by_regime,
		trades = EXCLUDED.trades
	`
	if _, err := st.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session summary: %w", err)
	}
	return nil
}

func scanSummary(row interface{ Scan(...any) error }) (*domain.SessionSummary, error) {
	var s domain.SessionSummary
	var bySetup, byRegime, trades []byte
	err := row.Scan(
		&s.ConfigType, &s.RunID, &s.SessionID, &s.Timestamp, &s.Capital,
		&s.TotalPnL, &s.TotalTrades, &s.Winners, &s.Losers, &s.WinRate,
		&s.AvgWinner, &s.AvgLoser, &s.ExecutionRate, &s.TotalDecisions,
		&s.AvgSlippageBps, &s.TotalFees, &bySetup, &byRegime, &trades,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bySetup, &s.BySetup); err != nil {
		return nil, fmt.Errorf("unmarshal by_setup: %w", err)
	}
	if err := json.Unmarshal(byRegime, &s.ByRegime); err != nil {
		return nil, fmt.Errorf("unmarshal by_regime: %w", err)
	}
	if err := json.Unmarshal(trades, &s.Trades); err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}
	return &s, nil
}

// GetByRunID retrieves one archived summary. Returns ErrNotFound if the
// run was never archived.
func (st *SummaryStore) GetByRunID(ctx context.Context, configType, runID string) (*domain.SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries WHERE config_type = $1 AND run_id = $2`
	s, err := scanSummary(st.pool.QueryRow(ctx, query, configType, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get session summary: %w", err)
	}
	return s, nil
}

// ListByDateRange retrieves archived summaries ordered by session
// timestamp ASC. Empty bounds are open.
func (st *SummaryStore) ListByDateRange(ctx context.Context, configType, from, to string) ([]domain.SessionSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM session_summaries
		WHERE config_type = $1
		AND ($2 = '' OR substr(session_ts, 1, 10) >= $2)
		AND ($3 = '' OR substr(session_ts, 1, 10) <= $3)
		ORDER BY session_ts ASC, run_id ASC
	`
	rows, err := st.pool.Query(ctx, query, configType, from, to)
	if err != nil {
		return nil, fmt.Errorf("list session summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.SessionSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session summaries: %w", err)
	}
	return out, nil
}

// ListRunIDs lists archived run IDs, most recent first.
func (st *SummaryStore) ListRunIDs(ctx context.Context, configType string) ([]string, error) {
	query := `SELECT run_id FROM session_summaries WHERE config_type = $1 ORDER BY run_id DESC`
	rows, err := st.pool.Query(ctx, query, configType)
	if err != nil {
		return nil, fmt.Errorf("list run ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		out = append(out, runID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run ids: %w", err)
	}
	return out, nil
}
