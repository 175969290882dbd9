package domain

// PerformanceRecord is the precomputed performance.json written by the
// trading engine at session end. When present it is the fast path for
// session summaries; sessions still running have none.
type PerformanceRecord struct {
	SessionID string        `json:"session_id"`
	Capital   *float64      `json:"capital"` // nil on old runs
	Summary   PerfSummary   `json:"summary"`
	Execution PerfExecution `json:"execution"`
	Trades    []PerfTrade   `json:"trades"`
}

// PerfSummary holds the engine's own session totals. WinRate and
// ExecutionRate are stored as fractions (0-1) and converted to 0-100
// percentages by the summarizer.
type PerfSummary struct {
	TotalPnL        float64 `json:"total_pnl"`
	CompletedTrades int     `json:"completed_trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinRate         float64 `json:"win_rate"`
	ExecutionRate   float64 `json:"execution_rate"`
	TotalDecisions  int     `json:"total_decisions"`
}

// PerfExecution holds execution-quality totals.
type PerfExecution struct {
	AvgSlippageBps float64 `json:"avg_slippage_bps"`
	TotalFees      float64 `json:"total_fees"`
}

// PerfTrade is one completed trade in the performance record's trade list.
type PerfTrade struct {
	TradeID string  `json:"trade_id,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
	Setup   string  `json:"setup,omitempty"`
	PnL     float64 `json:"pnl"`
}

// SetupKey returns the grouping key for by-setup breakdowns.
func (t *PerfTrade) SetupKey() string {
	if t.Setup == "" {
		return GroupUnknown
	}
	return t.Setup
}
