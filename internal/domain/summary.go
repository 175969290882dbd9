package domain

// SetupStats is the per-setup breakdown cell of a session summary.
type SetupStats struct {
	PnL   float64 `json:"pnl"`
	Count int     `json:"count"`
	Wins  int     `json:"wins"`
}

// RegimeStats is the per-regime breakdown cell of a session summary.
type RegimeStats struct {
	PnL   float64 `json:"pnl"`
	Count int     `json:"count"`
}

// SessionSummary is the fixed-shape statistical summary of one session.
// It is computed on demand and never mutated once returned; callers
// combine summaries into aggregates without touching them.
//
// WinRate is a 0-100 percentage. Capital is nil when the session's
// performance record does not carry one; such sessions are excluded from
// capital-relative aggregates rather than defaulted to zero.
type SessionSummary struct {
	RunID      string `json:"run_id"`
	ConfigType string `json:"config_type"`
	SessionID  string `json:"session_id,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`

	Capital *float64 `json:"capital"`

	TotalPnL    float64 `json:"total_pnl"`
	TotalTrades int     `json:"total_trades"`
	Winners     int     `json:"winners"`
	Losers      int     `json:"losers"`
	WinRate     float64 `json:"win_rate"`

	AvgWinner float64 `json:"avg_winner"`
	AvgLoser  float64 `json:"avg_loser"`

	ExecutionRate  float64 `json:"execution_rate,omitempty"`
	TotalDecisions int     `json:"total_decisions,omitempty"`
	AvgSlippageBps float64 `json:"avg_slippage_bps,omitempty"`
	TotalFees      float64 `json:"total_fees,omitempty"`

	BySetup  map[string]SetupStats  `json:"by_setup"`
	ByRegime map[string]RegimeStats `json:"by_regime"`

	Trades []ExitRecord `json:"trades,omitempty"`
}

// Date returns the session's calendar date (YYYY-MM-DD) or "" when the
// timestamp is unknown.
func (s *SessionSummary) Date() string {
	if len(s.Timestamp) < 10 {
		return ""
	}
	return s.Timestamp[:10]
}
