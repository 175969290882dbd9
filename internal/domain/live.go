package domain

// LiveSummary is the complete live-trading view for one active session:
// realized P&L from the analytics log plus mark-to-market on open
// positions, with capital utilization derived from the configured
// initial capital.
type LiveSummary struct {
	RunID      string `json:"run_id"`
	ConfigType string `json:"config_type"`

	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	TotalPnL      float64 `json:"total_pnl"`

	OpenPositions     []Position `json:"open_positions"`
	OpenPositionCount int        `json:"open_position_count"`
	ClosedTrades      int        `json:"closed_trades"`
	Winners           int        `json:"winners"`
	Losers            int        `json:"losers"`
	WinRate           float64    `json:"win_rate"`

	InitialCapital        float64 `json:"initial_capital"`
	CapitalInPositions    float64 `json:"capital_in_positions"`
	AvailableCapital      float64 `json:"available_capital"`
	CapitalUtilizationPct float64 `json:"capital_utilization_pct"`

	SymbolsSearched int       `json:"symbols_searched"`
	SymbolsMatched  int       `json:"symbols_matched"`
	Anomalies       []Anomaly `json:"anomalies,omitempty"`

	LastUpdated string `json:"last_updated"`
}
