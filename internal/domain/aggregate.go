package domain

// SetupRow is one row of the aggregate per-setup table, sorted descending
// by PnL in AggregateSummary.BySetup.
type SetupRow struct {
	Setup   string  `json:"setup"`
	Trades  int     `json:"trades"`
	PnL     float64 `json:"pnl"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	AvgPnL  float64 `json:"avg_pnl"`
}

// DailyEntry is one day of the aggregate series, sorted ascending by date.
// ReturnPct and CumulativeReturnPct are nil for days without known capital.
type DailyEntry struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	RunID   string  `json:"run_id"`
	PnL     float64 `json:"pnl"`
	Trades  int     `json:"trades"`
	Winners int     `json:"winners"`
	Losers  int     `json:"losers"`
	WinRate float64 `json:"win_rate"`

	Capital             *float64 `json:"capital,omitempty"`
	ReturnPct           *float64 `json:"return_pct,omitempty"`
	CumulativePnL       float64  `json:"cumulative_pnl"`
	CumulativeReturnPct *float64 `json:"cumulative_return_pct,omitempty"`
}

// AggregateSummary rolls N session summaries into one view.
//
// The recorded per-session total_pnl is net of fees; fees are tracked as a
// separate running total. GrossPnL adds them back, NetPnL equals the
// recorded total. Both are exposed explicitly because the two derivations
// diverged historically.
type AggregateSummary struct {
	ConfigType string `json:"config_type"`
	Days       int    `json:"days"`

	GrossPnL float64 `json:"gross_pnl"`
	NetPnL   float64 `json:"net_pnl"`
	TotalPnL float64 `json:"total_pnl"`

	TotalTrades int     `json:"total_trades"`
	Winners     int     `json:"winners"`
	Losers      int     `json:"losers"`
	WinRate     float64 `json:"win_rate"`
	TotalFees   float64 `json:"total_fees"`

	AvgPnLPerDay   float64 `json:"avg_pnl_per_day"`
	AvgPnLPerTrade float64 `json:"avg_pnl_per_trade"`

	// Capital-relative return across capital-bearing sessions only.
	// CapitalDays counts the sessions that contributed.
	CumulativeReturnPct float64 `json:"cumulative_return_pct"`
	AvgDailyReturnPct   float64 `json:"avg_daily_return_pct"`
	CapitalDays         int     `json:"capital_days"`

	BySetup  []SetupRow             `json:"by_setup"`
	ByRegime map[string]RegimeStats `json:"by_regime"`
	Daily    []DailyEntry           `json:"daily_data"`
	Trades   []ExitRecord           `json:"trades,omitempty"`

	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}
