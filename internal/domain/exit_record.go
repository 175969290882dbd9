package domain

// ExitRecord is one record from the analytics log: one row per fill,
// partial or final. For a given trade exactly one record has
// IsFinalExit=true; its TotalTradePnL is the trade's total realized P&L.
type ExitRecord struct {
	TradeID       string  `json:"trade_id"`
	Symbol        string  `json:"symbol"`
	PnL           float64 `json:"pnl"`             // this fill's realized P&L
	TotalTradePnL float64 `json:"total_trade_pnl"` // trade-cumulative P&L
	IsFinalExit   bool    `json:"is_final_exit"`
	SetupType     string  `json:"setup_type,omitempty"`
	Regime        string  `json:"regime,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	TS            string  `json:"ts,omitempty"`
}

// GroupUnknown is the grouping key used when a record carries no
// setup_type or regime tag.
const GroupUnknown = "unknown"

// Setup returns the grouping key for by-setup breakdowns.
func (r *ExitRecord) Setup() string {
	if r.SetupType == "" {
		return GroupUnknown
	}
	return r.SetupType
}

// RegimeKey returns the grouping key for by-regime breakdowns.
func (r *ExitRecord) RegimeKey() string {
	if r.Regime == "" {
		return GroupUnknown
	}
	return r.Regime
}
