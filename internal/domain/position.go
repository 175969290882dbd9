package domain

// Position is an open position derived from the event log. It is never
// persisted; the reconstructor recomputes it from TRIGGER and EXIT events
// plus the final-exit set on every call.
//
// Invariant: RemainingQty = OpenedQty - ExitedQty, clamped at zero.
type Position struct {
	TradeID      string  `json:"trade_id"`
	Symbol       string  `json:"symbol"` // normalized, no exchange prefix
	Side         string  `json:"side"`   // BUY | SELL
	EntryPrice   float64 `json:"entry_price"`
	OpenedQty    int     `json:"qty"`
	ExitedQty    int     `json:"exited_qty"`
	RemainingQty int     `json:"remaining_qty"`
	Setup        string  `json:"setup"`
	EntryTime    string  `json:"entry_time"`

	// Mark-to-market fields, populated by the marks resolver. TickFound
	// distinguishes a real zero-change tick from "no tick resolved".
	TickFound      bool    `json:"tick_found"`
	CurrentPrice   float64 `json:"current_price"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	PriceChange    float64 `json:"price_change"`
	PriceChangePct float64 `json:"price_change_pct"`
}

// Anomaly flags a data-integrity problem observed during reconstruction.
// Anomalies are reported alongside results, never raised as errors.
type Anomaly struct {
	TradeID string `json:"trade_id"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
}

// Anomaly kind constants.
const (
	AnomalyUnreconciledExit = "unreconciled_exit" // EXIT without a TRIGGER
	AnomalyOverExit         = "over_exit"         // exited qty exceeds opened qty
)
