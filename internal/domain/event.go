package domain

import "strings"

// EventType identifies the trade-lifecycle event variant.
type EventType string

// Event type constants, matching the values written to events.jsonl.
const (
	EventTypeDecision EventType = "DECISION"
	EventTypeTrigger  EventType = "TRIGGER"
	EventTypeExit     EventType = "EXIT"
)

// Trade side constants.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Event is one immutable record from the trade lifecycle log.
// It is a tagged union: exactly the payload matching Type is non-nil,
// the other two are nil.
type Event struct {
	TradeID string    `json:"trade_id"`
	Type    EventType `json:"type"`
	TS      string    `json:"ts"` // ISO-8601, lexically sortable
	Symbol  string    `json:"symbol"`

	Decision *DecisionPayload `json:"decision,omitempty"`
	Trigger  *TriggerPayload  `json:"trigger,omitempty"`
	Exit     *ExitPayload     `json:"exit,omitempty"`
}

// DecisionPayload carries the accept/reject decision for a planned trade.
// The engine treats it as opaque detail; it is surfaced only in trade details.
type DecisionPayload struct {
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Plan     map[string]any `json:"plan,omitempty"`
}

// TriggerPayload carries the fill that opened a trade.
type TriggerPayload struct {
	Side        string  `json:"side"` // BUY | SELL
	Qty         int     `json:"qty"`
	ActualPrice float64 `json:"actual_price"`
	Strategy    string  `json:"strategy"`
}

// ExitPayload carries one partial-fill exit quantity.
type ExitPayload struct {
	Qty int `json:"qty"`
}

// NormalizeSymbol strips any exchange prefix ("NSE:RELIANCE" -> "RELIANCE").
// Upstream logs are inconsistent about prefixing, so all engine-internal
// symbol keys are normalized.
func NormalizeSymbol(symbol string) string {
	if i := strings.IndexByte(symbol, ':'); i >= 0 {
		return symbol[i+1:]
	}
	return symbol
}

// SymbolVariants returns the forms a symbol may appear under in tick data:
// the bare symbol and the exchange-prefixed one.
func SymbolVariants(symbol string) []string {
	bare := NormalizeSymbol(symbol)
	return []string{bare, "NSE:" + bare}
}

// TradeDetails bundles one trade's full recorded history.
type TradeDetails struct {
	TradeID string       `json:"trade_id"`
	RunID   string       `json:"run_id"`
	Events  []Event      `json:"events"`
	Exits   []ExitRecord `json:"exits"`
}
