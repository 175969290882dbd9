package domain

// Tick is one market-data observation from a partitioned per-day snapshot.
type Tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
	TS     string  `json:"ts"` // ISO-8601, lexically sortable
}
