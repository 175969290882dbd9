package reporting

import (
	"time"

	"trading-dashboard/internal/domain"
)

// Report is a rendered-ready view of one config type's aggregate
// performance over a date range.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	ConfigType  string
	DateFrom    string
	DateTo      string

	// Totals
	Days           int
	TotalTrades    int
	Winners        int
	Losers         int
	WinRate        float64
	GrossPnL       float64
	NetPnL         float64
	TotalFees      float64
	AvgPnLPerDay   float64
	AvgPnLPerTrade float64

	// Capital-relative metrics; CapitalDays counts the sessions they
	// were computable for.
	CapitalDays         int
	CumulativeReturnPct float64
	AvgDailyReturnPct   float64

	// Breakdown tables
	BySetup []domain.SetupRow
	Daily   []domain.DailyEntry
}
