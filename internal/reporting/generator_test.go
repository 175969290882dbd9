package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/domain"
)

type stubAggregator struct {
	agg domain.AggregateSummary
	err error
}

func (s *stubAggregator) Aggregate(ctx context.Context, configType, from, to string) (domain.AggregateSummary, error) {
	return s.agg, s.err
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func sampleAggregate() domain.AggregateSummary {
	ret := 1.5
	cum := 1.5
	capital := 200000.0
	return domain.AggregateSummary{
		ConfigType:  "nifty-intraday",
		Days:        2,
		GrossPnL:    3500,
		NetPnL:      3000,
		TotalPnL:    3000,
		TotalTrades: 5,
		Winners:     3,
		Losers:      2,
		WinRate:     60,
		TotalFees:   500,

		AvgPnLPerDay:   1500,
		AvgPnLPerTrade: 600,

		CumulativeReturnPct: 1.5,
		AvgDailyReturnPct:   0.75,
		CapitalDays:         1,

		BySetup: []domain.SetupRow{
			{Setup: "orb_breakout", Trades: 3, PnL: 2400, Wins: 2, WinRate: 66.67, AvgPnL: 800},
			{Setup: "vwap_fade", Trades: 2, PnL: 600, Wins: 1, WinRate: 50, AvgPnL: 300},
		},
		Daily: []domain.DailyEntry{
			{Date: "2025-03-06", RunID: "20250306_091500", Trades: 3, Winners: 2, Losers: 1,
				WinRate: 66.67, PnL: 2400, Capital: &capital, ReturnPct: &ret,
				CumulativePnL: 2400, CumulativeReturnPct: &cum},
			{Date: "2025-03-07", RunID: "20250307_091500", Trades: 2, Winners: 1, Losers: 1,
				WinRate: 50, PnL: 600, CumulativePnL: 3000},
		},
		DateFrom: "2025-03-06",
		DateTo:   "2025-03-07",
	}
}

func TestGenerateMapsAggregate(t *testing.T) {
	gen := NewGenerator(&stubAggregator{agg: sampleAggregate()}).WithClock(fixedClock)

	report, err := gen.Generate(context.Background(), "nifty-intraday", "2025-03-06", "2025-03-07")
	require.NoError(t, err)

	assert.Equal(t, fixedClock(), report.GeneratedAt)
	assert.Equal(t, "nifty-intraday", report.ConfigType)
	assert.Equal(t, "2025-03-06", report.DateFrom)
	assert.Equal(t, "2025-03-07", report.DateTo)
	assert.Equal(t, 2, report.Days)
	assert.Equal(t, 5, report.TotalTrades)
	assert.InDelta(t, 3500, report.GrossPnL, 1e-9)
	assert.InDelta(t, 3000, report.NetPnL, 1e-9)
	assert.InDelta(t, 500, report.TotalFees, 1e-9)
	assert.Equal(t, 1, report.CapitalDays)
	assert.Len(t, report.BySetup, 2)
	assert.Len(t, report.Daily, 2)
}

func TestGeneratePropagatesError(t *testing.T) {
	gen := NewGenerator(&stubAggregator{err: context.DeadlineExceeded})

	_, err := gen.Generate(context.Background(), "nifty-intraday", "", "")
	require.Error(t, err)
}

func TestRenderMarkdown(t *testing.T) {
	gen := NewGenerator(&stubAggregator{agg: sampleAggregate()}).WithClock(fixedClock)
	report, err := gen.Generate(context.Background(), "nifty-intraday", "2025-03-06", "2025-03-07")
	require.NoError(t, err)

	md := RenderMarkdown(report)

	assert.Contains(t, md, "# Trading Report: nifty-intraday")
	assert.Contains(t, md, "Range: 2025-03-06 to 2025-03-07 | Sessions: 2")
	assert.Contains(t, md, "| Gross P&L | 3500.00 |")
	assert.Contains(t, md, "| Net P&L | 3000.00 |")
	assert.Contains(t, md, "| Total Fees | 500.00 |")
	assert.Contains(t, md, "| orb_breakout | 3 | 2400.00 | 2 | 66.67 | 800.00 |")
	// Day without capital renders dashes for the return columns.
	assert.Contains(t, md, "| 2025-03-07 | 20250307_091500 | 2 | 600.00 | 50.00 | - | 3000.00 | - |")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	gen := NewGenerator(&stubAggregator{agg: domain.AggregateSummary{ConfigType: "nifty-intraday"}}).WithClock(fixedClock)
	report, err := gen.Generate(context.Background(), "nifty-intraday", "", "")
	require.NoError(t, err)

	md := RenderMarkdown(report)

	assert.Contains(t, md, "No setup breakdown available.")
	assert.Contains(t, md, "No daily data available.")
	assert.Contains(t, md, "capital-relative returns unavailable")
}

func TestRenderDailyCSV(t *testing.T) {
	gen := NewGenerator(&stubAggregator{agg: sampleAggregate()}).WithClock(fixedClock)
	report, err := gen.Generate(context.Background(), "nifty-intraday", "", "")
	require.NoError(t, err)

	csv := RenderDailyCSV(report)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,run_id,trades,winners,losers,win_rate,pnl,return_pct,cumulative_pnl,cumulative_return_pct", lines[0])
	assert.Equal(t, "2025-03-06,20250306_091500,3,2,1,66.6700,2400.0000,1.5000,2400.0000,1.5000", lines[1])
	// Missing capital leaves the return columns empty.
	assert.Equal(t, "2025-03-07,20250307_091500,2,1,1,50.0000,600.0000,,3000.0000,", lines[2])
}

func TestRenderSetupCSV(t *testing.T) {
	gen := NewGenerator(&stubAggregator{agg: sampleAggregate()}).WithClock(fixedClock)
	report, err := gen.Generate(context.Background(), "nifty-intraday", "", "")
	require.NoError(t, err)

	csv := RenderSetupCSV(report)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "setup,trades,pnl,wins,win_rate,avg_pnl", lines[0])
	assert.Equal(t, "orb_breakout,3,2400.0000,2,66.6700,800.0000", lines[1])
}
