package reporting

import (
	"context"
	"time"

	"trading-dashboard/internal/domain"
)

// Aggregator supplies the aggregate a report is built from.
type Aggregator interface {
	Aggregate(ctx context.Context, configType, from, to string) (domain.AggregateSummary, error)
}

// Generator produces reports from aggregated session data.
type Generator struct {
	aggregator Aggregator
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(aggregator Aggregator) *Generator {
	return &Generator{
		aggregator: aggregator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for one config type over an inclusive date
// range; empty bounds are open.
func (g *Generator) Generate(ctx context.Context, configType, from, to string) (*Report, error) {
	agg, err := g.aggregator.Aggregate(ctx, configType, from, to)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:         g.now(),
		ConfigType:          configType,
		DateFrom:            agg.DateFrom,
		DateTo:              agg.DateTo,
		Days:                agg.Days,
		TotalTrades:         agg.TotalTrades,
		Winners:             agg.Winners,
		Losers:              agg.Losers,
		WinRate:             agg.WinRate,
		GrossPnL:            agg.GrossPnL,
		NetPnL:              agg.NetPnL,
		TotalFees:           agg.TotalFees,
		AvgPnLPerDay:        agg.AvgPnLPerDay,
		AvgPnLPerTrade:      agg.AvgPnLPerTrade,
		CapitalDays:         agg.CapitalDays,
		CumulativeReturnPct: agg.CumulativeReturnPct,
		AvgDailyReturnPct:   agg.AvgDailyReturnPct,
		BySetup:             agg.BySetup,
		Daily:               agg.Daily,
	}, nil
}
