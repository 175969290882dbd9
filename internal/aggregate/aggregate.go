// Package aggregate rolls per-session summaries into multi-session
// statistics: cumulative P&L, capital-relative returns, merged setup and
// regime breakdowns, and a per-day series.
package aggregate

import (
	"sort"

	"trading-dashboard/internal/domain"
)

// FilterByDate keeps summaries whose session date falls inside the
// inclusive [from, to] range. Bounds are ISO dates (YYYY-MM-DD) compared
// lexically against the first 10 characters of the session timestamp;
// an empty bound is open. Summaries with no parseable timestamp are
// dropped by any bounded filter.
func FilterByDate(summaries []domain.SessionSummary, from, to string) []domain.SessionSummary {
	if from == "" && to == "" {
		return summaries
	}
	out := make([]domain.SessionSummary, 0, len(summaries))
	for _, s := range summaries {
		date := s.Date()
		if date == "" {
			continue
		}
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Combine folds session summaries into one AggregateSummary.
//
// The fee convention is fixed here: recorded session P&L is net of fees,
// so NetPnL equals the summed total and GrossPnL adds total fees back.
// Return percentages are computed only over capital-bearing sessions;
// sessions without capital count toward Days but not toward any
// return denominator.
func Combine(configType string, summaries []domain.SessionSummary) domain.AggregateSummary {
	agg := domain.AggregateSummary{
		ConfigType: configType,
		BySetup:    []domain.SetupRow{},
		ByRegime:   make(map[string]domain.RegimeStats),
		Daily:      []domain.DailyEntry{},
	}
	if len(summaries) == 0 {
		return agg
	}

	ordered := make([]domain.SessionSummary, len(summaries))
	copy(ordered, summaries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Timestamp != ordered[j].Timestamp {
			return ordered[i].Timestamp < ordered[j].Timestamp
		}
		return ordered[i].RunID < ordered[j].RunID
	})

	setupTotals := make(map[string]domain.SetupStats)
	var setupOrder []string
	var returnPctSum float64

	for _, s := range ordered {
		agg.Days++
		agg.TotalPnL += s.TotalPnL
		agg.TotalTrades += s.TotalTrades
		agg.Winners += s.Winners
		agg.Losers += s.Losers
		agg.TotalFees += s.TotalFees
		agg.Trades = append(agg.Trades, s.Trades...)

		keys := make([]string, 0, len(s.BySetup))
		for k := range s.BySetup {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, seen := setupTotals[k]; !seen {
				setupOrder = append(setupOrder, k)
			}
			st := setupTotals[k]
			add := s.BySetup[k]
			st.PnL += add.PnL
			st.Count += add.Count
			st.Wins += add.Wins
			setupTotals[k] = st
		}
		for k, add := range s.ByRegime {
			rs := agg.ByRegime[k]
			rs.PnL += add.PnL
			rs.Count += add.Count
			agg.ByRegime[k] = rs
		}

		entry := domain.DailyEntry{
			Date:    s.Date(),
			RunID:   s.RunID,
			PnL:     s.TotalPnL,
			Trades:  s.TotalTrades,
			Winners: s.Winners,
			Losers:  s.Losers,
			WinRate: s.WinRate,
			Capital: s.Capital,
		}
		if s.Capital != nil && *s.Capital > 0 {
			agg.CapitalDays++
			ret := s.TotalPnL / *s.Capital * 100
			entry.ReturnPct = &ret
			returnPctSum += ret
			cum := returnPctSum
			entry.CumulativeReturnPct = &cum
		}
		agg.Daily = append(agg.Daily, entry)
	}

	cum := 0.0
	for i := range agg.Daily {
		cum += agg.Daily[i].PnL
		agg.Daily[i].CumulativePnL = cum
	}

	if agg.TotalTrades > 0 {
		agg.WinRate = float64(agg.Winners) / float64(agg.TotalTrades) * 100
		agg.AvgPnLPerTrade = agg.TotalPnL / float64(agg.TotalTrades)
	}
	if agg.Days > 0 {
		agg.AvgPnLPerDay = agg.TotalPnL / float64(agg.Days)
	}
	if agg.CapitalDays > 0 {
		agg.CumulativeReturnPct = returnPctSum
		agg.AvgDailyReturnPct = returnPctSum / float64(agg.CapitalDays)
	}

	// Recorded P&L is already net of fees.
	agg.NetPnL = agg.TotalPnL
	agg.GrossPnL = agg.TotalPnL + agg.TotalFees

	for _, k := range setupOrder {
		st := setupTotals[k]
		row := domain.SetupRow{
			Setup:  k,
			Trades: st.Count,
			PnL:    st.PnL,
			Wins:   st.Wins,
		}
		if st.Count > 0 {
			row.WinRate = float64(st.Wins) / float64(st.Count) * 100
			row.AvgPnL = st.PnL / float64(st.Count)
		}
		agg.BySetup = append(agg.BySetup, row)
	}
	sort.SliceStable(agg.BySetup, func(i, j int) bool {
		return agg.BySetup[i].PnL > agg.BySetup[j].PnL
	})

	agg.DateFrom = agg.Daily[0].Date
	agg.DateTo = agg.Daily[len(agg.Daily)-1].Date
	return agg
}
