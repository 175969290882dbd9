// Package summary turns one session's exit records, or its precomputed
// performance snapshot, into a fixed-shape statistical summary.
package summary

import (
	"trading-dashboard/internal/domain"
)

// Summarize builds a SessionSummary for one run.
//
// If a performance snapshot is present its totals are trusted directly
// (fast path); otherwise the summary is folded from final-exit records.
// Either way the result is immutable once returned. Rate fields are 0-100
// percentages; a session with no trades has a win rate of exactly 0.
func Summarize(runID, configType string, perf *domain.PerformanceRecord, exits []domain.ExitRecord) domain.SessionSummary {
	s := domain.SessionSummary{
		RunID:      runID,
		ConfigType: configType,
		BySetup:    make(map[string]domain.SetupStats),
		ByRegime:   make(map[string]domain.RegimeStats),
	}
	if ts, ok := domain.ParseRunTimestamp(runID); ok {
		s.Timestamp = ts
	}

	finals := finalExits(exits)
	s.Trades = finals
	for _, rec := range finals {
		rs := s.ByRegime[rec.RegimeKey()]
		rs.PnL += rec.TotalTradePnL
		rs.Count++
		s.ByRegime[rec.RegimeKey()] = rs
	}

	if perf != nil {
		s.SessionID = perf.SessionID
		s.Capital = perf.Capital
		s.TotalPnL = perf.Summary.TotalPnL
		s.TotalTrades = perf.Summary.CompletedTrades
		s.Winners = perf.Summary.Wins
		s.Losers = perf.Summary.Losses
		s.WinRate = perf.Summary.WinRate * 100
		s.ExecutionRate = perf.Summary.ExecutionRate * 100
		s.TotalDecisions = perf.Summary.TotalDecisions
		s.AvgSlippageBps = perf.Execution.AvgSlippageBps
		s.TotalFees = perf.Execution.TotalFees

		var winSum, lossSum float64
		var winN, lossN int
		for i := range perf.Trades {
			tr := &perf.Trades[i]
			st := s.BySetup[tr.SetupKey()]
			st.PnL += tr.PnL
			st.Count++
			if tr.PnL > 0 {
				st.Wins++
				winSum += tr.PnL
				winN++
			} else {
				lossSum += tr.PnL
				lossN++
			}
			s.BySetup[tr.SetupKey()] = st
		}
		if winN > 0 {
			s.AvgWinner = winSum / float64(winN)
		}
		if lossN > 0 {
			s.AvgLoser = lossSum / float64(lossN)
		}
		return s
	}

	var winSum, lossSum float64
	for _, rec := range finals {
		pnl := rec.TotalTradePnL
		s.TotalPnL += pnl
		s.TotalTrades++
		st := s.BySetup[rec.Setup()]
		st.PnL += pnl
		st.Count++
		if pnl > 0 {
			s.Winners++
			st.Wins++
			winSum += pnl
		} else {
			// Zero P&L counts as a loss.
			s.Losers++
			lossSum += pnl
		}
		s.BySetup[rec.Setup()] = st
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Winners) / float64(s.TotalTrades) * 100
	}
	if s.Winners > 0 {
		s.AvgWinner = winSum / float64(s.Winners)
	}
	if s.Losers > 0 {
		s.AvgLoser = lossSum / float64(s.Losers)
	}
	return s
}

// finalExits filters exit records down to one row per completed trade.
// The records' cumulative P&L carries each trade's total realized P&L.
func finalExits(exits []domain.ExitRecord) []domain.ExitRecord {
	var finals []domain.ExitRecord
	for _, rec := range exits {
		if rec.IsFinalExit {
			finals = append(finals, rec)
		}
	}
	return finals
}
