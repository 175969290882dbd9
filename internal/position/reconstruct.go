// Package position rebuilds open-position state from a session's event
// stream. Reconstruction is a pure fold: the same logs always produce the
// same position set.
package position

import (
	"sort"

	"trading-dashboard/internal/domain"
)

// Result is the outcome of replaying one session's logs.
type Result struct {
	// Open holds positions with remaining quantity and no final exit,
	// sorted by entry time.
	Open []domain.Position
	// Closed holds one final-exit record per completed trade, in log
	// order.
	Closed []domain.ExitRecord
	// RealizedPnL is the sum of completed trades' total P&L.
	RealizedPnL float64
	// Anomalies records data-integrity problems encountered during the
	// fold. They never abort reconstruction.
	Anomalies []domain.Anomaly
}

// Reconstruct replays a session's events against its exit records.
//
// Each TRIGGER opens a candidate position; EXIT events draw down its
// remaining quantity; a final-exit record closes the trade outright,
// whatever the quantity bookkeeping says. EXIT events for trades that
// never triggered cannot be turned into positions (there is no entry
// price to derive) and are flagged instead. Over-exited quantities are
// clamped to zero and flagged.
func Reconstruct(events []domain.Event, exits []domain.ExitRecord) Result {
	var res Result

	candidates := make(map[string]*domain.Position)
	exited := make(map[string]int)
	flaggedOrphan := make(map[string]bool)

	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case domain.EventTypeTrigger:
			if ev.Trigger == nil || candidates[ev.TradeID] != nil {
				continue
			}
			candidates[ev.TradeID] = &domain.Position{
				TradeID:    ev.TradeID,
				Symbol:     domain.NormalizeSymbol(ev.Symbol),
				Side:       ev.Trigger.Side,
				EntryPrice: ev.Trigger.ActualPrice,
				OpenedQty:  ev.Trigger.Qty,
				Setup:      ev.Trigger.Strategy,
				EntryTime:  ev.TS,
			}
		case domain.EventTypeExit:
			if ev.Exit == nil {
				continue
			}
			exited[ev.TradeID] += ev.Exit.Qty
		}
	}

	finalExit := make(map[string]bool)
	for _, rec := range exits {
		if !rec.IsFinalExit {
			continue
		}
		finalExit[rec.TradeID] = true
		res.Closed = append(res.Closed, rec)
		res.RealizedPnL += rec.TotalTradePnL
	}

	for tradeID := range exited {
		if candidates[tradeID] == nil && !finalExit[tradeID] && !flaggedOrphan[tradeID] {
			flaggedOrphan[tradeID] = true
			res.Anomalies = append(res.Anomalies, domain.Anomaly{
				TradeID: tradeID,
				Kind:    domain.AnomalyUnreconciledExit,
				Detail:  "exit event without a trigger",
			})
		}
	}

	for tradeID, pos := range candidates {
		if finalExit[tradeID] {
			continue
		}
		pos.ExitedQty = exited[tradeID]
		pos.RemainingQty = pos.OpenedQty - pos.ExitedQty
		if pos.RemainingQty < 0 {
			res.Anomalies = append(res.Anomalies, domain.Anomaly{
				TradeID: tradeID,
				Kind:    domain.AnomalyOverExit,
				Detail:  "exited quantity exceeds opened quantity",
			})
			pos.RemainingQty = 0
		}
		if pos.RemainingQty > 0 {
			res.Open = append(res.Open, *pos)
		}
	}

	sort.Slice(res.Open, func(i, j int) bool {
		if res.Open[i].EntryTime != res.Open[j].EntryTime {
			return res.Open[i].EntryTime < res.Open[j].EntryTime
		}
		return res.Open[i].TradeID < res.Open[j].TradeID
	})
	sort.Slice(res.Anomalies, func(i, j int) bool {
		if res.Anomalies[i].TradeID != res.Anomalies[j].TradeID {
			return res.Anomalies[i].TradeID < res.Anomalies[j].TradeID
		}
		return res.Anomalies[i].Kind < res.Anomalies[j].Kind
	})
	return res
}
