// Package decode parses the line-oriented log formats written by the
// trading engine. Logs are append-only and may end in a torn line or
// carry the odd corrupt record; decoding skips bad lines and reports how
// many were dropped instead of failing the whole file.
package decode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"trading-dashboard/internal/domain"
)

// maxLineSize bounds a single JSONL line. Decision events carry full
// trade plans and can run long.
const maxLineSize = 4 * 1024 * 1024

func scanner(data []byte) *bufio.Scanner {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// Events decodes events.jsonl. Lines that are not valid JSON or carry an
// unrecognized event type are skipped; the second return is the skip
// count.
func Events(data []byte) ([]domain.Event, int) {
	var events []domain.Event
	skipped := 0
	sc := scanner(data)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev domain.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			skipped++
			continue
		}
		switch ev.Type {
		case domain.EventTypeDecision, domain.EventTypeTrigger, domain.EventTypeExit:
		default:
			skipped++
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		skipped++
	}
	return events, skipped
}

// ExitRecords decodes analytics.jsonl into completed-trade records.
// Lines without a trade_id are not trade records and are skipped.
func ExitRecords(data []byte) ([]domain.ExitRecord, int) {
	var records []domain.ExitRecord
	skipped := 0
	sc := scanner(data)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec domain.ExitRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			skipped++
			continue
		}
		if rec.TradeID == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		skipped++
	}
	return records, skipped
}

// Ticks decodes a tick partition. Ticks without a symbol or with a
// non-positive price are skipped.
func Ticks(data []byte) ([]domain.Tick, int) {
	var ticks []domain.Tick
	skipped := 0
	sc := scanner(data)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var tk domain.Tick
		if err := json.Unmarshal([]byte(line), &tk); err != nil {
			skipped++
			continue
		}
		if tk.Symbol == "" || tk.Price <= 0 {
			skipped++
			continue
		}
		ticks = append(ticks, tk)
	}
	if err := sc.Err(); err != nil {
		skipped++
	}
	return ticks, skipped
}

// Performance decodes a performance.json snapshot. Unlike the JSONL
// decoders this is all-or-nothing: a corrupt snapshot returns an error so
// callers can fall back to folding the raw trade records.
func Performance(data []byte) (*domain.PerformanceRecord, error) {
	var rec domain.PerformanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode performance snapshot: %w", err)
	}
	return &rec, nil
}
