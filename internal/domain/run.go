package domain

import (
	"strings"
	"time"
)

// Run ID prefixes. A run folder is named <prefix><YYYYMMDD_HHMMSS>.
var runPrefixes = []string{"paper_", "live_"}

// RunInfo describes one available session in a listing.
type RunInfo struct {
	RunID       string  `json:"run_id"`
	ConfigType  string  `json:"config_type"`
	Timestamp   string  `json:"timestamp"` // ISO-8601 or "Unknown"
	TotalPnL    float64 `json:"total_pnl"`
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
}

// TimestampUnknown is used when a run ID carries no parseable timestamp.
const TimestampUnknown = "Unknown"

// ParseRunTimestamp extracts the ISO-8601 timestamp embedded in a run ID
// such as "paper_20260101_084724". The second return is false when the ID
// does not follow the convention.
func ParseRunTimestamp(runID string) (string, bool) {
	for _, prefix := range runPrefixes {
		if !strings.HasPrefix(runID, prefix) {
			continue
		}
		ts, err := time.Parse("20060102_150405", strings.TrimPrefix(runID, prefix))
		if err != nil {
			continue
		}
		return ts.Format("2006-01-02T15:04:05"), true
	}
	return "", false
}

// IsRunID reports whether a folder name looks like a run folder.
func IsRunID(name string) bool {
	for _, prefix := range runPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
