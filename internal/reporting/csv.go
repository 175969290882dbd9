package reporting

import (
	"fmt"
	"strings"
)

// RenderDailyCSV renders the daily series as CSV string.
func RenderDailyCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("date,run_id,trades,winners,losers,win_rate,pnl,return_pct,cumulative_pnl,cumulative_return_pct\n")

	// Rows
	for _, d := range r.Daily {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%.4f,%.4f,%s,%.4f,%s\n",
			d.Date,
			d.RunID,
			d.Trades,
			d.Winners,
			d.Losers,
			d.WinRate,
			d.PnL,
			csvPct(d.ReturnPct),
			d.CumulativePnL,
			csvPct(d.CumulativeReturnPct),
		))
	}

	return sb.String()
}

// RenderSetupCSV renders the setup breakdown as CSV string.
func RenderSetupCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("setup,trades,pnl,wins,win_rate,avg_pnl\n")
	for _, row := range r.BySetup {
		sb.WriteString(fmt.Sprintf("%s,%d,%.4f,%d,%.4f,%.4f\n",
			row.Setup, row.Trades, row.PnL, row.Wins, row.WinRate, row.AvgPnL))
	}

	return sb.String()
}

// csvPct formats an optional percentage; absent values render empty.
func csvPct(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}
