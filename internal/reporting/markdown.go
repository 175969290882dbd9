package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Trading Report: %s\n\n", r.ConfigType))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.DateFrom != "" || r.DateTo != "" {
		sb.WriteString(fmt.Sprintf("Range: %s to %s | Sessions: %d\n\n", r.DateFrom, r.DateTo, r.Days))
	} else {
		sb.WriteString(fmt.Sprintf("Sessions: %d\n\n", r.Days))
	}

	// Totals
	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Winners | %d |\n", r.Winners))
	sb.WriteString(fmt.Sprintf("| Losers | %d |\n", r.Losers))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", r.WinRate))
	sb.WriteString(fmt.Sprintf("| Gross P&L | %.2f |\n", r.GrossPnL))
	sb.WriteString(fmt.Sprintf("| Net P&L | %.2f |\n", r.NetPnL))
	sb.WriteString(fmt.Sprintf("| Total Fees | %.2f |\n", r.TotalFees))
	sb.WriteString(fmt.Sprintf("| Avg P&L / Day | %.2f |\n", r.AvgPnLPerDay))
	sb.WriteString(fmt.Sprintf("| Avg P&L / Trade | %.2f |\n", r.AvgPnLPerTrade))
	sb.WriteString("\n")

	// Capital-relative returns
	sb.WriteString("## Returns\n\n")
	if r.CapitalDays > 0 {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Capital Days | %d |\n", r.CapitalDays))
		sb.WriteString(fmt.Sprintf("| Cumulative Return | %.2f%% |\n", r.CumulativeReturnPct))
		sb.WriteString(fmt.Sprintf("| Avg Daily Return | %.2f%% |\n", r.AvgDailyReturnPct))
	} else {
		sb.WriteString("No sessions with recorded capital; capital-relative returns unavailable.\n")
	}
	sb.WriteString("\n")

	// Setup breakdown
	sb.WriteString("## By Setup\n\n")
	if len(r.BySetup) > 0 {
		sb.WriteString("| Setup | Trades | P&L | Wins | WinRate | Avg P&L |\n")
		sb.WriteString("|-------|--------|-----|------|---------|--------|\n")
		for _, row := range r.BySetup {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %d | %.2f | %.2f |\n",
				row.Setup, row.Trades, row.PnL, row.Wins, row.WinRate, row.AvgPnL))
		}
	} else {
		sb.WriteString("No setup breakdown available.\n")
	}
	sb.WriteString("\n")

	// Daily series
	sb.WriteString("## Daily\n\n")
	if len(r.Daily) > 0 {
		sb.WriteString("| Date | Run | Trades | P&L | WinRate | Return% | Cum P&L | Cum Return% |\n")
		sb.WriteString("|------|-----|--------|-----|---------|---------|---------|-------------|\n")
		for _, d := range r.Daily {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %.2f | %s | %.2f | %s |\n",
				d.Date, d.RunID, d.Trades, d.PnL, d.WinRate,
				fmtPct(d.ReturnPct), d.CumulativePnL, fmtPct(d.CumulativeReturnPct)))
		}
	} else {
		sb.WriteString("No daily data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func fmtPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
