// Package marks resolves the freshest available market price for a set of
// symbols from partitioned per-day tick snapshots and applies it to open
// positions as unrealized P&L.
package marks

import (
	"context"
	"log"
	"time"

	"trading-dashboard/internal/decode"
	"trading-dashboard/internal/domain"
)

// MaxPartitionScan caps how many partitions a single resolution reads.
// Partitions are scanned newest-mtime first; symbols still unresolved
// after the cap are left absent.
const MaxPartitionScan = 5

// TickSource is the slice of the log source the resolver needs.
type TickSource interface {
	ListTickPartitions(ctx context.Context, configType, date string) ([]string, error)
	ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error)
}

// Resolver finds latest ticks for symbols.
type Resolver struct {
	src    TickSource
	logger *log.Logger
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewResolver creates a resolver over a tick source.
func NewResolver(src TickSource, logger *log.Logger) *Resolver {
	return &Resolver{src: src, logger: logger, now: time.Now}
}

// Today returns the resolver's default target date, YYYYMMDD in local
// processing time.
func (r *Resolver) Today() string {
	return r.now().Format("20060102")
}

// Resolve returns the freshest tick per requested symbol for the given
// YYYYMMDD date. Symbols with no tick that day are simply absent from the
// result. Partition read or decode failures degrade to fewer matches and
// are never returned as errors.
//
// Partition mtime order is only a scan-priority heuristic: a tick found
// later replaces an earlier one only when its ts is strictly greater.
func (r *Resolver) Resolve(ctx context.Context, configType, date string, symbols []string) map[string]domain.Tick {
	found := make(map[string]domain.Tick)
	if len(symbols) == 0 {
		return found
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[domain.NormalizeSymbol(s)] = true
	}

	partitions, err := r.src.ListTickPartitions(ctx, configType, date)
	if err != nil {
		r.logger.Printf("tick partitions for %s/%s: %v", configType, date, err)
		return found
	}
	if len(partitions) > MaxPartitionScan {
		partitions = partitions[:MaxPartitionScan]
	}

	for _, name := range partitions {
		data, err := r.src.ReadTickPartition(ctx, configType, name)
		if err != nil {
			r.logger.Printf("read tick partition %s: %v", name, err)
			continue
		}
		ticks, skipped := decode.Ticks(data)
		if skipped > 0 {
			r.logger.Printf("tick partition %s: skipped %d malformed rows", name, skipped)
		}
		for _, tk := range ticks {
			// Upstream is inconsistent about exchange prefixes, so
			// match on the normalized symbol.
			sym := domain.NormalizeSymbol(tk.Symbol)
			if !wanted[sym] {
				continue
			}
			best, ok := found[sym]
			if !ok || tk.TS > best.TS {
				tk.Symbol = sym
				found[sym] = tk
			}
		}
		if len(found) == len(wanted) {
			break
		}
	}
	return found
}

// Apply marks open positions with resolved ticks in place and returns the
// number of positions that matched a tick. Unmatched positions keep
// TickFound=false, echo the entry price as current price, and report zero
// unrealized P&L.
func Apply(positions []domain.Position, ticks map[string]domain.Tick) int {
	matched := 0
	for i := range positions {
		pos := &positions[i]
		tk, ok := ticks[pos.Symbol]
		if !ok {
			pos.TickFound = false
			pos.CurrentPrice = pos.EntryPrice
			pos.UnrealizedPnL = 0
			pos.PriceChange = 0
			pos.PriceChangePct = 0
			continue
		}
		matched++
		pos.TickFound = true
		pos.CurrentPrice = tk.Price
		pos.PriceChange = tk.Price - pos.EntryPrice
		if pos.EntryPrice != 0 {
			pos.PriceChangePct = pos.PriceChange / pos.EntryPrice * 100
		}
		if pos.Side == domain.SideSell {
			pos.UnrealizedPnL = (pos.EntryPrice - tk.Price) * float64(pos.RemainingQty)
		} else {
			pos.UnrealizedPnL = (tk.Price - pos.EntryPrice) * float64(pos.RemainingQty)
		}
	}
	return matched
}
