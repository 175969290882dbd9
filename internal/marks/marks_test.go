package marks

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/logsource/memory"
)

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFreshestTimestampWinsAcrossPartitions(t *testing.T) {
	src := memory.New()
	// Older partition first, then the newer one: the newer one lists
	// first but holds a stale X tick.
	src.PutTickPartition("fixed", "ticks_20250110_a.jsonl", []byte(
		`{"symbol":"NSE:X","price":101.0,"ts":"2025-01-10T11:00:00"}
{"symbol":"Y","price":55.0,"ts":"2025-01-10T11:30:00"}
`))
	src.PutTickPartition("fixed", "ticks_20250110_b.jsonl", []byte(
		`{"symbol":"X","price":99.0,"ts":"2025-01-10T10:00:00"}
`))

	r := NewResolver(src, discard())
	ticks := r.Resolve(context.Background(), "fixed", "20250110", []string{"X", "Y"})

	require.Len(t, ticks, 2)
	// X was found first in partition b (scanned first, fresher mtime)
	// at ts 10:00, but partition a carries a strictly greater ts.
	assert.Equal(t, 101.0, ticks["X"].Price)
	assert.Equal(t, "2025-01-10T11:00:00", ticks["X"].TS)
	// Y only exists in partition a.
	assert.Equal(t, 55.0, ticks["Y"].Price)
}

func TestMissingSymbolsAreAbsentNotErrors(t *testing.T) {
	src := memory.New()
	src.PutTickPartition("fixed", "ticks_20250110.jsonl", []byte(
		`{"symbol":"X","price":100.0,"ts":"2025-01-10T10:00:00"}
`))

	r := NewResolver(src, discard())
	ticks := r.Resolve(context.Background(), "fixed", "20250110", []string{"X", "GHOST"})
	require.Len(t, ticks, 1)
	_, ok := ticks["GHOST"]
	assert.False(t, ok)
}

func TestPartitionScanIsCapped(t *testing.T) {
	src := memory.New()
	// Oldest partition holds the only tick for X; it is listed beyond
	// the scan cap and must not be read.
	src.PutTickPartition("fixed", "ticks_20250110_target.jsonl", []byte(
		`{"symbol":"X","price":100.0,"ts":"2025-01-10T10:00:00"}
`))
	for i := 0; i < MaxPartitionScan; i++ {
		src.PutTickPartition("fixed", fmt.Sprintf("ticks_20250110_pad%d.jsonl", i), []byte(
			`{"symbol":"OTHER","price":1.0,"ts":"2025-01-10T10:00:00"}
`))
	}

	r := NewResolver(src, discard())
	ticks := r.Resolve(context.Background(), "fixed", "20250110", []string{"X"})
	assert.Empty(t, ticks)
}

func TestResolveNoPartitions(t *testing.T) {
	r := NewResolver(memory.New(), discard())
	ticks := r.Resolve(context.Background(), "fixed", "20250110", []string{"X"})
	assert.Empty(t, ticks)
}

func TestApplyMarks(t *testing.T) {
	positions := []domain.Position{
		{TradeID: "T1", Symbol: "X", Side: domain.SideBuy, EntryPrice: 100, RemainingQty: 60},
		{TradeID: "T2", Symbol: "Y", Side: domain.SideSell, EntryPrice: 50, RemainingQty: 10},
		{TradeID: "T3", Symbol: "Z", Side: domain.SideBuy, EntryPrice: 200, RemainingQty: 5},
	}
	ticks := map[string]domain.Tick{
		"X": {Symbol: "X", Price: 110, TS: "2025-01-10T11:00:00"},
		"Y": {Symbol: "Y", Price: 48, TS: "2025-01-10T11:00:00"},
	}

	matched := Apply(positions, ticks)
	assert.Equal(t, 2, matched)

	assert.True(t, positions[0].TickFound)
	assert.Equal(t, 600.0, positions[0].UnrealizedPnL)
	assert.Equal(t, 10.0, positions[0].PriceChange)
	assert.InDelta(t, 10.0, positions[0].PriceChangePct, 1e-9)

	// Short position gains when price falls.
	assert.Equal(t, 20.0, positions[1].UnrealizedPnL)

	// Unmatched position echoes entry price and stays distinguishable
	// via TickFound.
	assert.False(t, positions[2].TickFound)
	assert.Equal(t, 200.0, positions[2].CurrentPrice)
	assert.Zero(t, positions[2].UnrealizedPnL)
}
