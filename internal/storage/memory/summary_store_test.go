package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

func testSummary(configType, runID string, pnl float64) *domain.SessionSummary {
	ts, _ := domain.ParseRunTimestamp(runID)
	return &domain.SessionSummary{
		RunID:      runID,
		ConfigType: configType,
		Timestamp:  ts,
		TotalPnL:   pnl,
		BySetup:    map[string]domain.SetupStats{"orb": {PnL: pnl, Count: 1}},
		ByRegime:   map[string]domain.RegimeStats{},
	}
}

func TestInsertAndGet(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	s := testSummary("fixed", "paper_20250110_091500", 500)
	require.NoError(t, st.Insert(ctx, s))

	got, err := st.GetByRunID(ctx, "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.TotalPnL)
	assert.Equal(t, "2025-01-10T09:15:00", got.Timestamp)
}

func TestInsertDuplicate(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	s := testSummary("fixed", "paper_20250110_091500", 500)
	require.NoError(t, st.Insert(ctx, s))
	err := st.Insert(ctx, s)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestUpsertReplaces(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	require.NoError(t, st.Upsert(ctx, testSummary("fixed", "paper_20250110_091500", 500)))
	require.NoError(t, st.Upsert(ctx, testSummary("fixed", "paper_20250110_091500", 750)))

	got, err := st.GetByRunID(ctx, "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	assert.Equal(t, 750.0, got.TotalPnL)
}

func TestGetNotFound(t *testing.T) {
	st := NewSummaryStore()
	_, err := st.GetByRunID(context.Background(), "fixed", "paper_20990101_000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInsertInvalidInput(t *testing.T) {
	st := NewSummaryStore()
	err := st.Insert(context.Background(), &domain.SessionSummary{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestListByDateRange(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	for _, runID := range []string{
		"paper_20250109_091500",
		"paper_20250110_091500",
		"paper_20250111_091500",
	} {
		require.NoError(t, st.Insert(ctx, testSummary("fixed", runID, 100)))
	}

	got, err := st.ListByDateRange(ctx, "fixed", "2025-01-10", "2025-01-10")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "paper_20250110_091500", got[0].RunID)

	got, err = st.ListByDateRange(ctx, "fixed", "", "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Ascending by session timestamp.
	assert.Equal(t, "paper_20250109_091500", got[0].RunID)
	assert.Equal(t, "paper_20250111_091500", got[2].RunID)
}

func TestCallersCannotMutateStoredState(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, testSummary("fixed", "paper_20250110_091500", 500)))
	got, err := st.GetByRunID(ctx, "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	got.BySetup["orb"] = domain.SetupStats{PnL: -999}

	again, err := st.GetByRunID(ctx, "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	assert.Equal(t, 500.0, again.BySetup["orb"].PnL)
}

func TestListRunIDs(t *testing.T) {
	st := NewSummaryStore()
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, testSummary("fixed", "paper_20250110_091500", 1)))
	require.NoError(t, st.Insert(ctx, testSummary("fixed", "paper_20250111_091500", 2)))

	runs, err := st.ListRunIDs(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, []string{"paper_20250111_091500", "paper_20250110_091500"}, runs)
}
