package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/logsource"
)

func writeRunFile(t *testing.T, base, runID, name, contents string) {
	t.Helper()
	dir := filepath.Join(base, "logs", runID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestListRuns(t *testing.T) {
	base := t.TempDir()
	writeRunFile(t, base, "paper_20250110_091500", "events.jsonl", "")
	writeRunFile(t, base, "paper_20250111_091500", "events.jsonl", "")
	writeRunFile(t, base, "live_20250112_091500", "events.jsonl", "")
	// Non-run directories are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "logs", "archive"), 0o755))

	src := New(map[string]string{"fixed": base})
	runs, err := src.ListRuns(context.Background(), "fixed")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"paper_20250111_091500",
		"paper_20250110_091500",
		"live_20250112_091500",
	}, runs)
}

func TestListRunsUnknownConfigType(t *testing.T) {
	src := New(map[string]string{"fixed": t.TempDir()})
	_, err := src.ListRuns(context.Background(), "relative")
	assert.ErrorIs(t, err, logsource.ErrNotFound)
}

func TestReadObject(t *testing.T) {
	base := t.TempDir()
	writeRunFile(t, base, "paper_20250110_091500", "performance.json", `{"session_id":"s1"}`)

	src := New(map[string]string{"fixed": base})
	data, err := src.ReadObject(context.Background(), "fixed", "paper_20250110_091500", "performance.json")
	require.NoError(t, err)
	assert.Equal(t, `{"session_id":"s1"}`, string(data))

	_, err = src.ReadObject(context.Background(), "fixed", "paper_20250110_091500", "events.jsonl")
	assert.ErrorIs(t, err, logsource.ErrNotFound)
}

func TestListTickPartitionsOrderedByMtime(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "data", "sidecar", "ticks")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := filepath.Join(dir, "ticks_20250110_a.jsonl")
	fresh := filepath.Join(dir, "ticks_20250110_b.jsonl")
	other := filepath.Join(dir, "ticks_20250111.jsonl")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("{}\n"), 0o644))
	}
	now := time.Now()
	require.NoError(t, os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(fresh, now, now))

	src := New(map[string]string{"fixed": base})
	names, err := src.ListTickPartitions(context.Background(), "fixed", "20250110")
	require.NoError(t, err)
	assert.Equal(t, []string{"ticks_20250110_b.jsonl", "ticks_20250110_a.jsonl"}, names)
}

func TestListTickPartitionsNoDir(t *testing.T) {
	src := New(map[string]string{"fixed": t.TempDir()})
	names, err := src.ListTickPartitions(context.Background(), "fixed", "20250110")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListFiles(t *testing.T) {
	base := t.TempDir()
	writeRunFile(t, base, "paper_20250110_091500", "events.jsonl", "")
	writeRunFile(t, base, "paper_20250110_091500", "agent.log", "")

	src := New(map[string]string{"fixed": base})
	files, err := src.ListFiles(context.Background(), "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent.log", "events.jsonl"}, files)

	_, err = src.ListFiles(context.Background(), "fixed", "paper_20990101_000000")
	if !errors.Is(err, logsource.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
