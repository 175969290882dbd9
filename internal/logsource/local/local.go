// Package local implements a logsource.Source over the local filesystem.
// Each config type maps to a base directory with the layout the trading
// engine writes:
//
//	<base>/logs/<run_id>/events.jsonl ...
//	<base>/data/sidecar/ticks/ticks_YYYYMMDD*.jsonl
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/logsource"
)

// Source reads trading logs from local directories.
type Source struct {
	// bases maps config type -> base directory.
	bases map[string]string
}

var _ logsource.Source = (*Source)(nil)

// New creates a local source over the given config type -> base directory
// mapping.
func New(bases map[string]string) *Source {
	copied := make(map[string]string, len(bases))
	for k, v := range bases {
		copied[k] = v
	}
	return &Source{bases: copied}
}

func (s *Source) base(configType string) (string, error) {
	b, ok := s.bases[configType]
	if !ok {
		return "", fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	return b, nil
}

func (s *Source) ListConfigTypes(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(s.bases))
	for ct := range s.bases {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Source) ListRuns(ctx context.Context, configType string) ([]string, error) {
	base, err := s.base(configType)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(base, "logs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("logs dir for %q: %w", configType, logsource.ErrNotFound)
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && domain.IsRunID(e.Name()) {
			runs = append(runs, e.Name())
		}
	}
	// Run IDs embed a timestamp, so reverse-lexical is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

func (s *Source) ListFiles(ctx context.Context, configType, runID string) ([]string, error) {
	base, err := s.base(configType)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(base, "logs", runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %q: %w", runID, logsource.ErrNotFound)
		}
		return nil, fmt.Errorf("list files: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Source) ReadObject(ctx context.Context, configType, runID, name string) ([]byte, error) {
	base, err := s.base(configType)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(base, "logs", runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", runID, name, logsource.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s/%s: %w", runID, name, err)
	}
	return data, nil
}

func (s *Source) ListTickPartitions(ctx context.Context, configType, date string) ([]string, error) {
	base, err := s.base(configType)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(base, "data", "sidecar", "ticks")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list tick partitions: %w", err)
	}
	prefix := logsource.TickPartitionPrefix(date)
	type part struct {
		name  string
		mtime int64
	}
	parts := make([]part, 0, 4)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		parts = append(parts, part{name: e.Name(), mtime: info.ModTime().UnixNano()})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].mtime > parts[j].mtime })
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.name
	}
	return names, nil
}

func (s *Source) ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error) {
	base, err := s.base(configType)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(base, "data", "sidecar", "ticks", name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tick partition %q: %w", name, logsource.ErrNotFound)
		}
		return nil, fmt.Errorf("read tick partition %q: %w", name, err)
	}
	return data, nil
}
