// Package memory implements an in-memory logsource.Source for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/logsource"
)

// Source is an in-memory log source. Safe for concurrent use.
type Source struct {
	mu sync.RWMutex
	// objects maps config type -> "logs/<run>/<file>" or
	// "ticks/<partition>" -> contents.
	objects map[string]map[string][]byte
	// tickOrder maps config type -> partition names, most recent first.
	tickOrder map[string][]string
}

var _ logsource.Source = (*Source)(nil)

// New creates an empty in-memory source.
func New() *Source {
	return &Source{
		objects:   make(map[string]map[string][]byte),
		tickOrder: make(map[string][]string),
	}
}

// PutObject stores a run file.
func (s *Source) PutObject(configType, runID, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[configType] == nil {
		s.objects[configType] = make(map[string][]byte)
	}
	s.objects[configType]["logs/"+runID+"/"+name] = append([]byte(nil), data...)
}

// PutTickPartition stores a tick partition. Partitions are listed in the
// order they were put, last put first, mirroring mtime ordering.
func (s *Source) PutTickPartition(configType, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[configType] == nil {
		s.objects[configType] = make(map[string][]byte)
	}
	s.objects[configType]["ticks/"+name] = append([]byte(nil), data...)
	order := s.tickOrder[configType]
	for i, n := range order {
		if n == name {
			order = append(order[:i], order[i+1:]...)
			break
		}
	}
	s.tickOrder[configType] = append([]string{name}, order...)
}

func (s *Source) ListConfigTypes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.objects))
	for ct := range s.objects {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Source) ListRuns(ctx context.Context, configType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objs, ok := s.objects[configType]
	if !ok {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	seen := make(map[string]bool)
	for key := range objs {
		rest, ok := strings.CutPrefix(key, "logs/")
		if !ok {
			continue
		}
		run, _, ok := strings.Cut(rest, "/")
		if ok && domain.IsRunID(run) {
			seen[run] = true
		}
	}
	runs := make([]string, 0, len(seen))
	for run := range seen {
		runs = append(runs, run)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

func (s *Source) ListFiles(ctx context.Context, configType, runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objs, ok := s.objects[configType]
	if !ok {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	prefix := "logs/" + runID + "/"
	var names []string
	for key := range objs {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("run %q: %w", runID, logsource.ErrNotFound)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Source) ReadObject(ctx context.Context, configType, runID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[configType]["logs/"+runID+"/"+name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", runID, name, logsource.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Source) ListTickPartitions(ctx context.Context, configType, date string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := logsource.TickPartitionPrefix(date)
	var names []string
	for _, n := range s.tickOrder[configType] {
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	return names, nil
}

func (s *Source) ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[configType]["ticks/"+name]
	if !ok {
		return nil, fmt.Errorf("tick partition %q: %w", name, logsource.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}
