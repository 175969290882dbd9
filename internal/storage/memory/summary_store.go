package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

// SummaryStore implements storage.SummaryStore in memory.
// Safe for concurrent use.
type SummaryStore struct {
	mu sync.RWMutex
	// byKey maps config_type -> run_id -> summary.
	byKey map[string]map[string]domain.SessionSummary
}

// NewSummaryStore creates an empty in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{byKey: make(map[string]map[string]domain.SessionSummary)}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// cloneSummary deep-copies a summary so callers never share maps or
// slices with the store.
func cloneSummary(s *domain.SessionSummary) domain.SessionSummary {
	data, _ := json.Marshal(s)
	var out domain.SessionSummary
	_ = json.Unmarshal(data, &out)
	return out
}

func (st *SummaryStore) Insert(ctx context.Context, s *domain.SessionSummary) error {
	if s == nil || s.RunID == "" || s.ConfigType == "" {
		return storage.ErrInvalidInput
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	runs := st.byKey[s.ConfigType]
	if runs == nil {
		runs = make(map[string]domain.SessionSummary)
		st.byKey[s.ConfigType] = runs
	}
	if _, exists := runs[s.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	runs[s.RunID] = cloneSummary(s)
	return nil
}

func (st *SummaryStore) Upsert(ctx context.Context, s *domain.SessionSummary) error {
	if s == nil || s.RunID == "" || s.ConfigType == "" {
		return storage.ErrInvalidInput
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	runs := st.byKey[s.ConfigType]
	if runs == nil {
		runs = make(map[string]domain.SessionSummary)
		st.byKey[s.ConfigType] = runs
	}
	runs[s.RunID] = cloneSummary(s)
	return nil
}

func (st *SummaryStore) GetByRunID(ctx context.Context, configType, runID string) (*domain.SessionSummary, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.byKey[configType][runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := cloneSummary(&s)
	return &out, nil
}

func (st *SummaryStore) ListByDateRange(ctx context.Context, configType, from, to string) ([]domain.SessionSummary, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []domain.SessionSummary
	for _, s := range st.byKey[configType] {
		date := s.Date()
		if from != "" && (date == "" || date < from) {
			continue
		}
		if to != "" && (date == "" || date > to) {
			continue
		}
		out = append(out, cloneSummary(&s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].RunID < out[j].RunID
	})
	return out, nil
}

func (st *SummaryStore) ListRunIDs(ctx context.Context, configType string) ([]string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	runs := make([]string, 0, len(st.byKey[configType]))
	for runID := range st.byKey[configType] {
		runs = append(runs, runID)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}
