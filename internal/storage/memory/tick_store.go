package memory

import (
	"context"
	"sync"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

// TickStore implements storage.TickStore in memory.
// Safe for concurrent use.
type TickStore struct {
	mu sync.RWMutex
	// ticks maps config_type -> date -> appended ticks.
	ticks map[string]map[string][]domain.Tick
}

// NewTickStore creates an empty in-memory tick store.
func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]map[string][]domain.Tick)}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

func (st *TickStore) InsertBulk(ctx context.Context, configType, date string, ticks []domain.Tick) error {
	if configType == "" || date == "" {
		return storage.ErrInvalidInput
	}
	if len(ticks) == 0 {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	days := st.ticks[configType]
	if days == nil {
		days = make(map[string][]domain.Tick)
		st.ticks[configType] = days
	}
	days[date] = append(days[date], ticks...)
	return nil
}

func (st *TickStore) LatestBySymbol(ctx context.Context, configType, date string, symbols []string) (map[string]domain.Tick, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[domain.NormalizeSymbol(s)] = true
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[string]domain.Tick)
	for _, tk := range st.ticks[configType][date] {
		sym := domain.NormalizeSymbol(tk.Symbol)
		if !wanted[sym] {
			continue
		}
		best, ok := out[sym]
		if !ok || tk.TS > best.TS {
			tk.Symbol = sym
			out[sym] = tk
		}
	}
	return out, nil
}
