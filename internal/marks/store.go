package marks

import (
	"context"
	"log"

	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/storage"
)

// StoreResolver resolves marks from a columnar tick store instead of
// scanning raw partitions. Used when the day's partitions have been
// loaded into the store.
type StoreResolver struct {
	store  storage.TickStore
	logger *log.Logger
}

// NewStoreResolver creates a resolver over a tick store.
func NewStoreResolver(store storage.TickStore, logger *log.Logger) *StoreResolver {
	return &StoreResolver{store: store, logger: logger}
}

// Resolve returns the freshest stored tick per requested symbol. Like
// partition scanning, a store failure degrades to no matches rather than
// an error.
func (r *StoreResolver) Resolve(ctx context.Context, configType, date string, symbols []string) map[string]domain.Tick {
	if len(symbols) == 0 {
		return map[string]domain.Tick{}
	}
	found, err := r.store.LatestBySymbol(ctx, configType, date, symbols)
	if err != nil {
		r.logger.Printf("tick store lookup for %s/%s: %v", configType, date, err)
		return map[string]domain.Tick{}
	}
	return found
}
