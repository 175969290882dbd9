// Package push periodically recomputes a session's live summary and
// delivers it to websocket subscribers. A failed recompute is logged and
// retried on the next tick; only a failed delivery ends a subscription.
package push

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trading-dashboard/internal/observability"
)

// DefaultInterval is the push cadence per subscription.
const DefaultInterval = 10 * time.Second

// Computer recomputes the payload for one subscription.
type Computer func(ctx context.Context) (any, error)

// Conn is the slice of a websocket connection the hub needs.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Hub runs push loops for active subscriptions.
type Hub struct {
	interval time.Duration
	logger   *log.Logger
	metrics  *observability.Metrics

	mu     sync.Mutex
	cancel map[int64]context.CancelFunc
	nextID int64
	wg     sync.WaitGroup
	closed bool
}

// NewHub creates a hub pushing at the given interval; zero means
// DefaultInterval. metrics may be nil.
func NewHub(interval time.Duration, logger *log.Logger, metrics *observability.Metrics) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Hub{
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		cancel:   make(map[int64]context.CancelFunc),
	}
}

// Subscribe starts a push loop that delivers compute results to conn
// until ctx is cancelled, the connection breaks, or the hub shuts down.
// The first payload is pushed immediately. Subscribe returns right away.
func (h *Hub) Subscribe(ctx context.Context, conn Conn, compute Computer) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.nextID++
	id := h.nextID
	ctx, cancel := context.WithCancel(ctx)
	h.cancel[id] = cancel
	h.wg.Add(1)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ActiveSubscriptions.Inc()
	}

	go func() {
		defer func() {
			conn.Close()
			h.mu.Lock()
			delete(h.cancel, id)
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.ActiveSubscriptions.Dec()
			}
			h.wg.Done()
		}()

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			if err := h.pushOnce(ctx, conn, compute); err != nil {
				// Write failures mean the subscriber is gone.
				h.logger.Printf("push subscription %d: %v", id, err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// pushOnce recomputes and delivers one payload. Compute failures are
// swallowed so the loop retries next tick; only delivery failures are
// returned.
func (h *Hub) pushOnce(ctx context.Context, conn Conn, compute Computer) error {
	payload, err := compute(ctx)
	if err != nil {
		h.logger.Printf("push recompute: %v", err)
		if h.metrics != nil {
			h.metrics.PushFailures.Inc()
		}
		return nil
	}
	if err := conn.WriteJSON(payload); err != nil {
		if h.metrics != nil {
			h.metrics.PushFailures.Inc()
		}
		return err
	}
	if h.metrics != nil {
		h.metrics.PushesDelivered.Inc()
	}
	return nil
}

// Shutdown cancels all subscriptions and waits for their loops to exit.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	for _, cancel := range h.cancel {
		cancel()
	}
	h.mu.Unlock()
	h.wg.Wait()
}
