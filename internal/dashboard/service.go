// Package dashboard exposes the read API the transport layer serves:
// session listings, summaries, live open-position state, and
// multi-session aggregates. The service holds no mutable state beyond a
// read-through cache; every answer is recomputed from the log source (or
// the archive) on demand.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"trading-dashboard/internal/aggregate"
	"trading-dashboard/internal/cache"
	"trading-dashboard/internal/decode"
	"trading-dashboard/internal/domain"
	"trading-dashboard/internal/logsource"
	"trading-dashboard/internal/marks"
	"trading-dashboard/internal/observability"
	"trading-dashboard/internal/position"
	"trading-dashboard/internal/storage"
	"trading-dashboard/internal/summary"
)

// MarkResolver finds the freshest tick per symbol for a date. Both the
// partition-scanning and the tick-store resolvers satisfy it.
type MarkResolver interface {
	Resolve(ctx context.Context, configType, date string, symbols []string) map[string]domain.Tick
}

// Service answers dashboard queries. Safe for concurrent use.
type Service struct {
	sources  map[string]logsource.Source
	resolver MarkResolver
	cache    *cache.Cache
	// capitalFallback supplies capital for sessions too old to carry it
	// in their performance snapshot. Keyed by config type.
	capitalFallback map[string]float64
	// archive, when non-nil, is the fast path for date-range aggregates.
	archive storage.SummaryStore
	metrics *observability.Metrics
	logger  *log.Logger
	now     func() time.Time

	ttlLive     time.Duration
	ttlSummary  time.Duration
	ttlListings time.Duration
}

// Options configures optional service collaborators.
type Options struct {
	Archive         storage.SummaryStore
	CapitalFallback map[string]float64
	Metrics         *observability.Metrics

	// TTL overrides; zero keeps the package defaults.
	TTLLive     time.Duration
	TTLSummary  time.Duration
	TTLListings time.Duration
}

// NewService creates a dashboard service over per-config-type log
// sources.
func NewService(sources map[string]logsource.Source, resolver MarkResolver, c *cache.Cache, logger *log.Logger, opts Options) *Service {
	fallback := make(map[string]float64, len(opts.CapitalFallback))
	for k, v := range opts.CapitalFallback {
		fallback[k] = v
	}
	s := &Service{
		sources:         sources,
		resolver:        resolver,
		cache:           c,
		capitalFallback: fallback,
		archive:         opts.Archive,
		metrics:         opts.Metrics,
		logger:          logger,
		now:             time.Now,
		ttlLive:         cache.TTLLive,
		ttlSummary:      cache.TTLSummary,
		ttlListings:     cache.TTLListings,
	}
	if opts.TTLLive > 0 {
		s.ttlLive = opts.TTLLive
	}
	if opts.TTLSummary > 0 {
		s.ttlSummary = opts.TTLSummary
	}
	if opts.TTLListings > 0 {
		s.ttlListings = opts.TTLListings
	}
	if s.metrics != nil && s.cache != nil {
		s.cache.Observe(s.metrics.CacheHits, s.metrics.CacheMisses)
	}
	return s
}

func (s *Service) source(configType string) (logsource.Source, error) {
	src, ok := s.sources[configType]
	if !ok {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	return src, nil
}

// ConfigTypes lists known config types.
func (s *Service) ConfigTypes() []string {
	out := make([]string, 0, len(s.sources))
	for ct := range s.sources {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out
}

// ClearCache discards all cached entries.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// CacheStats reports cache traffic counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Runs lists a config type's sessions, most recent first, each with its
// headline stats.
func (s *Service) Runs(ctx context.Context, configType string) ([]domain.RunInfo, error) {
	key := "runs:" + configType
	v, err := s.cache.GetOrCompute(key, s.ttlListings, func() (any, error) {
		src, err := s.source(configType)
		if err != nil {
			return nil, err
		}
		runIDs, err := src.ListRuns(ctx, configType)
		if err != nil {
			return nil, err
		}
		infos := make([]domain.RunInfo, 0, len(runIDs))
		for _, runID := range runIDs {
			info := domain.RunInfo{RunID: runID, ConfigType: configType, Timestamp: domain.TimestampUnknown}
			if ts, ok := domain.ParseRunTimestamp(runID); ok {
				info.Timestamp = ts
			}
			if sum, err := s.RunSummary(ctx, configType, runID); err == nil {
				info.TotalPnL = sum.TotalPnL
				info.TotalTrades = sum.TotalTrades
				info.WinRate = sum.WinRate
			} else if errors.Is(err, logsource.ErrUnavailable) {
				return nil, err
			}
			infos = append(infos, info)
		}
		return infos, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.RunInfo), nil
}

// RunSummary computes one session's summary: the precomputed performance
// snapshot when present, otherwise a fold over its exit records. Sessions
// without recorded capital fall back to the injected capital table.
func (s *Service) RunSummary(ctx context.Context, configType, runID string) (domain.SessionSummary, error) {
	key := "summary:" + configType + ":" + runID
	v, err := s.cache.GetOrCompute(key, s.ttlSummary, func() (any, error) {
		sum, err := s.computeSummary(ctx, configType, runID)
		if err != nil {
			return nil, err
		}
		return *sum, nil
	})
	if err != nil {
		return domain.SessionSummary{}, err
	}
	return v.(domain.SessionSummary), nil
}

func (s *Service) computeSummary(ctx context.Context, configType, runID string) (*domain.SessionSummary, error) {
	src, err := s.source(configType)
	if err != nil {
		return nil, err
	}

	// The run must exist at all; an absent folder is "no data".
	if _, err := src.ListFiles(ctx, configType, runID); err != nil {
		return nil, err
	}

	var perf *domain.PerformanceRecord
	if data, err := s.readObject(ctx, src, configType, runID, logsource.FilePerformance); err == nil {
		if rec, derr := decode.Performance(data); derr == nil {
			perf = rec
		} else {
			s.logger.Printf("run %s: %v, falling back to exit records", runID, derr)
		}
	} else if errors.Is(err, logsource.ErrUnavailable) {
		return nil, err
	}

	exits, err := s.readExits(ctx, src, configType, runID)
	if err != nil {
		return nil, err
	}

	sum := summary.Summarize(runID, configType, perf, exits)
	s.applyCapitalFallback(&sum)
	if s.metrics != nil {
		path := "fallback"
		if perf != nil {
			path = "fast"
		}
		s.metrics.SummariesComputed.WithLabelValues(configType, path).Inc()
	}
	return &sum, nil
}

// readObject wraps Source.ReadObject with read counters and latency.
// Absence is an expected answer, not a read failure.
func (s *Service) readObject(ctx context.Context, src logsource.Source, configType, runID, name string) ([]byte, error) {
	start := time.Now()
	data, err := src.ReadObject(ctx, configType, runID, name)
	if s.metrics != nil {
		s.metrics.SourceReads.WithLabelValues(configType, name).Inc()
		s.metrics.SourceReadLatency.WithLabelValues(configType).Observe(time.Since(start).Seconds())
		if err != nil && !errors.Is(err, logsource.ErrNotFound) {
			s.metrics.SourceReadErrors.WithLabelValues(configType, name).Inc()
		}
	}
	return data, err
}

func (s *Service) readExits(ctx context.Context, src logsource.Source, configType, runID string) ([]domain.ExitRecord, error) {
	data, err := s.readObject(ctx, src, configType, runID, logsource.FileAnalytics)
	if err != nil {
		if errors.Is(err, logsource.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	exits, skipped := decode.ExitRecords(data)
	if skipped > 0 {
		s.logger.Printf("run %s: skipped %d malformed exit records", runID, skipped)
		if s.metrics != nil {
			s.metrics.DecodeSkips.WithLabelValues(configType, logsource.FileAnalytics).Add(float64(skipped))
		}
	}
	return exits, nil
}

func (s *Service) readEvents(ctx context.Context, src logsource.Source, configType, runID string) ([]domain.Event, error) {
	data, err := s.readObject(ctx, src, configType, runID, logsource.FileEvents)
	if err != nil {
		if errors.Is(err, logsource.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	events, skipped := decode.Events(data)
	if skipped > 0 {
		s.logger.Printf("run %s: skipped %d malformed events", runID, skipped)
		if s.metrics != nil {
			s.metrics.DecodeSkips.WithLabelValues(configType, logsource.FileEvents).Add(float64(skipped))
		}
	}
	return events, nil
}

func (s *Service) applyCapitalFallback(sum *domain.SessionSummary) {
	if sum.Capital != nil {
		return
	}
	if capital, ok := s.capitalFallback[sum.ConfigType]; ok && capital > 0 {
		c := capital
		sum.Capital = &c
	}
}

// ClosedTrades returns a session's completed trades.
func (s *Service) ClosedTrades(ctx context.Context, configType, runID string) ([]domain.ExitRecord, error) {
	sum, err := s.RunSummary(ctx, configType, runID)
	if err != nil {
		return nil, err
	}
	return sum.Trades, nil
}

// Events returns a session's decoded event stream.
func (s *Service) Events(ctx context.Context, configType, runID string) ([]domain.Event, error) {
	src, err := s.source(configType)
	if err != nil {
		return nil, err
	}
	return s.readEvents(ctx, src, configType, runID)
}

// LiveSummary reconstructs a session's open positions, marks them to
// market, and rolls the realized and unrealized sides together. An empty
// runID targets the config type's most recent session.
func (s *Service) LiveSummary(ctx context.Context, configType, runID string) (domain.LiveSummary, error) {
	if runID == "" {
		src, err := s.source(configType)
		if err != nil {
			return domain.LiveSummary{}, err
		}
		runIDs, err := src.ListRuns(ctx, configType)
		if err != nil {
			return domain.LiveSummary{}, err
		}
		if len(runIDs) == 0 {
			return domain.LiveSummary{}, fmt.Errorf("no runs for %q: %w", configType, logsource.ErrNotFound)
		}
		runID = runIDs[0]
	}

	key := "live:" + configType + ":" + runID
	v, err := s.cache.GetOrCompute(key, s.ttlLive, func() (any, error) {
		return s.computeLive(ctx, configType, runID)
	})
	if err != nil {
		return domain.LiveSummary{}, err
	}
	return v.(domain.LiveSummary), nil
}

// OpenPositions returns a session's marked open positions. An empty
// runID targets the config type's most recent session.
func (s *Service) OpenPositions(ctx context.Context, configType, runID string) ([]domain.Position, error) {
	live, err := s.LiveSummary(ctx, configType, runID)
	if err != nil {
		return nil, err
	}
	return live.OpenPositions, nil
}

func (s *Service) computeLive(ctx context.Context, configType, runID string) (domain.LiveSummary, error) {
	src, err := s.source(configType)
	if err != nil {
		return domain.LiveSummary{}, err
	}

	events, err := s.readEvents(ctx, src, configType, runID)
	if err != nil {
		return domain.LiveSummary{}, err
	}
	exits, err := s.readExits(ctx, src, configType, runID)
	if err != nil {
		return domain.LiveSummary{}, err
	}

	res := position.Reconstruct(events, exits)

	date := s.now().Format("20060102")
	if ts, ok := domain.ParseRunTimestamp(runID); ok {
		date = strings.ReplaceAll(ts[:10], "-", "")
	}
	symbols := make([]string, len(res.Open))
	for i := range res.Open {
		symbols[i] = res.Open[i].Symbol
	}
	ticks := s.resolver.Resolve(ctx, configType, date, symbols)
	matched := marks.Apply(res.Open, ticks)

	if s.metrics != nil {
		s.metrics.PositionsOpen.WithLabelValues(configType).Set(float64(len(res.Open)))
		for _, a := range res.Anomalies {
			s.metrics.AnomaliesFlagged.WithLabelValues(configType, a.Kind).Inc()
		}
		if len(symbols) > 0 {
			s.metrics.TickMatchRatio.WithLabelValues(configType).Set(float64(matched) / float64(len(symbols)))
		}
	}

	live := domain.LiveSummary{
		RunID:             runID,
		ConfigType:        configType,
		RealizedPnL:       res.RealizedPnL,
		OpenPositions:     res.Open,
		OpenPositionCount: len(res.Open),
		ClosedTrades:      len(res.Closed),
		SymbolsSearched:   len(symbols),
		SymbolsMatched:    matched,
		Anomalies:         res.Anomalies,
		LastUpdated:       s.now().Format(time.RFC3339),
	}
	for i := range res.Open {
		live.UnrealizedPnL += res.Open[i].UnrealizedPnL
		live.CapitalInPositions += res.Open[i].EntryPrice * float64(res.Open[i].RemainingQty)
	}
	live.TotalPnL = live.RealizedPnL + live.UnrealizedPnL
	for _, rec := range res.Closed {
		if rec.TotalTradePnL > 0 {
			live.Winners++
		} else {
			live.Losers++
		}
	}
	if live.ClosedTrades > 0 {
		live.WinRate = float64(live.Winners) / float64(live.ClosedTrades) * 100
	}

	sum, err := s.RunSummary(ctx, configType, runID)
	if err == nil && sum.Capital != nil {
		live.InitialCapital = *sum.Capital
	} else if capital, ok := s.capitalFallback[configType]; ok {
		live.InitialCapital = capital
	}
	if live.InitialCapital > 0 {
		live.AvailableCapital = live.InitialCapital - live.CapitalInPositions
		live.CapitalUtilizationPct = live.CapitalInPositions / live.InitialCapital * 100
	}
	return live, nil
}

// Aggregate combines a config type's sessions over an inclusive ISO date
// range (empty bounds are open). When an archive is configured it serves
// the summaries; otherwise every session's logs are folded on the spot.
// A range matching no sessions yields an empty aggregate, not an error.
func (s *Service) Aggregate(ctx context.Context, configType, from, to string) (domain.AggregateSummary, error) {
	key := "aggregate:" + configType + ":" + from + ":" + to
	v, err := s.cache.GetOrCompute(key, s.ttlSummary, func() (any, error) {
		summaries, err := s.collectSummaries(ctx, configType, from, to)
		if err != nil {
			return nil, err
		}
		return aggregate.Combine(configType, summaries), nil
	})
	if err != nil {
		return domain.AggregateSummary{}, err
	}
	return v.(domain.AggregateSummary), nil
}

func (s *Service) collectSummaries(ctx context.Context, configType, from, to string) ([]domain.SessionSummary, error) {
	if s.archive != nil {
		summaries, err := s.archive.ListByDateRange(ctx, configType, from, to)
		if err == nil {
			return summaries, nil
		}
		s.logger.Printf("archive unavailable for %s, folding from logs: %v", configType, err)
	}

	src, err := s.source(configType)
	if err != nil {
		return nil, err
	}
	runIDs, err := src.ListRuns(ctx, configType)
	if err != nil {
		if errors.Is(err, logsource.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var summaries []domain.SessionSummary
	for _, runID := range runIDs {
		sum, err := s.RunSummary(ctx, configType, runID)
		if err != nil {
			if errors.Is(err, logsource.ErrUnavailable) {
				return nil, err
			}
			continue
		}
		summaries = append(summaries, sum)
	}
	return aggregate.FilterByDate(summaries, from, to), nil
}

// TradeDetails collects everything recorded about one trade: its events
// in log order and its exit fills.
func (s *Service) TradeDetails(ctx context.Context, configType, runID, tradeID string) (domain.TradeDetails, error) {
	src, err := s.source(configType)
	if err != nil {
		return domain.TradeDetails{}, err
	}
	events, err := s.readEvents(ctx, src, configType, runID)
	if err != nil {
		return domain.TradeDetails{}, err
	}
	exits, err := s.readExits(ctx, src, configType, runID)
	if err != nil {
		return domain.TradeDetails{}, err
	}

	details := domain.TradeDetails{TradeID: tradeID, RunID: runID}
	for _, ev := range events {
		if ev.TradeID == tradeID {
			details.Events = append(details.Events, ev)
		}
	}
	for _, rec := range exits {
		if rec.TradeID == tradeID {
			details.Exits = append(details.Exits, rec)
		}
	}
	if len(details.Events) == 0 && len(details.Exits) == 0 {
		return domain.TradeDetails{}, fmt.Errorf("trade %q: %w", tradeID, logsource.ErrNotFound)
	}
	return details, nil
}

// TailLog returns the last n lines of a session log file (agent.log or
// trade_logs.log).
func (s *Service) TailLog(ctx context.Context, configType, runID, name string, n int) ([]string, error) {
	if name != logsource.FileAgentLog && name != logsource.FileTradeLogs {
		return nil, fmt.Errorf("log %q: %w", name, logsource.ErrNotFound)
	}
	src, err := s.source(configType)
	if err != nil {
		return nil, err
	}
	data, err := s.readObject(ctx, src, configType, runID, name)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
