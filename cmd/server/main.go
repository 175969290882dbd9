// Package main provides the unified dashboard API server: REST endpoints,
// the live WebSocket push loop, the admin relay, and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trading-dashboard/internal/cache"
	"trading-dashboard/internal/config"
	"trading-dashboard/internal/dashboard"
	"trading-dashboard/internal/httpapi"
	"trading-dashboard/internal/logsource"
	"trading-dashboard/internal/logsource/local"
	"trading-dashboard/internal/logsource/objectstore"
	"trading-dashboard/internal/marks"
	"trading-dashboard/internal/observability"
	"trading-dashboard/internal/push"
	"trading-dashboard/internal/relay"
	"trading-dashboard/internal/storage"
	chstore "trading-dashboard/internal/storage/clickhouse"
	"trading-dashboard/internal/storage/migrations"
	pgstore "trading-dashboard/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	configPath := flag.String("config", envOr("DASHBOARD_CONFIG", "config.yaml"), "Path to YAML config file")
	addr := flag.String("addr", os.Getenv("DASHBOARD_ADDR"), "Listen address override")
	pushInterval := flag.Duration("push-interval", push.DefaultInterval, "WebSocket push cadence")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	sources := buildSources(cfg)

	var archive storage.SummaryStore
	if dsn := cfg.Archive.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			logger.Fatalf("connect postgres archive: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		archive = pgstore.NewSummaryStore(pool)
		logger.Printf("summary archive enabled")
	}

	var resolver dashboard.MarkResolver
	if dsn := cfg.TickStore.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()
		resolver = marks.NewStoreResolver(chstore.NewTickStore(conn), logger)
		logger.Printf("tick store enabled")
	} else {
		resolver = marks.NewResolver(tickMux(sources), logger)
	}

	metrics := observability.NewMetrics("")
	svc := dashboard.NewService(sources, resolver, cache.New(), logger, dashboard.Options{
		Archive:         archive,
		CapitalFallback: cfg.Capital.Fallback,
		Metrics:         metrics,
		TTLLive:         cfg.Cache.LiveTTL(),
		TTLSummary:      cfg.Cache.SummaryTTL(),
		TTLListings:     cfg.Cache.ListingsTTL(),
	})

	var rly *relay.Relay
	if len(cfg.Instances) > 0 {
		instances := make(map[string]string, len(cfg.Instances))
		for name, inst := range cfg.Instances {
			instances[name] = inst.URL
		}
		rly = relay.New(instances, cfg.Server.AdminToken, logger)
	}

	hub := push.NewHub(*pushInterval, logger, metrics)

	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.AdminToken = cfg.Server.AdminToken
	server := httpapi.NewServer(serverCfg, svc, rly, hub, metrics, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}
	logger.Printf("server stopped")
}

// buildSources maps each config type to its log source. Local paths share
// one filesystem source; every object store endpoint gets its own client.
func buildSources(cfg *config.Config) map[string]logsource.Source {
	bases := make(map[string]string)
	for name, sc := range cfg.Sources {
		if sc.Path != "" {
			bases[name] = sc.Path
		}
	}
	var localSrc *local.Source
	if len(bases) > 0 {
		localSrc = local.New(bases)
	}

	sources := make(map[string]logsource.Source, len(cfg.Sources))
	for name, sc := range cfg.Sources {
		if sc.Path != "" {
			sources[name] = localSrc
		} else {
			sources[name] = objectstore.NewClient(sc.Endpoint)
		}
	}
	return sources
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// tickMux routes tick partition reads to the owning config type's source.
type tickMux map[string]logsource.Source

func (m tickMux) ListTickPartitions(ctx context.Context, configType, date string) ([]string, error) {
	src, ok := m[configType]
	if !ok {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	return src.ListTickPartitions(ctx, configType, date)
}

func (m tickMux) ReadTickPartition(ctx context.Context, configType, name string) ([]byte, error) {
	src, ok := m[configType]
	if !ok {
		return nil, fmt.Errorf("config type %q: %w", configType, logsource.ErrNotFound)
	}
	return src.ReadTickPartition(ctx, configType, name)
}
