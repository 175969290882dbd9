// Package main loads a day's tick partitions into the ClickHouse tick
// store, so mark resolution can use indexed lookups instead of scanning
// raw partition files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"trading-dashboard/internal/config"
	"trading-dashboard/internal/decode"
	"trading-dashboard/internal/logsource"
	"trading-dashboard/internal/logsource/local"
	"trading-dashboard/internal/logsource/objectstore"
	chstore "trading-dashboard/internal/storage/clickhouse"
	"trading-dashboard/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	configType := flag.String("config-type", "", "Config type to load ticks for (required)")
	date := flag.String("date", time.Now().Format("20060102"), "Trading date, YYYYMMDD")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if *configType == "" {
		logger.Fatalf("-config-type is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.TickStore.ClickhouseDSN == "" {
		logger.Fatalf("tick_store.clickhouse_dsn is not configured")
	}

	sc, ok := cfg.Sources[*configType]
	if !ok {
		logger.Fatalf("config type %q not in config", *configType)
	}
	var src logsource.Source
	if sc.Path != "" {
		src = local.New(map[string]string{*configType: sc.Path})
	} else {
		src = objectstore.NewClient(sc.Endpoint)
	}

	ctx := context.Background()

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.TickStore.ClickhouseDSN)
	if err != nil {
		logger.Fatalf("clickhouse migrations: %v", err)
	}
	defer conn.Close()
	store := chstore.NewTickStore(conn)

	partitions, err := src.ListTickPartitions(ctx, *configType, *date)
	if err != nil {
		logger.Fatalf("list partitions: %v", err)
	}
	if len(partitions) == 0 {
		fmt.Printf("no tick partitions for %s on %s\n", *configType, *date)
		return
	}

	var loaded, skipped int
	for _, name := range partitions {
		data, err := src.ReadTickPartition(ctx, *configType, name)
		if err != nil {
			logger.Printf("read partition %s: %v", name, err)
			continue
		}
		ticks, malformed := decode.Ticks(data)
		skipped += malformed
		if len(ticks) == 0 {
			continue
		}
		if err := store.InsertBulk(ctx, *configType, *date, ticks); err != nil {
			logger.Fatalf("insert %d ticks from %s: %v", len(ticks), name, err)
		}
		loaded += len(ticks)
	}

	fmt.Printf("loaded %d ticks from %d partitions (%d malformed lines skipped)\n",
		loaded, len(partitions), skipped)
}
