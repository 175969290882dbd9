// Package main backfills the Postgres summary archive by folding every
// session's logs into a summary row. Safe to re-run: existing rows are
// skipped unless -force rewrites them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"trading-dashboard/internal/cache"
	"trading-dashboard/internal/config"
	"trading-dashboard/internal/dashboard"
	"trading-dashboard/internal/logsource"
	"trading-dashboard/internal/logsource/local"
	"trading-dashboard/internal/logsource/objectstore"
	"trading-dashboard/internal/marks"
	"trading-dashboard/internal/storage"
	"trading-dashboard/internal/storage/migrations"
	pgstore "trading-dashboard/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	configType := flag.String("config-type", "", "Limit to one config type (default all)")
	force := flag.Bool("force", false, "Rewrite rows that already exist")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.Archive.PostgresDSN == "" {
		logger.Fatalf("archive.postgres_dsn is not configured")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.Archive.PostgresDSN)
	if err != nil {
		logger.Fatalf("connect postgres archive: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("postgres migrations: %v", err)
	}
	archive := pgstore.NewSummaryStore(pool)

	sources := buildSources(cfg)

	targets := make([]string, 0, len(sources))
	if *configType != "" {
		if _, ok := sources[*configType]; !ok {
			logger.Fatalf("config type %q not in config", *configType)
		}
		targets = append(targets, *configType)
	} else {
		for name := range sources {
			targets = append(targets, name)
		}
	}

	var written, skipped, failed int
	for _, ct := range targets {
		svc := dashboard.NewService(sources, marks.NewResolver(sources[ct], logger), cache.New(), logger, dashboard.Options{
			CapitalFallback: cfg.Capital.Fallback,
		})

		runs, err := svc.Runs(ctx, ct)
		if err != nil {
			logger.Fatalf("list runs for %s: %v", ct, err)
		}
		for _, run := range runs {
			sum, err := svc.RunSummary(ctx, ct, run.RunID)
			if err != nil {
				logger.Printf("summarize %s/%s: %v", ct, run.RunID, err)
				failed++
				continue
			}

			if *force {
				err = archive.Upsert(ctx, &sum)
			} else {
				err = archive.Insert(ctx, &sum)
			}
			switch {
			case err == nil:
				written++
			case errors.Is(err, storage.ErrDuplicateKey):
				skipped++
			default:
				logger.Printf("archive %s/%s: %v", ct, run.RunID, err)
				failed++
			}
		}
	}

	fmt.Printf("backfill complete: %d written, %d already archived, %d failed\n", written, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

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
