// Package main renders an aggregate performance report for one config
// type over a date range: Markdown plus daily and per-setup CSVs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"trading-dashboard/internal/cache"
	"trading-dashboard/internal/config"
	"trading-dashboard/internal/dashboard"
	"trading-dashboard/internal/logsource"
	"trading-dashboard/internal/logsource/local"
	"trading-dashboard/internal/logsource/objectstore"
	"trading-dashboard/internal/marks"
	"trading-dashboard/internal/reporting"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	configType := flag.String("config-type", "", "Config type to report on (required)")
	from := flag.String("from", "", "Inclusive start date, YYYY-MM-DD (empty = open)")
	to := flag.String("to", "", "Inclusive end date, YYYY-MM-DD (empty = open)")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if *configType == "" {
		logger.Fatalf("-config-type is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	sources := make(map[string]logsource.Source)
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
	for name, sc := range cfg.Sources {
		if sc.Path != "" {
			sources[name] = localSrc
		} else {
			sources[name] = objectstore.NewClient(sc.Endpoint)
		}
	}

	src, ok := sources[*configType]
	if !ok {
		logger.Fatalf("config type %q not in config", *configType)
	}

	svc := dashboard.NewService(sources, marks.NewResolver(src, logger), cache.New(), logger, dashboard.Options{
		CapitalFallback: cfg.Capital.Fallback,
	})

	ctx := context.Background()
	gen := reporting.NewGenerator(svc)
	report, err := gen.Generate(ctx, *configType, *from, *to)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	outputs := map[string]string{
		"REPORT.md":  reporting.RenderMarkdown(report),
		"daily.csv":  reporting.RenderDailyCSV(report),
		"setups.csv": reporting.RenderSetupCSV(report),
	}
	for name, content := range outputs {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Fatalf("write %s: %v", path, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
	fmt.Printf("report covers %d sessions, %d trades, net %.2f\n",
		report.Days, report.TotalTrades, report.NetPnL)
}
