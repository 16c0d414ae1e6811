// Command harvester drains the link queue from the command line: enqueue
// URLs from a file, process everything pending, print stats, or export the
// listing store.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/user/listing-harvester/cmd/common"
	"github.com/user/listing-harvester/internal/extract"
	"github.com/user/listing-harvester/internal/usecase"
	"github.com/user/listing-harvester/pkg/config"
	"github.com/user/listing-harvester/pkg/logger"
	"github.com/user/listing-harvester/pkg/metrics"
)

func main() {
	var (
		addFile    = flag.String("add", "", "file with one URL per line to enqueue before processing")
		domain     = flag.String("domain", "", "source domain for enqueued links, and filter for processing")
		keyword    = flag.String("keyword", "", "originating search keyword for enqueued links")
		workers    = flag.Int("workers", 0, "override the configured worker count")
		stats      = flag.Bool("stats", false, "print queue statistics and exit")
		exportJSON = flag.Bool("export-json", false, "export listings to JSON and exit")
		exportCSV  = flag.Bool("export-csv", false, "export listings to CSV and exit")
		exportXLSX = flag.Bool("export-xlsx", false, "export listings to XLSX and exit")
		limit      = flag.Int("limit", 0, "cap exported rows, 0 means all")
	)
	flag.Parse()

	cfg := config.Load()
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}

	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stderr, logLevel)
	metrics.Init()

	ctx := context.Background()
	stores, err := common.BuildStores(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	linkManager := usecase.NewLinkManager(stores.Links, stores.Listings, stores.Checkpoints)
	exporter := usecase.NewExporter(stores.Listings, cfg.OutputDir)

	switch {
	case *stats:
		printStats(ctx, linkManager)
	case *exportJSON:
		runExport(ctx, exporter.ExportJSON, *limit)
	case *exportCSV:
		runExport(ctx, exporter.ExportCSV, *limit)
	case *exportXLSX:
		runExport(ctx, exporter.ExportXLSX, *limit)
	default:
		if *addFile != "" {
			added, err := enqueueFromFile(ctx, linkManager, *addFile, *domain, *keyword)
			if err != nil {
				slog.Error("Failed to enqueue links", "file", *addFile, "error", err)
				os.Exit(1)
			}
			slog.Info("Links enqueued", "file", *addFile, "count", added)
		}

		harvester := usecase.NewHarvester(usecase.HarvestConfig{
			WorkerCount: cfg.WorkerCount,
			BatchSize:   cfg.BatchSize,
			MaxAttempts: cfg.MaxAttempts,
			BaseBackoff: cfg.BaseBackoff,
		}, stores.Links, stores.Listings, stores.Checkpoints, common.BuildFetcherFactory(cfg), extract.NewEngine())

		if err := harvester.ProcessAll(ctx, *domain); err != nil {
			slog.Error("Harvest run failed", "error", err)
			os.Exit(1)
		}
		printStats(ctx, linkManager)
	}
}

func enqueueFromFile(ctx context.Context, lm usecase.LinkManager, path, domain, keyword string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	added := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lm.Add(ctx, line, domain, keyword)
		added++
	}
	return added, scanner.Err()
}

func printStats(ctx context.Context, lm usecase.LinkManager) {
	stats, err := lm.Stats(ctx)
	if err != nil {
		slog.Error("Failed to read stats", "error", err)
		os.Exit(1)
	}
	fmt.Printf("listings:  %d\n", stats.TotalListings)
	fmt.Printf("links:     %d\n", stats.TotalLinks)
	fmt.Printf("done:      %d\n", stats.Done)
	fmt.Printf("pending:   %d\n", stats.Pending)
	fmt.Printf("error:     %d\n", stats.Error)
	fmt.Printf("exhausted: %d\n", stats.Exhausted)
}

func runExport(ctx context.Context, fn func(context.Context, int) (string, error), limit int) {
	file, err := fn(ctx, limit)
	if err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(file)
}
