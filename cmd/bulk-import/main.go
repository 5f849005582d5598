package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/internal/repository"
	"github.com/denkido/catalogimport/internal/repository/postgres"
	"github.com/denkido/catalogimport/internal/service"
	"github.com/denkido/catalogimport/internal/shopify"
)

func main() {
	var (
		brand   = pflag.String("brand", "", "brand to import (all of its models unless --model is set)")
		model   = pflag.String("model", "", "model name to import (requires --brand)")
		skus    = pflag.StringSlice("sku", nil, "limit the selection to specific SKUs (repeatable)")
		all     = pflag.Bool("all", false, "import every configuration in the catalog")
		dryRun  = pflag.Bool("dry-run", false, "build payloads and report, but do not create products")
		dataDir = pflag.String("data-dir", "", "override the data directory")
		sleepMS = pflag.Int("sleep-ms", -1, "override the pause between products in milliseconds")
		asJSON  = pflag.Bool("json", false, "print the full report as JSON")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Import.DataDir = *dataDir
	}
	if *sleepMS >= 0 {
		cfg.Import.SleepMS = *sleepMS
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gids, err := catalog.LoadGIDTables(filepath.Join(cfg.Import.DataDir, "gids"), logger)
	if err != nil {
		logger.Fatal("Failed to load gid tables", zap.Error(err))
	}
	cat, err := catalog.LoadCatalogCached(filepath.Join(cfg.Import.DataDir, "catalog"), cfg.Import.CacheDir, logger)
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.Error(err))
	}

	repos := repository.NewNoopRepositories()
	if cfg.Journal.Enabled {
		db, err := postgres.NewConnection(cfg.Journal)
		if err != nil {
			logger.Fatal("Failed to connect to journal database", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(cfg.Journal, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	builder := service.NewPayloadBuilder(gids, cfg.Import.MetafieldNamespace, logger)
	importer := service.NewImportService(cat, builder, client, repos, cfg.Import, logger)

	// Ctrl-C finishes the current product, records the run as failed and exits
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sel := service.ImportSelection{
		Brand:     *brand,
		ModelName: *model,
		SKUs:      *skus,
		All:       *all,
		DryRun:    *dryRun,
		Source:    "cli",
	}

	report, runErr := importer.ImportBatch(ctx, sel)
	if report == nil {
		fmt.Fprintf(os.Stderr, "❌ Import aborted: %v\n", runErr)
		os.Exit(1)
	}

	if *asJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to encode report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		printReport(report)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "❌ Run ended early: %v\n", runErr)
		os.Exit(1)
	}
	if report.Run.Failed > 0 {
		os.Exit(1)
	}
}

func printReport(report *service.ImportReport) {
	for _, res := range report.Results {
		switch res.Status {
		case domain.ResultStatusCreated:
			fmt.Printf("✅ %s  %s\n", res.SKU, res.Title)
		case domain.ResultStatusSkipped:
			fmt.Printf("⏭️  %s  %s (dry run)\n", res.SKU, res.Title)
		case domain.ResultStatusFailed:
			msg := ""
			if res.ErrorMessage != nil {
				msg = *res.ErrorMessage
			}
			fmt.Printf("❌ %s  %s\n", res.SKU, msg)
		}
		for _, u := range res.Unresolved {
			fmt.Printf("   ⚠️  no %s mapping for %q\n", u.Category, u.DisplayName)
		}
	}

	fmt.Printf("\nRun %s (%s)\n", report.Run.ID, report.Run.Status)
	fmt.Printf("Total: %d | Created: %d | Failed: %d | Skipped: %d\n",
		report.Run.Total, report.Run.Created, report.Run.Failed, report.Run.Skipped)
}
