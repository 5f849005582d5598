package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/internal/shopify"
)

// export-gids rebuilds a local gid mapping table from the live metaobject
// entries of one definition type. Run it after adding entries in the admin
// so the importer can resolve them.
func main() {
	var (
		category = pflag.String("category", "", "component category the table belongs to (cpu, gpu, ram, storage, display, color)")
		defType  = pflag.String("definition-type", "", "metaobject definition type to export")
		out      = pflag.String("out", "", "output file (default data/gids/<category>.json)")
	)
	pflag.Parse()

	cat := domain.Category(*category)
	if !cat.IsValid() {
		fmt.Fprintf(os.Stderr, "❌ --category must be one of: cpu, gpu, ram, storage, display, color\n")
		pflag.Usage()
		os.Exit(1)
	}
	if *defType == "" {
		fmt.Fprintf(os.Stderr, "❌ --definition-type is required\n")
		pflag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join("data", "gids", *category+".json")
	}

	_ = godotenv.Load()

	cfg := shopifyConfigFromEnv()
	if cfg.ShopDomain == "" || cfg.AccessToken == "" {
		fmt.Fprintf(os.Stderr, "❌ SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set\n")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := shopify.NewClient(cfg, logger)

	fmt.Printf("🔍 Fetching %q entries from %s...\n", *defType, cfg.ShopDomain)

	entries, err := client.ListMetaobjects(context.Background(), *defType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list metaobjects: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Printf("⚠️  No entries found for definition type %q\n", *defType)
		os.Exit(1)
	}

	now := time.Now().UTC()
	table := domain.MappingTable{
		Category:       cat,
		DefinitionType: *defType,
		UpdatedAt:      &now,
	}
	for _, entry := range entries {
		table.Mappings = append(table.Mappings, domain.ComponentMapping{
			DisplayName: entry.DisplayName,
			GID:         entry.GID,
			Handle:      entry.Handle,
		})
	}
	sort.Slice(table.Mappings, func(i, j int) bool {
		return table.Mappings[i].DisplayName < table.Mappings[j].DisplayName
	})

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to encode table: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to write table: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Exported %d mappings to %s\n", len(table.Mappings), *out)
}

func shopifyConfigFromEnv() config.ShopifyConfig {
	cfg := config.ShopifyConfig{
		ShopDomain:     os.Getenv("SHOPIFY_SHOP_DOMAIN"),
		AccessToken:    os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		APIVersion:     envOr("SHOPIFY_API_VERSION", "2026-01"),
		MaxRetries:     3,
		RetryDelayMS:   2000,
		TimeoutSeconds: 30,
	}
	if v, err := strconv.Atoi(os.Getenv("SHOPIFY_MAX_RETRIES")); err == nil {
		cfg.MaxRetries = v
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
