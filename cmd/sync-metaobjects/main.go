package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/internal/shopify"
)

// sync-metaobjects pushes one local gid table to Shopify. Every mapping is
// upserted by handle, so the command is safe to re-run; the returned gids
// are written back into the table file.
func main() {
	var (
		category = pflag.String("category", "", "component category to sync (cpu, gpu, ram, storage, display, color)")
		dataDir  = pflag.String("data-dir", "data", "data directory holding gids/")
		nameKey  = pflag.String("name-key", "name", "metaobject field key that holds the display name")
		dryRun   = pflag.Bool("dry-run", false, "print the plan without calling Shopify")
	)
	pflag.Parse()

	cat := domain.Category(*category)
	if !cat.IsValid() {
		fmt.Fprintf(os.Stderr, "❌ --category must be one of: cpu, gpu, ram, storage, display, color\n")
		pflag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg := shopifyConfigFromEnv()
	if !*dryRun && (cfg.ShopDomain == "" || cfg.AccessToken == "") {
		fmt.Fprintf(os.Stderr, "❌ SHOPIFY_SHOP_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set\n")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gids, err := catalog.LoadGIDTables(filepath.Join(*dataDir, "gids"), logger)
	if err != nil {
		logger.Fatal("Failed to load gid tables", zap.Error(err))
	}
	table, err := gids.Table(cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ No %s table under %s\n", cat, *dataDir)
		os.Exit(1)
	}

	if *dryRun {
		for _, m := range table.Mappings {
			fmt.Printf("⏭️  would upsert %s/%s  %q\n", table.DefinitionType, handleFor(m), m.DisplayName)
		}
		fmt.Printf("\n⏭️  Dry run: %d entries, nothing sent\n", len(table.Mappings))
		return
	}

	client := shopify.NewClient(cfg, logger)
	ctx := context.Background()

	fmt.Printf("🔁 Syncing %d %s mappings to %s...\n", len(table.Mappings), cat, cfg.ShopDomain)

	failed := 0
	for i := range table.Mappings {
		m := &table.Mappings[i]
		handle := handleFor(*m)

		obj, err := client.UpsertMetaobject(ctx,
			shopify.MetaobjectHandleInput{Type: table.DefinitionType, Handle: handle},
			shopify.MetaobjectUpsertInput{
				Fields: []shopify.MetaobjectFieldInput{
					{Key: *nameKey, Value: m.DisplayName},
				},
			})
		if err != nil {
			fmt.Printf("❌ %s: %v\n", m.DisplayName, err)
			failed++
			continue
		}

		m.GID = obj.GID
		m.Handle = obj.Handle
		fmt.Printf("✅ %s  %s\n", m.DisplayName, obj.GID)
	}

	now := time.Now().UTC()
	table.UpdatedAt = &now

	out := filepath.Join(*dataDir, "gids", string(cat)+".json")
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to encode table: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to write table: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Synced %d entries, updated %s\n", len(table.Mappings)-failed, out)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "❌ %d entries failed\n", failed)
		os.Exit(1)
	}
}

func handleFor(m domain.ComponentMapping) string {
	if m.Handle != "" {
		return m.Handle
	}
	return slugify(m.DisplayName)
}

// slugify turns a display name into a metaobject handle
func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
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
