package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/repository/postgres"
)

func main() {
	var (
		dir  = pflag.String("dir", "migrations", "directory holding the migration files")
		down = pflag.Bool("down", false, "roll back the most recent migration instead of applying")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *down {
		if err := postgres.RollbackMigration(cfg.Journal, *dir); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Rollback failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Rolled back one migration")
		return
	}

	if err := postgres.RunMigrations(cfg.Journal, *dir); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Migrations applied")
}
