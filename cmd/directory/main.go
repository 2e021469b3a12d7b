// Package main is the entrypoint for the directory service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/a2amesh/agent-mesh/internal/config"
	"github.com/a2amesh/agent-mesh/internal/dirserver"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const usage = `Usage: directory [command]

Commands:
  (default)       Start the directory service (HTTP, store, expiry sweeper).
  migrate up      Run database migrations only (does not start the server).
  migrate status  Report whether the schema has been applied.

Environment: DATABASE_URL, MIGRATION_PATH (migrate), HEARTBEAT_TTL, COMMS_URL. See README for full list.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		sub := "up"
		if len(args) > 1 {
			sub = args[1]
		}
		if err := runMigrate(sub); err != nil {
			log.Fatalf("directory migrate: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "":
		// fall through to server
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := dirserver.Run(); err != nil {
		log.Fatalf("directory: fatal error: %v", err)
	}
}

func runMigrate(sub string) error {
	cfg, err := config.LoadDirectoryConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	switch sub {
	case "up":
		migrationSQL, err := store.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			return fmt.Errorf("load migrations: %w", err)
		}
		if err := store.RunMigrations(ctx, pool, migrationSQL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	case "status":
		return store.MigrationStatus(ctx, pool, cfg.MigrationPath)
	default:
		return fmt.Errorf("unknown migrate subcommand %q (want up or status)", sub)
	}
}
