// Package main implements the entry point for the quest log API
// server: a shared task board where tasks move through a fixed
// workflow, earn split rewards on completion, and receive LLM-generated
// stories.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/taskfable/questlog-api/internal/config"
	"github.com/taskfable/questlog-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a migration command (up, down, status, version, create) and exit")
	migrationName := flag.String("migration-name", "", "Name for a new migration (with -migrate create)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logger.Setup(cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd, *migrationName); err != nil {
			slog.Error("migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
