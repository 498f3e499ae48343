package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"github.com/vibecoder/backend/config"
	"github.com/vibecoder/backend/internal/database"
)

func main() {
	steps := pflag.IntP("steps", "n", 1, "number of migrations to revert with down")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [flags] up|down|status")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	command := pflag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	switch command {
	case "up":
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Migration failed", "error", err)
		}
		log.Info("Migrations completed successfully")

	case "down":
		if *steps < 1 {
			log.Fatal("--steps must be at least 1", "steps", *steps)
		}
		if err := database.RollbackMigrations(db, *steps); err != nil {
			log.Fatal("Rollback failed", "error", err)
		}
		log.Info("Rollback completed", "steps", *steps)

	case "status":
		showMigrationStatus(db)

	default:
		log.Error("Unknown command", "command", command)
		pflag.Usage()
		os.Exit(2)
	}
}

func showMigrationStatus(db *sql.DB) {
	version, err := database.CurrentVersion(db)
	if err != nil {
		log.Warn("No migrations found or table doesn't exist", "error", err)
		return
	}

	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		log.Error("Failed to list migrations", "error", err)
		return
	}
	defer rows.Close()

	fmt.Printf("Current version: %d\n\n", version)
	fmt.Println("Applied Migrations:")
	fmt.Println("-------------------")
	for rows.Next() {
		var v int
		var appliedAt string
		if err := rows.Scan(&v, &appliedAt); err != nil {
			log.Error("Error scanning row", "error", err)
			continue
		}
		fmt.Printf("Version %d - Applied at: %s\n", v, appliedAt)
	}
}
