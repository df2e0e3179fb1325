package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/migrations"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const migrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     VARCHAR(255) PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	dryRun := flag.Bool("dry-run", false, "Print pending migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	files, err := fs.Glob(migrations.Postgres, "postgres/*.up.sql")
	if err != nil {
		logger.Fatalw("Failed to list migrations", "error", err)
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		logger.Fatalw("Failed to create migrations table", "error", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		logger.Fatalw("Failed to read applied migrations", "error", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, file := range files {
		version := strings.TrimSuffix(path.Base(file), ".up.sql")
		if done[version] {
			logger.Debugw("Skipping applied migration", "version", version)
			continue
		}

		body, err := migrations.Postgres.ReadFile(file)
		if err != nil {
			logger.Fatalw("Failed to read migration", "version", version, "error", err)
		}

		if *dryRun {
			fmt.Printf("-- %s\n%s\n", version, body)
			continue
		}

		logger.Infow("Applying migration", "version", version)
		if err := apply(ctx, db, version, string(body)); err != nil {
			logger.Fatalw("Failed to apply migration", "version", version, "error", err)
		}
	}

	fmt.Println("Migration process completed")
}

// apply runs one migration file and records it in the same transaction
func apply(ctx context.Context, db *sqlx.DB, version, body string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return err
	}
	return tx.Commit()
}
