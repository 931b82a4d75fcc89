package main

import (
	"os"
	"time"

	"github.com/sugarrush/sweetshop/internal/config"
	"github.com/sugarrush/sweetshop/internal/db"
	"github.com/sugarrush/sweetshop/internal/observability"
)

// seed applies the schema, creates the configured admin user, and loads a
// small starter catalog. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to postgres", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	ctx, cancel := config.WithTimeout(30 * time.Second)

	defer cancel()

	schemaPath := os.Getenv("SCHEMA_PATH")

	if schemaPath == "" {
		schemaPath = "migrations/schema.sql"
	}

	err = db.ApplySchema(ctx, pool, schemaPath)

	if err != nil {
		log.Error("could not apply schema", "err", err)
		os.Exit(1)
	}

	log.Info("schema applied", "path", schemaPath)

	err = db.EnsureAdminUser(ctx, pool, cfg)

	if err != nil {
		log.Error("could not seed admin user", "err", err)
		os.Exit(1)
	}

	if cfg.AdminEmail != "" {
		log.Info("admin user ensured", "email", cfg.AdminEmail)
	}

	err = db.SeedSweets(ctx, pool)

	if err != nil {
		log.Error("could not seed sweets", "err", err)
		os.Exit(1)
	}

	log.Info("seed complete")
}
