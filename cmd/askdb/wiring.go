package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/askdb-ai/askdb/pkg/audit"
	"github.com/askdb-ai/askdb/pkg/cache/vector"
	"github.com/askdb-ai/askdb/pkg/compiler"
	"github.com/askdb-ai/askdb/pkg/config"
	"github.com/askdb-ai/askdb/pkg/engine"
	"github.com/askdb-ai/askdb/pkg/executor"
	"github.com/askdb-ai/askdb/pkg/provider"
	"github.com/askdb-ai/askdb/pkg/schema"
)

// app holds the wired pipeline shared by the serve, ask, and mcp commands.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	store     *vector.Store
	auditor   *audit.Logger
	inspector *schema.Inspector
	engine    *engine.Engine
}

// newApp opens the data database and builds the full question pipeline
// from the loaded configuration.
func newApp(cfg *config.Config) (*app, error) {
	db, err := openDataDB(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db}

	var cache engine.CacheStore
	if cfg.Cache.Enabled {
		store, err := vector.New(cfg.Cache.DBPath, cfg.Cache.Dimension)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
		a.store = store
		cache = store
	}

	if cfg.Audit.Enabled {
		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.auditor = auditor
	}

	client := provider.New(cfg.Provider)
	a.inspector = schema.New(db, cfg.Data.Driver)
	a.engine = engine.New(client, cache, a.inspector, compiler.New(client), executor.New(db), engine.Options{
		Table:     cfg.Data.Table,
		Threshold: cfg.Cache.Threshold,
		TopK:      cfg.Cache.TopK,
	})

	return a, nil
}

func (a *app) Close() {
	if a.auditor != nil {
		a.auditor.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("close cache: %v", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// openDataDB opens the relational store named by the config. The driver
// name doubles as the database/sql driver: "sqlite" or "pgx".
func openDataDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Data.Driver, cfg.Data.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Data.Driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Data.Driver, err)
	}
	return db, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
