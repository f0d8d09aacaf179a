package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kisanmitra/kisanmitra/internal/assistant"
	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/config"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/db"
	"github.com/kisanmitra/kisanmitra/internal/market"
	"github.com/kisanmitra/kisanmitra/internal/responder"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kisanmitra init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildCatalog loads the built-in rules and applies any configured
// overlay files.
func buildCatalog(cfg *config.Config) (*rules.Catalog, error) {
	catalog := rules.Default()
	if len(cfg.RulePaths) == 0 {
		return catalog, nil
	}
	merged, err := catalog.LoadOverlays(cfg.RulePaths...)
	if err != nil {
		return nil, fmt.Errorf("loading rule overlays: %w", err)
	}
	return merged, nil
}

// buildEngine opens the database and assembles the assistant engine with
// all its stores. The caller owns closing the returned database.
func buildEngine(cfg *config.Config) (*assistant.Engine, *market.Store, *db.DB, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "kisanmitra.db"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	catalog, err := buildCatalog(cfg)
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	cls, err := classifier.New(catalog)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("compiling rules: %w", err)
	}

	prices := market.NewStore(database)
	manager := conversation.NewManager(conversation.NewSQLiteStore(database))
	engine := assistant.NewEngine(cls, manager, responder.NewGenerator(prices))

	return engine, prices, database, nil
}
