package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/db"
	"github.com/jonathan/talent-lifecycle/internal/memstore"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/server"
	"github.com/spf13/cobra"
)

// Flags shared by every command that opens a store.
var (
	configPath   string
	databaseURL  string
	snapshotPath string
	mapPath      string
)

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Path to JSON config file")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "JSON snapshot to serve from memory instead of PostgreSQL")
	cmd.Flags().StringVar(&mapPath, "jurisdictions", "", "Path to jurisdiction map (default: built-in map)")
}

// resolveConfig layers flags over the config file over the environment.
func resolveConfig() (config.Config, error) {
	fileCfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = loaded
	}

	flagCfg := &config.Config{
		DatabaseURL:     databaseURL,
		SnapshotPath:    snapshotPath,
		JurisdictionMap: mapPath,
	}
	merged := flagCfg.MergeWithDefaults(fileCfg.MergeWithDefaults(config.FromEnv()))

	// A snapshot on the command line wins over a database URL from the environment
	if snapshotPath != "" && databaseURL == "" {
		merged.DatabaseURL = ""
	}

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// loadJurisdictions returns the configured jurisdiction map or the built-in one.
func loadJurisdictions(cfg config.Config) (*scope.Map, error) {
	if cfg.JurisdictionMap == "" {
		return scope.DefaultMap(), nil
	}
	return scope.LoadMap(cfg.JurisdictionMap)
}

// openedStore is a store plus the cleanup that releases it.
type openedStore struct {
	server.Store
	memory *memstore.Store
	close  func()
}

// openStore connects to PostgreSQL when a database URL is set and otherwise
// loads the snapshot into memory.
func openStore(ctx context.Context, cfg config.Config) (*openedStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Printf("[store] connected to PostgreSQL")
		return &openedStore{Store: database, close: database.Close}, nil
	case cfg.SnapshotPath != "":
		mem, err := memstore.LoadSnapshot(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		log.Printf("[store] loaded snapshot %s", cfg.SnapshotPath)
		return &openedStore{Store: mem, memory: mem, close: func() {}}, nil
	default:
		return nil, fmt.Errorf("a database URL (DATABASE_URL or --database-url) or --snapshot is required")
	}
}

// saveSnapshot writes the in-memory store back to path.
func saveSnapshot(store *memstore.Store, path string) error {
	data, err := json.MarshalIndent(store.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}
