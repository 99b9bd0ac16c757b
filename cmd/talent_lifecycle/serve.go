package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort  string
	saveOnExit bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the status transition, bulk transition,
verification and statistics endpoints.

Records come from PostgreSQL (DATABASE_URL) or, for demos, from a JSON snapshot
held in memory.`,
	RunE: runServe,
}

func init() {
	addStoreFlags(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: $PORT or 8080)")
	serveCmd.Flags().BoolVar(&saveOnExit, "save-snapshot", false, "Write the in-memory store back to --snapshot on shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	jurisdictions, err := loadJurisdictions(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:                 cfg.Port,
		BulkLimit:            cfg.BulkLimit,
		TrustedDocumentHosts: cfg.TrustedDocumentHosts,
		CertificatePrefix:    cfg.CertificatePrefix,
		Jurisdictions:        jurisdictions,
		JWT:                  jwtConfig,
	}, store)
	if err != nil {
		store.close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	if saveOnExit && store.memory != nil {
		srv.OnShutdown(func() {
			if err := saveSnapshot(store.memory, cfg.SnapshotPath); err != nil {
				log.Printf("[store] %v", err)
				return
			}
			log.Printf("[store] snapshot saved to %s", cfg.SnapshotPath)
		})
	}
	srv.OnShutdown(store.close)

	return srv.Start()
}
