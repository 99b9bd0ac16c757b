package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/talent-lifecycle/internal/db"
	"github.com/spf13/cobra"
)

var (
	migrateURL   string
	migratePrint bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	Long:  `Apply the idempotent schema (tables and the one-certificate-per-enrollment unique index) to the database.`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateURL, "database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), db.Schema())
		return nil
	}

	url := migrateURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --database-url is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
	return nil
}
