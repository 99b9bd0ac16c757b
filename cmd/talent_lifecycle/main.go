// Package main provides the entry point for the talent lifecycle service and its operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent_lifecycle",
	Short: "Talent Lifecycle API Server",
	Long:  "Talent Lifecycle validates application, training and verification status changes, applies their side effects and reports jurisdiction-scoped statistics via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
