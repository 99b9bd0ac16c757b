package main

import (
	"fmt"

	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/spf13/cobra"
)

var validateMapPath string

var validateJurisdictionsCmd = &cobra.Command{
	Use:   "validate-jurisdictions",
	Short: "Validate a jurisdiction map file",
	Long:  `Check a province to city jurisdiction map against its JSON schema and report the provinces it defines.`,
	RunE:  runValidateJurisdictions,
}

func init() {
	validateJurisdictionsCmd.Flags().StringVar(&validateMapPath, "file", "", "Path to jurisdiction map JSON (required)")
	_ = validateJurisdictionsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateJurisdictionsCmd)
}

func runValidateJurisdictions(cmd *cobra.Command, _ []string) error {
	m, err := scope.LoadMap(validateMapPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	provinces := m.Provinces()
	_, _ = fmt.Fprintf(out, "Validation passed: %d provinces\n", len(provinces))
	for _, p := range provinces {
		_, _ = fmt.Fprintf(out, "  %s (%d cities)\n", p, len(m.CitiesOf(p)))
	}
	return nil
}
