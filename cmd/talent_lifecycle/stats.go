package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/talent-lifecycle/internal/observability"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/spf13/cobra"
)

var (
	statsActor  actorFlags
	statsJSON   bool
	statsQuotas bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute dashboard statistics for an actor's scope",
	Long: `Compute the same statistics served by GET /stats: employment rate,
disability and skill distributions, the skill gap, pipeline funnels and
disability quota compliance, restricted to what the given actor may see.`,
	RunE: runStats,
}

func init() {
	addStoreFlags(statsCmd)
	statsActor.register(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
	statsCmd.Flags().BoolVar(&statsQuotas, "quotas", false, "Also list per-employer quota compliance")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	actor, err := statsActor.actor()
	if err != nil {
		return err
	}

	cfg, err := resolveConfig()
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
	defer store.close()

	visible := scope.NewAuthorizer(jurisdictions).Resolve(actor)
	stats, err := reporting.NewEngine(store).ComputeStats(ctx, visible)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		return nil
	}

	printer := observability.NewPrinter(out)
	printer.PrintStats(stats)
	if statsQuotas {
		printer.PrintQuotas(stats.Quotas)
	}
	return nil
}
