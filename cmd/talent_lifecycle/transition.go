package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/observability"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/spf13/cobra"
)

var (
	transitionActor  actorFlags
	transitionKind   string
	transitionIDs    []string
	transitionStatus string
	transitionNotes  string
	transitionSave   bool
)

var transitionCmd = &cobra.Command{
	Use:   "transition",
	Short: "Apply a status change to one or more records",
	Long: `Move applications, enrollments or verification requests to a new status
as the given actor, running the same checks and side effects as the API.

A single --id applies one transition; several ids run as a bulk operation where
each id succeeds or fails on its own. With --snapshot, pass --save-snapshot to
keep the changes.`,
	RunE: runTransition,
}

func init() {
	addStoreFlags(transitionCmd)
	transitionActor.register(transitionCmd)
	transitionCmd.Flags().StringVar(&transitionKind, "kind", "", "Pipeline: application, enrollment or verification (required)")
	transitionCmd.Flags().StringSliceVar(&transitionIDs, "id", nil, "Record id; repeat or comma-separate for bulk (required)")
	transitionCmd.Flags().StringVar(&transitionStatus, "status", "", "Requested status (required)")
	transitionCmd.Flags().StringVar(&transitionNotes, "notes", "", "Notes stored with application status changes")
	transitionCmd.Flags().BoolVar(&transitionSave, "save-snapshot", false, "Write changes back to --snapshot")
	_ = transitionCmd.MarkFlagRequired("kind")
	_ = transitionCmd.MarkFlagRequired("id")
	_ = transitionCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(transitionCmd)
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runTransition(cmd *cobra.Command, _ []string) error {
	actor, err := transitionActor.actor()
	if err != nil {
		return err
	}
	kind, err := types.ParsePipelineKind(transitionKind)
	if err != nil {
		return err
	}
	ids, err := parseIDs(transitionIDs)
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

	orch := lifecycle.NewOrchestrator(store, scope.NewAuthorizer(jurisdictions), lifecycle.Config{
		CertificatePrefix:    cfg.CertificatePrefix,
		TrustedDocumentHosts: cfg.TrustedDocumentHosts,
	})
	printer := observability.NewPrinter(cmd.OutOrStdout())
	status := types.NormalizeStatus(transitionStatus)
	opts := lifecycle.Options{Notes: transitionNotes}

	var runErr error
	if len(ids) == 1 {
		result, err := orch.ApplyTransition(ctx, actor, kind, ids[0], status, opts)
		printer.PrintTransition(result)
		runErr = err
	} else {
		if len(ids) > cfg.BulkLimit {
			return fmt.Errorf("too many ids: %d exceeds bulk limit %d", len(ids), cfg.BulkLimit)
		}
		result, err := orch.ApplyBulk(ctx, actor, kind, ids, status, opts)
		printer.PrintBulkResult(result)
		runErr = err
		if err == nil && len(result.Failed) > 0 {
			runErr = fmt.Errorf("%d of %d transitions failed", len(result.Failed), result.Total())
		}
	}

	if transitionSave && store.memory != nil {
		if err := saveSnapshot(store.memory, cfg.SnapshotPath); err != nil {
			return err
		}
	}
	return runErr
}
