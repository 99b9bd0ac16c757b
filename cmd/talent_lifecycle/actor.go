package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/spf13/cobra"
)

// actorFlags describes the principal a command acts as.
type actorFlags struct {
	userID string
	role   string
	orgID  string
	level  string
	key    string
}

func (f *actorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userID, "user-id", "", "Actor user id (default: random)")
	cmd.Flags().StringVar(&f.role, "role", "", "Actor role: admin, government, company, partner, campus or talent (required)")
	cmd.Flags().StringVar(&f.orgID, "org-id", "", "Organization the actor acts for")
	cmd.Flags().StringVar(&f.level, "level", "", "Jurisdiction level for government actors: national, province or city")
	cmd.Flags().StringVar(&f.key, "jurisdiction", "", "Province or city key for government actors")
	_ = cmd.MarkFlagRequired("role")
}

// actor builds and checks the actor described by the flags.
func (f *actorFlags) actor() (types.Actor, error) {
	role := types.Role(f.role)
	if !role.Valid() {
		return types.Actor{}, fmt.Errorf("invalid --role %q", f.role)
	}

	actor := types.Actor{ID: uuid.New(), Role: role, JurisdictionKey: f.key}
	if f.userID != "" {
		id, err := uuid.Parse(f.userID)
		if err != nil {
			return types.Actor{}, fmt.Errorf("invalid --user-id: %w", err)
		}
		actor.ID = id
	}

	if f.orgID != "" {
		id, err := uuid.Parse(f.orgID)
		if err != nil {
			return types.Actor{}, fmt.Errorf("invalid --org-id: %w", err)
		}
		actor.OrgID = id
	}

	level, err := types.ParseJurisdictionLevel(f.level)
	if err != nil {
		return types.Actor{}, err
	}
	actor.JurisdictionLevel = level

	switch role {
	case types.RoleGovernment:
		if level == "" {
			return types.Actor{}, fmt.Errorf("--level is required for government actors")
		}
		if level != types.JurisdictionNational && f.key == "" {
			return types.Actor{}, fmt.Errorf("--jurisdiction is required for %s level", level)
		}
	case types.RoleCompany, types.RolePartner, types.RoleCampus, types.RoleTalent:
		if actor.OrgID == uuid.Nil {
			return types.Actor{}, fmt.Errorf("--org-id is required for %s actors", role)
		}
	}

	return actor, nil
}
