//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is the kind of account acting on the platform
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleGovernment Role = "government"
	RoleCompany    Role = "company"
	RolePartner    Role = "partner"
	RoleCampus     Role = "campus"
	RoleTalent     Role = "talent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGovernment, RoleCompany, RolePartner, RoleCampus, RoleTalent:
		return true
	}
	return false
}

// JurisdictionLevel is the geographic reach of an authority
type JurisdictionLevel string

const (
	JurisdictionNational JurisdictionLevel = "national"
	JurisdictionProvince JurisdictionLevel = "province"
	JurisdictionCity     JurisdictionLevel = "city"
)

// ParseJurisdictionLevel parses an explicit level value. Empty input yields an empty level.
func ParseJurisdictionLevel(s string) (JurisdictionLevel, error) {
	switch l := JurisdictionLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case JurisdictionNational, JurisdictionProvince, JurisdictionCity, "":
		return l, nil
	default:
		return "", fmt.Errorf("unknown jurisdiction level: %q", s)
	}
}

// Actor is the authenticated principal performing an operation.
// OrgID is the organization the actor acts for (company, partner, campus or
// government body); for talents it is the talent profile id.
type Actor struct {
	ID                uuid.UUID         `json:"id"`
	Role              Role              `json:"role"`
	OrgID             uuid.UUID         `json:"org_id"`
	JurisdictionLevel JurisdictionLevel `json:"jurisdiction_level,omitempty"`
	JurisdictionKey   string            `json:"jurisdiction_key,omitempty"`
}

// IsAdmin reports whether the actor is a platform admin.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) String() string {
	if a.JurisdictionLevel != "" {
		return fmt.Sprintf("%s:%s(%s/%s)", a.Role, a.ID, a.JurisdictionLevel, a.JurisdictionKey)
	}
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}
