package scope

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Scope is the read filter an actor's dashboards and exports run under.
// Exactly one of All, None, CityKeys or OwnerID is meaningful.
type Scope struct {
	All       bool       `json:"all,omitempty"`
	None      bool       `json:"none,omitempty"`
	CityKeys  []string   `json:"city_keys,omitempty"`
	OwnerRole types.Role `json:"owner_role,omitempty"`
	OwnerID   uuid.UUID  `json:"owner_id,omitempty"`
}

// Resolve turns an actor into the read scope for aggregation and list exports.
func (a *Authorizer) Resolve(actor types.Actor) Scope {
	switch actor.Role {
	case types.RoleAdmin:
		return Scope{All: true}
	case types.RoleGovernment:
		switch actor.JurisdictionLevel {
		case types.JurisdictionNational:
			return Scope{All: true}
		case types.JurisdictionProvince:
			cities := a.jurisdictions.CitiesOf(actor.JurisdictionKey)
			if len(cities) == 0 {
				return Scope{None: true}
			}
			return Scope{CityKeys: cities}
		case types.JurisdictionCity:
			key := NormalizeKey(actor.JurisdictionKey)
			if key == "" {
				return Scope{None: true}
			}
			return Scope{CityKeys: []string{key}}
		}
		return Scope{None: true}
	case types.RoleCompany, types.RolePartner, types.RoleCampus:
		if actor.OrgID == uuid.Nil {
			return Scope{None: true}
		}
		return Scope{OwnerRole: actor.Role, OwnerID: actor.OrgID}
	default:
		return Scope{None: true}
	}
}

// MatchesCity reports whether a record located at key is inside a geographic scope.
// Ownership scopes never match by city.
func (s Scope) MatchesCity(key string) bool {
	if s.All {
		return true
	}
	if s.None || len(s.CityKeys) == 0 {
		return false
	}
	k := NormalizeKey(key)
	for _, c := range s.CityKeys {
		if c == k {
			return true
		}
	}
	return false
}

// IsOwnership reports whether the scope filters by owning organization.
func (s Scope) IsOwnership() bool {
	return !s.All && !s.None && s.OwnerID != uuid.Nil
}

func (s Scope) String() string {
	switch {
	case s.All:
		return "all"
	case s.None:
		return "none"
	case s.IsOwnership():
		return fmt.Sprintf("%s:%s", s.OwnerRole, s.OwnerID)
	default:
		return "cities:" + strings.Join(s.CityKeys, ",")
	}
}
