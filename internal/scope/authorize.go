package scope

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Action is what the actor wants to do with the target
type Action string

const (
	ActionRead         Action = "read"
	ActionExport       Action = "export"
	ActionUpdateStatus Action = "update_status"
	ActionVerify       Action = "verify"
	ActionSubmit       Action = "submit"
)

// IsRead reports whether the action is read-class.
func (a Action) IsRead() bool {
	return a == ActionRead || a == ActionExport
}

// TargetKind is the kind of entity an action is applied to
type TargetKind string

const (
	TargetApplication  TargetKind = "application"
	TargetEnrollment   TargetKind = "enrollment"
	TargetVerification TargetKind = "verification_request"
	TargetTalent       TargetKind = "talent"
	TargetEmployer     TargetKind = "employer"
)

// Target describes the entity being acted upon.
//
// OwnerID is the organization owning an opportunity (the employer for an
// application, the partner for an enrollment). SubjectID is the talent for
// applications and enrollments, and the organization being verified for
// verification requests. LocationKey is the declared city key used for
// jurisdiction checks.
type Target struct {
	Kind        TargetKind
	OwnerID     uuid.UUID
	SubjectID   uuid.UUID
	SubjectKind types.SubjectKind
	LocationKey string
}

// Authorizer decides whether an actor may perform an action on a target.
type Authorizer struct {
	jurisdictions *Map
}

// NewAuthorizer creates an Authorizer over the given jurisdiction map.
func NewAuthorizer(jurisdictions *Map) *Authorizer {
	if jurisdictions == nil {
		jurisdictions = NewMap(nil)
	}
	return &Authorizer{jurisdictions: jurisdictions}
}

// Jurisdictions returns the map the authorizer resolves provinces with.
func (a *Authorizer) Jurisdictions() *Map {
	return a.jurisdictions
}

// Authorize returns nil when the actor may perform action on target, and a
// *ForbiddenError otherwise.
func (a *Authorizer) Authorize(actor types.Actor, action Action, target Target) error {
	if actor.IsAdmin() {
		return nil
	}

	var reason string
	switch target.Kind {
	case TargetApplication:
		reason = a.authorizeOpportunity(actor, action, target, types.RoleCompany)
	case TargetEnrollment:
		reason = a.authorizeOpportunity(actor, action, target, types.RolePartner)
	case TargetVerification:
		reason = a.authorizeVerification(actor, action, target)
	case TargetTalent:
		reason = a.authorizeTalent(actor, action, target)
	case TargetEmployer:
		reason = a.authorizeEmployer(actor, action, target)
	default:
		reason = "unknown target kind"
	}

	if reason == "" {
		return nil
	}
	return &ForbiddenError{Actor: actor, Action: action, Target: target.Kind, Reason: reason}
}

// authorizeOpportunity handles applications and enrollments. Mutations are
// scoped by ownership only; geography never grants a mutation here.
func (a *Authorizer) authorizeOpportunity(actor types.Actor, action Action, target Target, ownerRole types.Role) string {
	isOwner := actor.Role == ownerRole && actor.OrgID != uuid.Nil && actor.OrgID == target.OwnerID

	if !action.IsRead() {
		if action != ActionUpdateStatus {
			return "unsupported action"
		}
		if !isOwner {
			return "only the owning " + string(ownerRole) + " may change this status"
		}
		return ""
	}

	if isOwner {
		return ""
	}
	if actor.Role == types.RoleTalent && actor.OrgID != uuid.Nil && actor.OrgID == target.SubjectID {
		return ""
	}
	if a.jurisdictionAllows(actor, action, target.LocationKey) {
		return ""
	}
	return "record is outside the actor's scope"
}

// authorizeVerification handles verification requests. Only company subjects
// can be decided outside the platform admin, and only by the city authority
// owning the company's declared location.
func (a *Authorizer) authorizeVerification(actor types.Actor, action Action, target Target) string {
	isSubject := actor.OrgID != uuid.Nil && actor.OrgID == target.SubjectID && roleMatchesSubject(actor.Role, target.SubjectKind)

	switch {
	case action == ActionSubmit:
		if isSubject {
			return ""
		}
		return "only the subject organization may submit its verification"
	case action.IsRead():
		if isSubject || a.jurisdictionAllows(actor, action, target.LocationKey) {
			return ""
		}
		return "verification request is outside the actor's scope"
	case action == ActionVerify || action == ActionUpdateStatus:
		if target.SubjectKind != types.SubjectCompany {
			return "only the platform admin may decide " + string(target.SubjectKind) + " verifications"
		}
		if actor.Role != types.RoleGovernment || actor.JurisdictionLevel != types.JurisdictionCity {
			return "only a city-level authority may decide company verifications"
		}
		if !a.jurisdictionAllows(actor, action, target.LocationKey) {
			return "company is outside the authority's city"
		}
		return ""
	default:
		return "unsupported action"
	}
}

// authorizeTalent handles the talent directory, a jurisdiction-bound entity.
func (a *Authorizer) authorizeTalent(actor types.Actor, action Action, target Target) string {
	if actor.Role == types.RoleTalent && actor.OrgID != uuid.Nil && actor.OrgID == target.SubjectID {
		return ""
	}
	if a.jurisdictionAllows(actor, action, target.LocationKey) {
		return ""
	}
	return "talent is outside the actor's jurisdiction"
}

// authorizeEmployer handles company records (quota, directory).
func (a *Authorizer) authorizeEmployer(actor types.Actor, action Action, target Target) string {
	if action.IsRead() && actor.Role == types.RoleCompany && actor.OrgID != uuid.Nil && actor.OrgID == target.SubjectID {
		return ""
	}
	if a.jurisdictionAllows(actor, action, target.LocationKey) {
		return ""
	}
	return "company is outside the actor's jurisdiction"
}

// jurisdictionAllows applies the geographic rules for government authorities:
// city compares keys directly, province tests membership and reads only,
// national reads everything and mutates nothing.
func (a *Authorizer) jurisdictionAllows(actor types.Actor, action Action, locationKey string) bool {
	if actor.Role != types.RoleGovernment {
		return false
	}
	key := NormalizeKey(locationKey)

	switch actor.JurisdictionLevel {
	case types.JurisdictionCity:
		return key != "" && key == NormalizeKey(actor.JurisdictionKey)
	case types.JurisdictionProvince:
		return action.IsRead() && key != "" && a.jurisdictions.Contains(actor.JurisdictionKey, key)
	case types.JurisdictionNational:
		return action.IsRead()
	default:
		return false
	}
}

func roleMatchesSubject(role types.Role, kind types.SubjectKind) bool {
	switch kind {
	case types.SubjectCompany:
		return role == types.RoleCompany
	case types.SubjectCampus:
		return role == types.RoleCampus
	case types.SubjectPartner:
		return role == types.RolePartner
	case types.SubjectGovernment:
		return role == types.RoleGovernment
	}
	return false
}

// InferLevel maps a legacy authority category label to a jurisdiction level.
// It is only consulted for records that predate the explicit level field.
func InferLevel(categoryLabel string) types.JurisdictionLevel {
	label := strings.ToLower(categoryLabel)
	switch {
	case strings.Contains(label, "provinsi") || strings.Contains(label, "province"):
		return types.JurisdictionProvince
	case strings.Contains(label, "kota") || strings.Contains(label, "kabupaten") || strings.Contains(label, "city"):
		return types.JurisdictionCity
	case strings.Contains(label, "kementerian") || strings.Contains(label, "nasional") || strings.Contains(label, "national"):
		return types.JurisdictionNational
	default:
		return ""
	}
}
