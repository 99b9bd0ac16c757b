//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// TalentProfile represents a talent's profile. Skills is treated as a set.
type TalentProfile struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	CityKey               string     `json:"city_key"`
	DisabilityType        string     `json:"disability_type,omitempty"`
	AccessibilityBarriers []string   `json:"accessibility_barriers,omitempty"`
	Skills                []string   `json:"skills"`
	CareerStatus          string     `json:"career_status,omitempty"`
	CampusID              *uuid.UUID `json:"campus_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Application is a talent's submission to an employer's job posting
type Application struct {
	ID         uuid.UUID `json:"id"`
	TalentID   uuid.UUID `json:"talent_id"`
	EmployerID uuid.UUID `json:"employer_id"`
	JobID      uuid.UUID `json:"job_id"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Enrollment is a talent's registration in a partner's training program
type Enrollment struct {
	ID           uuid.UUID `json:"id"`
	TalentID     uuid.UUID `json:"talent_id"`
	PartnerID    uuid.UUID `json:"partner_id"`
	TrainingID   uuid.UUID `json:"training_id"`
	Status       Status    `json:"status"`
	IssuedSkills []string  `json:"issued_skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Certification is issued once per completed enrollment
type Certification struct {
	ID                uuid.UUID `json:"id"`
	EnrollmentID      uuid.UUID `json:"enrollment_id"`
	TalentID          uuid.UUID `json:"talent_id"`
	TrainingID        uuid.UUID `json:"training_id"`
	CertificateNumber string    `json:"certificate_number"`
	Name              string    `json:"name"`
	Organizer         string    `json:"organizer"`
	Year              int       `json:"year"`
	Verified          bool      `json:"verified"`
	IssuedSkills      []string  `json:"issued_skills"`
	CreatedAt         time.Time `json:"created_at"`
}

// TrainingProgram is offered by a partner
type TrainingProgram struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

// SubjectKind identifies the kind of organization a verification request is about
type SubjectKind string

const (
	SubjectCompany    SubjectKind = "company"
	SubjectCampus     SubjectKind = "campus"
	SubjectPartner    SubjectKind = "partner"
	SubjectGovernment SubjectKind = "government"
)

// Valid reports whether k is a known subject kind.
func (k SubjectKind) Valid() bool {
	switch k {
	case SubjectCompany, SubjectCampus, SubjectPartner, SubjectGovernment:
		return true
	}
	return false
}

// VerificationRequest asks the platform to verify an organization
type VerificationRequest struct {
	ID           uuid.UUID   `json:"id"`
	SubjectKind  SubjectKind `json:"subject_kind"`
	SubjectID    uuid.UUID   `json:"subject_id"`
	DocumentLink string      `json:"document_link"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Organization is the verifiable side of a company, campus, partner or government body
type Organization struct {
	ID         uuid.UUID   `json:"id"`
	Kind       SubjectKind `json:"kind"`
	Name       string      `json:"name"`
	CityKey    string      `json:"city_key"`
	IsVerified bool        `json:"is_verified"`
	VerifiedAt *time.Time  `json:"verified_at,omitempty"`
	VerifiedBy *uuid.UUID  `json:"verified_by,omitempty"`
}

// Employer categories with a higher disability quota
const (
	EmployerCategoryGovernment = "government"
	EmployerCategoryStateOwned = "state-owned"
	EmployerCategoryPrivate    = "private"
)

// Employer is a company with headcount data for quota reporting
type Employer struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Category          string     `json:"category"`
	CityKey           string     `json:"city_key"`
	TotalEmployees    int        `json:"total_employees"`
	DisabledEmployees int        `json:"disabled_employees"`
	IsVerified        bool       `json:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	VerifiedBy        *uuid.UUID `json:"verified_by,omitempty"`
}

// JobPosting is an employer's advertised job
type JobPosting struct {
	ID             uuid.UUID `json:"id"`
	EmployerID     uuid.UUID `json:"employer_id"`
	Title          string    `json:"title"`
	CityKey        string    `json:"city_key"`
	RequiredSkills []string  `json:"required_skills"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}
