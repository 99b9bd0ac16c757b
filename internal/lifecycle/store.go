package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Store is the persistence surface the orchestrator depends on.
//
// Get methods return (nil, nil) when the record does not exist.
// InsertCertification returns ErrDuplicate when a certification already
// exists for the enrollment.
type Store interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	// UpdateApplicationStatus persists status; a nil notes pointer leaves notes unchanged.
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.Status, notes *string) error

	GetEnrollment(ctx context.Context, id uuid.UUID) (*types.Enrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status types.Status) error
	SetEnrollmentIssuedSkills(ctx context.Context, id uuid.UUID, skills []string) error

	GetTrainingProgram(ctx context.Context, id uuid.UUID) (*types.TrainingProgram, error)

	GetCertificationByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Certification, error)
	InsertCertification(ctx context.Context, cert *types.Certification) error

	GetTalent(ctx context.Context, id uuid.UUID) (*types.TalentProfile, error)
	// MergeTalentSkills adds the skills missing from the talent's set in one
	// atomic step and reports whether any were added. Existing skills are never
	// removed, so concurrent merges for the same talent both survive.
	MergeTalentSkills(ctx context.Context, id uuid.UUID, skills []string) (merged bool, err error)

	GetVerificationRequest(ctx context.Context, id uuid.UUID) (*types.VerificationRequest, error)
	// GetLatestVerificationRequest returns the most recent request for a subject.
	GetLatestVerificationRequest(ctx context.Context, kind types.SubjectKind, subjectID uuid.UUID) (*types.VerificationRequest, error)
	// InsertVerificationRequest returns ErrDuplicate when the subject already has a request.
	InsertVerificationRequest(ctx context.Context, req *types.VerificationRequest) error
	UpdateVerificationRequest(ctx context.Context, id uuid.UUID, status types.Status, documentLink string) error

	GetOrganization(ctx context.Context, kind types.SubjectKind, id uuid.UUID) (*types.Organization, error)
	MarkOrganizationVerified(ctx context.Context, kind types.SubjectKind, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error
}
