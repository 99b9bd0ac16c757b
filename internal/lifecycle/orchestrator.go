package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/jonathan/talent-lifecycle/internal/verification"
)

// SideEffect names a side effect applied by a transition
type SideEffect string

const (
	SideEffectCertificateIssued SideEffect = "certificate_issued"
	SideEffectSkillsSnapshotted SideEffect = "issued_skills_snapshotted"
	SideEffectSkillsMerged      SideEffect = "talent_skills_merged"
	SideEffectEntityVerified    SideEffect = "entity_verified"
)

// DefaultCertificatePrefix prefixes generated certificate numbers.
const DefaultCertificatePrefix = "CERT"

// Config holds orchestrator settings
type Config struct {
	CertificatePrefix    string
	TrustedDocumentHosts []string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Options carries optional per-transition input.
type Options struct {
	// Notes is stored with application status changes. Empty leaves notes unchanged.
	Notes string
}

// TransitionResult describes what a transition did.
type TransitionResult struct {
	Kind          types.PipelineKind   `json:"kind"`
	RecordID      uuid.UUID            `json:"record_id"`
	From          types.Status         `json:"from"`
	To            types.Status         `json:"to"`
	Changed       bool                 `json:"changed"`
	SideEffects   []SideEffect         `json:"side_effects,omitempty"`
	Certification *types.Certification `json:"certification,omitempty"`
}

// Orchestrator validates and applies status transitions and their side effects.
// Store and actor are passed explicitly; the orchestrator holds no session state.
type Orchestrator struct {
	store      Store
	authorizer *scope.Authorizer
	config     Config
}

// NewOrchestrator creates a new Orchestrator with the given dependencies
func NewOrchestrator(store Store, authorizer *scope.Authorizer, cfg Config) *Orchestrator {
	if cfg.CertificatePrefix == "" {
		cfg.CertificatePrefix = DefaultCertificatePrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{store: store, authorizer: authorizer, config: cfg}
}

// ApplyTransition moves one record to requested and runs the side effects the
// transition requires.
//
// When the status was persisted but a side effect failed, the returned result
// is non-nil and the error has KindPartialSideEffect; calling again with the
// same arguments finishes the pending work.
func (o *Orchestrator) ApplyTransition(ctx context.Context, actor types.Actor, kind types.PipelineKind, id uuid.UUID, requested types.Status, opts Options) (*TransitionResult, error) {
	requested = types.NormalizeStatus(string(requested))

	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, string(kind)+" transition", id, err)
	}

	var (
		result *TransitionResult
		err    error
	)
	switch kind {
	case types.PipelineApplication:
		result, err = o.applyApplication(ctx, actor, id, requested, opts)
	case types.PipelineEnrollment:
		result, err = o.applyEnrollment(ctx, actor, id, requested)
	case types.PipelineVerification:
		result, err = o.applyVerification(ctx, actor, id, requested)
	default:
		return nil, newError(KindInvalidTransition, "transition", id, fmt.Errorf("unknown pipeline kind %q", kind))
	}

	if err != nil {
		log.Printf("[transition] %s %s -> %s by %s failed: %v", kind, id, requested, actor, err)
		return result, err
	}
	log.Printf("[transition] %s %s %s -> %s by %s (changed=%t, side_effects=%v)",
		kind, id, result.From, result.To, actor, result.Changed, result.SideEffects)
	return result, nil
}

func (o *Orchestrator) applyApplication(ctx context.Context, actor types.Actor, id uuid.UUID, requested types.Status, opts Options) (*TransitionResult, error) {
	const op = "application transition"

	app, err := o.store.GetApplication(ctx, id)
	if err != nil {
		return nil, storeError(op, id, err)
	}
	if app == nil {
		return nil, newError(KindNotFound, op, id, fmt.Errorf("application not found"))
	}

	target := scope.Target{Kind: scope.TargetApplication, OwnerID: app.EmployerID, SubjectID: app.TalentID}
	if err := o.authorizer.Authorize(actor, scope.ActionUpdateStatus, target); err != nil {
		return nil, newError(KindForbidden, op, id, err)
	}
	if err := Validate(types.PipelineApplication, app.Status, requested); err != nil {
		return nil, newError(KindInvalidTransition, op, id, errors.Unwrap(err))
	}

	result := &TransitionResult{Kind: types.PipelineApplication, RecordID: id, From: app.Status, To: requested}

	var notes *string
	if n := strings.TrimSpace(opts.Notes); n != "" && n != app.Notes {
		notes = &n
	}
	if requested == app.Status && notes == nil {
		return result, nil
	}

	// Hired carries no side effect; employment statistics are derived on read.
	if err := o.store.UpdateApplicationStatus(ctx, id, requested, notes); err != nil {
		return nil, storeError(op, id, err)
	}
	result.Changed = requested != app.Status
	return result, nil
}

func (o *Orchestrator) applyEnrollment(ctx context.Context, actor types.Actor, id uuid.UUID, requested types.Status) (*TransitionResult, error) {
	const op = "enrollment transition"

	enrollment, err := o.store.GetEnrollment(ctx, id)
	if err != nil {
		return nil, storeError(op, id, err)
	}
	if enrollment == nil {
		return nil, newError(KindNotFound, op, id, fmt.Errorf("enrollment not found"))
	}

	target := scope.Target{Kind: scope.TargetEnrollment, OwnerID: enrollment.PartnerID, SubjectID: enrollment.TalentID}
	if err := o.authorizer.Authorize(actor, scope.ActionUpdateStatus, target); err != nil {
		return nil, newError(KindForbidden, op, id, err)
	}
	if err := Validate(types.PipelineEnrollment, enrollment.Status, requested); err != nil {
		return nil, newError(KindInvalidTransition, op, id, errors.Unwrap(err))
	}

	result := &TransitionResult{Kind: types.PipelineEnrollment, RecordID: id, From: enrollment.Status, To: requested}

	if requested != enrollment.Status {
		if err := o.store.UpdateEnrollmentStatus(ctx, id, requested); err != nil {
			return nil, storeError(op, id, err)
		}
		result.Changed = true
	}

	// Completion side effects also run on a repeated request so that a retry
	// after a partial failure finishes the pending work.
	if requested == types.EnrollmentCompleted {
		cert, effects, err := o.completeEnrollment(ctx, enrollment)
		result.Certification = cert
		result.SideEffects = effects
		if err != nil {
			return result, newError(KindPartialSideEffect, op, id, err)
		}
	}
	return result, nil
}

// completeEnrollment issues the certification, snapshots the issued skills
// and merges them into the talent profile. Every step is idempotent.
func (o *Orchestrator) completeEnrollment(ctx context.Context, enrollment *types.Enrollment) (*types.Certification, []SideEffect, error) {
	var effects []SideEffect

	cert, err := o.store.GetCertificationByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, effects, fmt.Errorf("failed to check certification: %w", err)
	}

	if cert == nil {
		training, err := o.store.GetTrainingProgram(ctx, enrollment.TrainingID)
		if err != nil {
			return nil, effects, fmt.Errorf("failed to load training program: %w", err)
		}
		if training == nil {
			return nil, effects, fmt.Errorf("training program not found: %s", enrollment.TrainingID)
		}

		now := o.config.Now()
		candidate := &types.Certification{
			ID:                uuid.New(),
			EnrollmentID:      enrollment.ID,
			TalentID:          enrollment.TalentID,
			TrainingID:        enrollment.TrainingID,
			CertificateNumber: o.certificateNumber(now, enrollment.ID),
			Name:              training.Title,
			Organizer:         training.Organizer,
			Year:              now.Year(),
			Verified:          true,
			IssuedSkills:      NormalizeSkillSet(training.Skills),
			CreatedAt:         now,
		}

		switch err := o.store.InsertCertification(ctx, candidate); {
		case err == nil:
			cert = candidate
			effects = append(effects, SideEffectCertificateIssued)
		case errors.Is(err, ErrDuplicate):
			// Another completion won the insert; use its certificate.
			cert, err = o.store.GetCertificationByEnrollment(ctx, enrollment.ID)
			if err != nil {
				return nil, effects, fmt.Errorf("failed to reload certification: %w", err)
			}
			if cert == nil {
				return nil, effects, fmt.Errorf("certification reported as duplicate but not found")
			}
		default:
			return nil, effects, fmt.Errorf("failed to insert certification: %w", err)
		}
	}

	issued := cert.IssuedSkills
	if !sameSkillSet(enrollment.IssuedSkills, issued) {
		if err := o.store.SetEnrollmentIssuedSkills(ctx, enrollment.ID, issued); err != nil {
			return cert, effects, fmt.Errorf("failed to snapshot issued skills: %w", err)
		}
		effects = append(effects, SideEffectSkillsSnapshotted)
	}

	merged, err := o.store.MergeTalentSkills(ctx, enrollment.TalentID, issued)
	if err != nil {
		return cert, effects, fmt.Errorf("failed to merge talent skills: %w", err)
	}
	if merged {
		effects = append(effects, SideEffectSkillsMerged)
	}

	return cert, effects, nil
}

func (o *Orchestrator) applyVerification(ctx context.Context, actor types.Actor, id uuid.UUID, requested types.Status) (*TransitionResult, error) {
	const op = "verification transition"

	req, err := o.store.GetVerificationRequest(ctx, id)
	if err != nil {
		return nil, storeError(op, id, err)
	}
	if req == nil {
		return nil, newError(KindNotFound, op, id, fmt.Errorf("verification request not found"))
	}
	org, err := o.store.GetOrganization(ctx, req.SubjectKind, req.SubjectID)
	if err != nil {
		return nil, storeError(op, id, err)
	}
	if org == nil {
		return nil, newError(KindNotFound, op, id, fmt.Errorf("%s %s not found", req.SubjectKind, req.SubjectID))
	}

	// Moving back to pending is a resubmission by the subject; every other
	// move is a decision.
	action := scope.ActionVerify
	if requested == types.VerificationPending {
		action = scope.ActionSubmit
	}
	target := scope.Target{Kind: scope.TargetVerification, SubjectKind: req.SubjectKind, SubjectID: req.SubjectID, LocationKey: org.CityKey}
	if err := o.authorizer.Authorize(actor, action, target); err != nil {
		return nil, newError(KindForbidden, op, id, err)
	}
	if err := Validate(types.PipelineVerification, req.Status, requested); err != nil {
		return nil, newError(KindInvalidTransition, op, id, errors.Unwrap(err))
	}

	result := &TransitionResult{Kind: types.PipelineVerification, RecordID: id, From: req.Status, To: requested}

	if requested != req.Status {
		if err := o.store.UpdateVerificationRequest(ctx, id, requested, req.DocumentLink); err != nil {
			return nil, storeError(op, id, err)
		}
		result.Changed = true
	}

	if requested == types.VerificationVerified && !org.IsVerified {
		if err := o.store.MarkOrganizationVerified(ctx, org.Kind, org.ID, actor.ID, o.config.Now()); err != nil {
			return result, newError(KindPartialSideEffect, op, id, fmt.Errorf("failed to mark %s verified: %w", org.Kind, err))
		}
		result.SideEffects = append(result.SideEffects, SideEffectEntityVerified)
	}
	return result, nil
}

// certificateNumber derives a stable number from the enrollment id so that a
// retried issuance produces the same number.
func (o *Orchestrator) certificateNumber(now time.Time, enrollmentID uuid.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(enrollmentID.String(), "-", ""))
	return fmt.Sprintf("%s-%d-%s", o.config.CertificatePrefix, now.Year(), compact[:12])
}

// SubmitVerification records a verification request for an organization.
//
// A subject without a request gets a new pending one. A pending request has
// its document link replaced. A rejected request moves back to pending with
// the new link. A verified subject cannot resubmit.
func (o *Orchestrator) SubmitVerification(ctx context.Context, actor types.Actor, kind types.SubjectKind, subjectID uuid.UUID, documentLink string) (*types.VerificationRequest, error) {
	const op = "submit verification"

	if err := ctx.Err(); err != nil {
		return nil, newError(KindCanceled, op, subjectID, err)
	}
	if !kind.Valid() {
		return nil, newError(KindInvalidRequest, op, subjectID, fmt.Errorf("unknown subject kind %q", kind))
	}
	documentLink = strings.TrimSpace(documentLink)
	if err := verification.CheckLink(documentLink, o.config.TrustedDocumentHosts); err != nil {
		return nil, newError(KindInvalidRequest, op, subjectID, err)
	}

	org, err := o.store.GetOrganization(ctx, kind, subjectID)
	if err != nil {
		return nil, storeError(op, subjectID, err)
	}
	if org == nil {
		return nil, newError(KindNotFound, op, subjectID, fmt.Errorf("%s not found", kind))
	}

	target := scope.Target{Kind: scope.TargetVerification, SubjectKind: kind, SubjectID: subjectID, LocationKey: org.CityKey}
	if err := o.authorizer.Authorize(actor, scope.ActionSubmit, target); err != nil {
		return nil, newError(KindForbidden, op, subjectID, err)
	}

	existing, err := o.store.GetLatestVerificationRequest(ctx, kind, subjectID)
	if err != nil {
		return nil, storeError(op, subjectID, err)
	}

	now := o.config.Now()
	if existing == nil {
		req := &types.VerificationRequest{
			ID:           uuid.New(),
			SubjectKind:  kind,
			SubjectID:    subjectID,
			DocumentLink: documentLink,
			Status:       InitialStatus(types.PipelineVerification),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := o.store.InsertVerificationRequest(ctx, req)
		if err == nil {
			log.Printf("[verification] %s %s submitted request %s", kind, subjectID, req.ID)
			return req, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return nil, storeError(op, subjectID, err)
		}
		// Another submission created the subject's request first.
		existing, err = o.store.GetLatestVerificationRequest(ctx, kind, subjectID)
		if err != nil {
			return nil, storeError(op, subjectID, err)
		}
		if existing == nil {
			return nil, storeError(op, subjectID, fmt.Errorf("verification request for %s %s vanished after duplicate insert", kind, subjectID))
		}
	}

	if err := Validate(types.PipelineVerification, existing.Status, types.VerificationPending); err != nil {
		return nil, newError(KindInvalidTransition, op, subjectID, errors.Unwrap(err))
	}
	if err := o.store.UpdateVerificationRequest(ctx, existing.ID, types.VerificationPending, documentLink); err != nil {
		return nil, storeError(op, subjectID, err)
	}
	log.Printf("[verification] %s %s resubmitted request %s (was %s)", kind, subjectID, existing.ID, existing.Status)

	existing.Status = types.VerificationPending
	existing.DocumentLink = documentLink
	existing.UpdatedAt = now
	return existing, nil
}
