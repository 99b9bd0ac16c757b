package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/memstore"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// flakyStore wraps a memstore and fails selected operations.
type flakyStore struct {
	*memstore.Store
	failSkillMerge   error
	failStatusUpdate error
	failMarkVerified error
	// hideCertificate makes the next certification lookup miss, as if a
	// concurrent completion committed between the check and the insert.
	hideCertificate bool
	// hideVerification makes the next latest-request lookup miss, as if a
	// concurrent first submission committed between the check and the insert.
	hideVerification bool
}

func (f *flakyStore) MergeTalentSkills(ctx context.Context, id uuid.UUID, skills []string) (bool, error) {
	if f.failSkillMerge != nil {
		return false, f.failSkillMerge
	}
	return f.Store.MergeTalentSkills(ctx, id, skills)
}

func (f *flakyStore) UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	if f.failStatusUpdate != nil {
		return f.failStatusUpdate
	}
	return f.Store.UpdateEnrollmentStatus(ctx, id, status)
}

func (f *flakyStore) MarkOrganizationVerified(ctx context.Context, kind types.SubjectKind, id uuid.UUID, by uuid.UUID, at time.Time) error {
	if f.failMarkVerified != nil {
		return f.failMarkVerified
	}
	return f.Store.MarkOrganizationVerified(ctx, kind, id, by, at)
}

func (f *flakyStore) GetCertificationByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Certification, error) {
	if f.hideCertificate {
		f.hideCertificate = false
		return nil, nil
	}
	return f.Store.GetCertificationByEnrollment(ctx, enrollmentID)
}

func (f *flakyStore) GetLatestVerificationRequest(ctx context.Context, kind types.SubjectKind, subjectID uuid.UUID) (*types.VerificationRequest, error) {
	if f.hideVerification {
		f.hideVerification = false
		return nil, nil
	}
	return f.Store.GetLatestVerificationRequest(ctx, kind, subjectID)
}

type fixture struct {
	store    *flakyStore
	orch     *lifecycle.Orchestrator
	partner  types.Actor
	company  types.Actor
	talent   types.TalentProfile
	training types.TrainingProgram
	employer types.Employer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := memstore.New()
	mem.SetClock(func() time.Time { return fixedNow })
	store := &flakyStore{Store: mem}

	partnerID := uuid.New()
	employerID := uuid.New()

	f := &fixture{
		store:   store,
		partner: types.Actor{ID: uuid.New(), Role: types.RolePartner, OrgID: partnerID},
		company: types.Actor{ID: uuid.New(), Role: types.RoleCompany, OrgID: employerID},
		talent: types.TalentProfile{
			ID:           uuid.New(),
			Name:         "Sari",
			CityKey:      "bandung",
			Skills:       []string{"Python"},
			CareerStatus: "Job Seeker",
		},
		training: types.TrainingProgram{
			ID:        uuid.New(),
			PartnerID: partnerID,
			Title:     "Data Analysis Bootcamp",
			Organizer: "Inklusi Academy",
			Skills:    []string{"Python", "Excel"},
		},
		employer: types.Employer{
			ID:             employerID,
			Name:           "PT Sinar Bandung",
			Category:       types.EmployerCategoryPrivate,
			CityKey:        "bandung",
			TotalEmployees: 100,
		},
	}
	mem.PutTalent(f.talent)
	mem.PutTrainingProgram(f.training)
	mem.PutEmployer(f.employer)

	f.orch = lifecycle.NewOrchestrator(store, scope.NewAuthorizer(scope.DefaultMap()), lifecycle.Config{
		Now: func() time.Time { return fixedNow },
	})
	return f
}

func (f *fixture) addEnrollment(status types.Status) types.Enrollment {
	e := types.Enrollment{
		ID:         uuid.New(),
		TalentID:   f.talent.ID,
		PartnerID:  f.partner.OrgID,
		TrainingID: f.training.ID,
		Status:     status,
		CreatedAt:  fixedNow,
	}
	f.store.PutEnrollment(e)
	return e
}

func (f *fixture) addApplication(status types.Status) types.Application {
	a := types.Application{
		ID:         uuid.New(),
		TalentID:   f.talent.ID,
		EmployerID: f.employer.ID,
		JobID:      uuid.New(),
		Status:     status,
		CreatedAt:  fixedNow,
	}
	f.store.PutApplication(a)
	return a
}

func TestApplyTransition_ApplicationCannotSkipToHired(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(types.ApplicationApplied)

	result, err := f.orch.ApplyTransition(context.Background(), f.company, types.PipelineApplication, app.ID, types.ApplicationHired, lifecycle.Options{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, lifecycle.KindInvalidTransition, lifecycle.KindOf(err))

	stored, err := f.store.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationApplied, stored.Status)
}

func TestApplyTransition_ApplicationFullPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.addApplication(types.ApplicationApplied)

	path := []types.Status{types.ApplicationReviewing, types.ApplicationInterview, types.ApplicationAccepted, types.ApplicationHired}
	for _, next := range path {
		result, err := f.orch.ApplyTransition(ctx, f.company, types.PipelineApplication, app.ID, next, lifecycle.Options{Notes: "moved to " + string(next)})
		require.NoError(t, err, next)
		assert.True(t, result.Changed)
		assert.Empty(t, result.SideEffects)
	}

	stored, err := f.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationHired, stored.Status)
	assert.Equal(t, "moved to hired", stored.Notes)

	// Hired is a sink.
	for _, next := range []types.Status{types.ApplicationRejected, types.ApplicationReviewing, types.ApplicationAccepted} {
		_, err := f.orch.ApplyTransition(ctx, f.company, types.PipelineApplication, app.ID, next, lifecycle.Options{})
		assert.Equal(t, lifecycle.KindInvalidTransition, lifecycle.KindOf(err), next)
	}
}

func TestApplyTransition_NoOpIsSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.addApplication(types.ApplicationInterview)
	result, err := f.orch.ApplyTransition(ctx, f.company, types.PipelineApplication, app.ID, types.ApplicationInterview, lifecycle.Options{})
	require.NoError(t, err)
	assert.False(t, result.Changed)

	enrollment := f.addEnrollment(types.EnrollmentRejected)
	result, err = f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentRejected, lifecycle.Options{})
	require.NoError(t, err)
	assert.False(t, result.Changed)
}

func TestApplyTransition_StatusIsNormalized(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(types.ApplicationApplied)

	result, err := f.orch.ApplyTransition(context.Background(), f.company, types.PipelineApplication, app.ID, types.Status("  Reviewing "), lifecycle.Options{})
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationReviewing, result.To)
}

func TestApplyTransition_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.ApplyTransition(context.Background(), f.partner, types.PipelineEnrollment, uuid.New(), types.EnrollmentAccepted, lifecycle.Options{})
	assert.Equal(t, lifecycle.KindNotFound, lifecycle.KindOf(err))
}

func TestApplyTransition_ForbiddenForOtherOwner(t *testing.T) {
	f := newFixture(t)
	enrollment := f.addEnrollment(types.EnrollmentApplied)
	otherPartner := types.Actor{ID: uuid.New(), Role: types.RolePartner, OrgID: uuid.New()}

	_, err := f.orch.ApplyTransition(context.Background(), otherPartner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentAccepted, lifecycle.Options{})
	assert.Equal(t, lifecycle.KindForbidden, lifecycle.KindOf(err))

	var forbidden *scope.ForbiddenError
	assert.True(t, errors.As(err, &forbidden))
}

func TestApplyTransition_CompleteEnrollmentMergesSkills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	result, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, []lifecycle.SideEffect{
		lifecycle.SideEffectCertificateIssued,
		lifecycle.SideEffectSkillsSnapshotted,
		lifecycle.SideEffectSkillsMerged,
	}, result.SideEffects)

	talent, err := f.store.GetTalent(ctx, f.talent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Excel"}, talent.Skills)

	certs := f.store.Certifications(enrollment.ID)
	require.Len(t, certs, 1)
	assert.True(t, certs[0].Verified)
	assert.Equal(t, []string{"Python", "Excel"}, certs[0].IssuedSkills)
	assert.Equal(t, "Data Analysis Bootcamp", certs[0].Name)
	assert.Equal(t, 2026, certs[0].Year)
	assert.Regexp(t, `^CERT-2026-[0-9A-F]{12}$`, certs[0].CertificateNumber)

	stored, err := f.store.GetEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentCompleted, stored.Status)
	assert.Equal(t, []string{"Python", "Excel"}, stored.IssuedSkills)
}

func TestApplyTransition_CompleteTwiceIssuesOneCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	_, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)

	result, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, result.SideEffects)
	require.NotNil(t, result.Certification)

	assert.Len(t, f.store.Certifications(enrollment.ID), 1)

	talent, err := f.store.GetTalent(ctx, f.talent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Excel"}, talent.Skills)
}

func TestApplyTransition_SkillsAreSuperset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := []string{"Communication", "excel", "Sign Language"}
	f.talent.Skills = before
	f.store.PutTalent(f.talent)
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	_, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)

	talent, err := f.store.GetTalent(ctx, f.talent.ID)
	require.NoError(t, err)
	assert.Subset(t, talent.Skills, before)
	assert.Equal(t, []string{"Communication", "excel", "Sign Language", "Python"}, talent.Skills)
}

// barrierStore holds every GetTrainingProgram caller until all expected
// callers have arrived, so concurrent completions run their side effects
// at the same time.
type barrierStore struct {
	*memstore.Store
	arrived sync.WaitGroup
}

func (b *barrierStore) GetTrainingProgram(ctx context.Context, id uuid.UUID) (*types.TrainingProgram, error) {
	b.arrived.Done()
	b.arrived.Wait()
	return b.Store.GetTrainingProgram(ctx, id)
}

func TestApplyTransition_ConcurrentCompletionsKeepAllSkills(t *testing.T) {
	mem := memstore.New()
	store := &barrierStore{Store: mem}
	store.arrived.Add(2)

	partner := types.Actor{ID: uuid.New(), Role: types.RolePartner, OrgID: uuid.New()}
	talent := types.TalentProfile{ID: uuid.New(), Name: "Sari", CityKey: "bandung", Skills: []string{"Python"}}
	mem.PutTalent(talent)

	var enrollments []uuid.UUID
	for _, skill := range []string{"Excel", "SQL"} {
		training := types.TrainingProgram{ID: uuid.New(), PartnerID: partner.OrgID, Title: skill + " Basics", Skills: []string{skill}}
		mem.PutTrainingProgram(training)
		e := types.Enrollment{ID: uuid.New(), TalentID: talent.ID, PartnerID: partner.OrgID, TrainingID: training.ID, Status: types.EnrollmentAccepted}
		mem.PutEnrollment(e)
		enrollments = append(enrollments, e.ID)
	}

	orch := lifecycle.NewOrchestrator(store, scope.NewAuthorizer(scope.DefaultMap()), lifecycle.Config{
		Now: func() time.Time { return fixedNow },
	})

	ctx := context.Background()
	results := make([]*lifecycle.TransitionResult, len(enrollments))
	errs := make([]error, len(enrollments))
	var wg sync.WaitGroup
	for i, id := range enrollments {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = orch.ApplyTransition(ctx, partner, types.PipelineEnrollment, id, types.EnrollmentCompleted, lifecycle.Options{})
		}(i, id)
	}
	wg.Wait()

	for i := range enrollments {
		require.NoError(t, errs[i])
		assert.Contains(t, results[i].SideEffects, lifecycle.SideEffectSkillsMerged)
		assert.Len(t, mem.Certifications(enrollments[i]), 1)
	}

	got, err := mem.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Python", "Excel", "SQL"}, got.Skills)
	assert.Equal(t, "Python", got.Skills[0])
}

func TestApplyTransition_DuplicateInsertIsIdempotencySignal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	existing := types.Certification{
		ID:                uuid.New(),
		EnrollmentID:      enrollment.ID,
		TalentID:          f.talent.ID,
		TrainingID:        f.training.ID,
		CertificateNumber: "CERT-2026-EXISTING",
		Verified:          true,
		IssuedSkills:      []string{"Python", "Excel"},
	}
	f.store.PutCertification(existing)
	f.store.hideCertificate = true

	result, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)
	require.NotNil(t, result.Certification)
	assert.Equal(t, "CERT-2026-EXISTING", result.Certification.CertificateNumber)
	assert.NotContains(t, result.SideEffects, lifecycle.SideEffectCertificateIssued)
	assert.Len(t, f.store.Certifications(enrollment.ID), 1)
}

func TestApplyTransition_PartialSideEffectIsResumable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	f.store.failSkillMerge = errors.New("connection reset")
	result, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.Error(t, err)
	assert.Equal(t, lifecycle.KindPartialSideEffect, lifecycle.KindOf(err))
	assert.True(t, lifecycle.KindOf(err).Retryable())
	require.NotNil(t, result)
	assert.True(t, result.Changed)

	stored, err := f.store.GetEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EnrollmentCompleted, stored.Status)

	talent, err := f.store.GetTalent(ctx, f.talent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, talent.Skills)

	// Retry with the same arguments finishes the merge without a second certificate.
	f.store.failSkillMerge = nil
	result, err = f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.NoError(t, err)
	assert.Equal(t, []lifecycle.SideEffect{lifecycle.SideEffectSkillsMerged}, result.SideEffects)

	talent, err = f.store.GetTalent(ctx, f.talent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Excel"}, talent.Skills)
	assert.Len(t, f.store.Certifications(enrollment.ID), 1)
}

func TestApplyTransition_StatusPersistFailureAbortsSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	f.store.failStatusUpdate = errors.New("database unavailable")
	result, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, lifecycle.KindPersistence, lifecycle.KindOf(err))
	assert.Empty(t, f.store.Certifications(enrollment.ID))
}

func TestApplyTransition_CanceledContext(t *testing.T) {
	f := newFixture(t)
	enrollment := f.addEnrollment(types.EnrollmentAccepted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.ApplyTransition(ctx, f.partner, types.PipelineEnrollment, enrollment.ID, types.EnrollmentCompleted, lifecycle.Options{})
	assert.Equal(t, lifecycle.KindCanceled, lifecycle.KindOf(err))
}

func (f *fixture) addCompanyVerification(status types.Status) types.VerificationRequest {
	v := types.VerificationRequest{
		ID:           uuid.New(),
		SubjectKind:  types.SubjectCompany,
		SubjectID:    f.employer.ID,
		DocumentLink: "https://drive.google.com/file/d/nib/view",
		Status:       status,
		CreatedAt:    fixedNow,
	}
	f.store.PutVerificationRequest(v)
	return v
}

func TestApplyTransition_VerificationMarksEntityVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.addCompanyVerification(types.VerificationPending)
	cityAuthority := types.Actor{ID: uuid.New(), Role: types.RoleGovernment, JurisdictionLevel: types.JurisdictionCity, JurisdictionKey: "Bandung"}

	result, err := f.orch.ApplyTransition(ctx, cityAuthority, types.PipelineVerification, req.ID, types.VerificationVerified, lifecycle.Options{})
	require.NoError(t, err)
	assert.Equal(t, []lifecycle.SideEffect{lifecycle.SideEffectEntityVerified}, result.SideEffects)

	emp, err := f.store.GetEmployer(ctx, f.employer.ID)
	require.NoError(t, err)
	assert.True(t, emp.IsVerified)
	require.NotNil(t, emp.VerifiedBy)
	assert.Equal(t, cityAuthority.ID, *emp.VerifiedBy)
	require.NotNil(t, emp.VerifiedAt)
	assert.True(t, fixedNow.Equal(*emp.VerifiedAt))
}

func TestApplyTransition_VerificationPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.addCompanyVerification(types.VerificationPending)

	f.store.failMarkVerified = errors.New("timeout")
	result, err := f.orch.ApplyTransition(ctx, types.Actor{ID: uuid.New(), Role: types.RoleAdmin}, types.PipelineVerification, req.ID, types.VerificationVerified, lifecycle.Options{})
	assert.Equal(t, lifecycle.KindPartialSideEffect, lifecycle.KindOf(err))
	require.NotNil(t, result)

	f.store.failMarkVerified = nil
	result, err = f.orch.ApplyTransition(ctx, types.Actor{ID: uuid.New(), Role: types.RoleAdmin}, types.PipelineVerification, req.ID, types.VerificationVerified, lifecycle.Options{})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, []lifecycle.SideEffect{lifecycle.SideEffectEntityVerified}, result.SideEffects)
}

func TestApplyTransition_ProvinceAuthorityCannotVerifyCompany(t *testing.T) {
	f := newFixture(t)
	req := f.addCompanyVerification(types.VerificationPending)

	// Bandung is inside Jawa Barat, which still does not grant a mutation.
	province := types.Actor{ID: uuid.New(), Role: types.RoleGovernment, JurisdictionLevel: types.JurisdictionProvince, JurisdictionKey: "Jawa Barat"}

	_, err := f.orch.ApplyTransition(context.Background(), province, types.PipelineVerification, req.ID, types.VerificationVerified, lifecycle.Options{})
	assert.Equal(t, lifecycle.KindForbidden, lifecycle.KindOf(err))

	emp, err := f.store.GetEmployer(context.Background(), f.employer.ID)
	require.NoError(t, err)
	assert.False(t, emp.IsVerified)
}

func TestSubmitVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link := "https://drive.google.com/file/d/nib-2026/view"

	req, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, link)
	require.NoError(t, err)
	assert.Equal(t, types.VerificationPending, req.Status)
	assert.Equal(t, link, req.DocumentLink)

	// Resubmitting while pending replaces the link on the same request.
	newLink := "https://docs.google.com/document/d/nib-2026-rev"
	again, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, newLink)
	require.NoError(t, err)
	assert.Equal(t, req.ID, again.ID)
	assert.Equal(t, newLink, again.DocumentLink)

	// Rejected requests go back to pending.
	admin := types.Actor{ID: uuid.New(), Role: types.RoleAdmin}
	_, err = f.orch.ApplyTransition(ctx, admin, types.PipelineVerification, req.ID, types.VerificationRejected, lifecycle.Options{})
	require.NoError(t, err)
	resubmitted, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, link)
	require.NoError(t, err)
	assert.Equal(t, types.VerificationPending, resubmitted.Status)

	// Verified subjects cannot resubmit.
	_, err = f.orch.ApplyTransition(ctx, admin, types.PipelineVerification, req.ID, types.VerificationVerified, lifecycle.Options{})
	require.NoError(t, err)
	_, err = f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, link)
	assert.Equal(t, lifecycle.KindInvalidTransition, lifecycle.KindOf(err))
}

func TestSubmitVerification_DuplicateInsertResubmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, "https://drive.google.com/file/d/nib-1/view")
	require.NoError(t, err)

	f.store.hideVerification = true
	newLink := "https://drive.google.com/file/d/nib-2/view"
	second, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, newLink)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, newLink, second.DocumentLink)

	stored, err := f.store.GetLatestVerificationRequest(ctx, types.SubjectCompany, f.employer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, newLink, stored.DocumentLink)
	assert.Equal(t, types.VerificationPending, stored.Status)
}

func TestSubmitVerification_ConcurrentFirstSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const submitters = 8
	ids := make([]uuid.UUID, submitters)
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, "https://drive.google.com/file/d/nib/view")
			errs[i] = err
			if req != nil {
				ids[i] = req.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "every submission lands on the same request")
	}
}

func TestSubmitVerification_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, f.employer.ID, "https://pastebin.com/nib")
	assert.Equal(t, lifecycle.KindInvalidRequest, lifecycle.KindOf(err))

	other := types.Actor{ID: uuid.New(), Role: types.RoleCompany, OrgID: uuid.New()}
	_, err = f.orch.SubmitVerification(ctx, other, types.SubjectCompany, f.employer.ID, "https://drive.google.com/x")
	assert.Equal(t, lifecycle.KindForbidden, lifecycle.KindOf(err))

	_, err = f.orch.SubmitVerification(ctx, f.company, types.SubjectCompany, uuid.New(), "https://drive.google.com/x")
	assert.Equal(t, lifecycle.KindNotFound, lifecycle.KindOf(err))
}
