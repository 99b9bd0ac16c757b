// Package memstore provides an in-memory Store used by tests and the demo
// mode of the service. Every value is copied on the way in and out so callers
// never share slices with the store.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

var _ lifecycle.Store = (*Store)(nil)

type orgKey struct {
	kind types.SubjectKind
	id   uuid.UUID
}

// Store is a mutex-guarded in-memory implementation of lifecycle.Store and
// reporting.Source.
type Store struct {
	mu sync.RWMutex

	talents        map[uuid.UUID]types.TalentProfile
	applications   map[uuid.UUID]types.Application
	enrollments    map[uuid.UUID]types.Enrollment
	trainings      map[uuid.UUID]types.TrainingProgram
	certifications map[uuid.UUID]types.Certification
	verifications  map[uuid.UUID]types.VerificationRequest
	organizations  map[orgKey]types.Organization
	employers      map[uuid.UUID]types.Employer
	postings       map[uuid.UUID]types.JobPosting

	now func() time.Time
}

// Snapshot is the serialisable representation of the store's contents.
type Snapshot struct {
	Talents        []types.TalentProfile       `json:"talents"`
	Applications   []types.Application         `json:"applications"`
	Enrollments    []types.Enrollment          `json:"enrollments"`
	Trainings      []types.TrainingProgram     `json:"trainings"`
	Certifications []types.Certification       `json:"certifications"`
	Verifications  []types.VerificationRequest `json:"verifications"`
	Organizations  []types.Organization        `json:"organizations"`
	Employers      []types.Employer            `json:"employers"`
	JobPostings    []types.JobPosting          `json:"job_postings"`
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		talents:        map[uuid.UUID]types.TalentProfile{},
		applications:   map[uuid.UUID]types.Application{},
		enrollments:    map[uuid.UUID]types.Enrollment{},
		trainings:      map[uuid.UUID]types.TrainingProgram{},
		certifications: map[uuid.UUID]types.Certification{},
		verifications:  map[uuid.UUID]types.VerificationRequest{},
		organizations:  map[orgKey]types.Organization{},
		employers:      map[uuid.UUID]types.Employer{},
		postings:       map[uuid.UUID]types.JobPosting{},
		now:            time.Now,
	}
}

// FromSnapshot creates a Store holding the snapshot's records.
func FromSnapshot(s Snapshot) *Store {
	st := New()
	for _, t := range s.Talents {
		st.PutTalent(t)
	}
	for _, a := range s.Applications {
		st.PutApplication(a)
	}
	for _, e := range s.Enrollments {
		st.PutEnrollment(e)
	}
	for _, t := range s.Trainings {
		st.PutTrainingProgram(t)
	}
	for _, c := range s.Certifications {
		st.PutCertification(c)
	}
	for _, v := range s.Verifications {
		st.PutVerificationRequest(v)
	}
	for _, o := range s.Organizations {
		st.PutOrganization(o)
	}
	for _, e := range s.Employers {
		st.PutEmployer(e)
	}
	for _, p := range s.JobPostings {
		st.PutJobPosting(p)
	}
	return st
}

// LoadSnapshot reads a JSON snapshot file into a new Store.
func LoadSnapshot(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return FromSnapshot(s), nil
}

// Snapshot returns a copy of the store's contents, each list ordered by id.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{}
	for _, t := range s.talents {
		out.Talents = append(out.Talents, copyTalent(t))
	}
	for _, a := range s.applications {
		out.Applications = append(out.Applications, a)
	}
	for _, e := range s.enrollments {
		out.Enrollments = append(out.Enrollments, copyEnrollment(e))
	}
	for _, t := range s.trainings {
		t.Skills = cloneStrings(t.Skills)
		out.Trainings = append(out.Trainings, t)
	}
	for _, c := range s.certifications {
		out.Certifications = append(out.Certifications, copyCertification(c))
	}
	for _, v := range s.verifications {
		out.Verifications = append(out.Verifications, v)
	}
	for _, o := range s.organizations {
		out.Organizations = append(out.Organizations, o)
	}
	for _, e := range s.employers {
		out.Employers = append(out.Employers, e)
	}
	for _, p := range s.postings {
		p.RequiredSkills = cloneStrings(p.RequiredSkills)
		out.JobPostings = append(out.JobPostings, p)
	}

	sort.Slice(out.Talents, func(i, j int) bool { return lessID(out.Talents[i].ID, out.Talents[j].ID) })
	sort.Slice(out.Applications, func(i, j int) bool { return lessID(out.Applications[i].ID, out.Applications[j].ID) })
	sort.Slice(out.Enrollments, func(i, j int) bool { return lessID(out.Enrollments[i].ID, out.Enrollments[j].ID) })
	sort.Slice(out.Trainings, func(i, j int) bool { return lessID(out.Trainings[i].ID, out.Trainings[j].ID) })
	sort.Slice(out.Certifications, func(i, j int) bool { return lessID(out.Certifications[i].ID, out.Certifications[j].ID) })
	sort.Slice(out.Verifications, func(i, j int) bool { return lessID(out.Verifications[i].ID, out.Verifications[j].ID) })
	sort.Slice(out.Organizations, func(i, j int) bool { return lessID(out.Organizations[i].ID, out.Organizations[j].ID) })
	sort.Slice(out.Employers, func(i, j int) bool { return lessID(out.Employers[i].ID, out.Employers[j].ID) })
	sort.Slice(out.JobPostings, func(i, j int) bool { return lessID(out.JobPostings[i].ID, out.JobPostings[j].ID) })
	return out
}

// SetClock overrides the clock used for UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// --- seeding ---

// PutTalent inserts or replaces a talent profile.
func (s *Store) PutTalent(t types.TalentProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.talents[t.ID] = copyTalent(t)
}

// PutApplication inserts or replaces an application.
func (s *Store) PutApplication(a types.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = a
}

// PutEnrollment inserts or replaces an enrollment.
func (s *Store) PutEnrollment(e types.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[e.ID] = copyEnrollment(e)
}

// PutTrainingProgram inserts or replaces a training program.
func (s *Store) PutTrainingProgram(t types.TrainingProgram) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Skills = cloneStrings(t.Skills)
	s.trainings[t.ID] = t
}

// PutCertification inserts or replaces a certification without the uniqueness check.
func (s *Store) PutCertification(c types.Certification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certifications[c.ID] = copyCertification(c)
}

// PutVerificationRequest inserts or replaces a verification request.
func (s *Store) PutVerificationRequest(v types.VerificationRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.ID] = v
}

// PutOrganization inserts or replaces an organization.
func (s *Store) PutOrganization(o types.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[orgKey{o.Kind, o.ID}] = o
}

// PutEmployer inserts or replaces an employer. A matching company organization
// is created when none exists so the employer can be verified.
func (s *Store) PutEmployer(e types.Employer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employers[e.ID] = e
	key := orgKey{types.SubjectCompany, e.ID}
	if _, ok := s.organizations[key]; !ok {
		s.organizations[key] = types.Organization{
			ID:         e.ID,
			Kind:       types.SubjectCompany,
			Name:       e.Name,
			CityKey:    e.CityKey,
			IsVerified: e.IsVerified,
			VerifiedAt: e.VerifiedAt,
			VerifiedBy: e.VerifiedBy,
		}
	}
}

// PutJobPosting inserts or replaces a job posting.
func (s *Store) PutJobPosting(p types.JobPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.RequiredSkills = cloneStrings(p.RequiredSkills)
	s.postings[p.ID] = p
}

// --- lifecycle.Store ---

// GetApplication retrieves an application by id
func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// UpdateApplicationStatus sets the application status and, when notes is non-nil, its notes
func (s *Store) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.Status, notes *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return fmt.Errorf("application not found: %s", id)
	}
	a.Status = status
	if notes != nil {
		a.Notes = *notes
	}
	a.UpdatedAt = s.now()
	s.applications[id] = a
	return nil
}

// GetEnrollment retrieves an enrollment by id
func (s *Store) GetEnrollment(ctx context.Context, id uuid.UUID) (*types.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return nil, nil
	}
	e = copyEnrollment(e)
	return &e, nil
}

// UpdateEnrollmentStatus sets the enrollment status
func (s *Store) UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment not found: %s", id)
	}
	e.Status = status
	e.UpdatedAt = s.now()
	s.enrollments[id] = e
	return nil
}

// SetEnrollmentIssuedSkills stores the issued skills snapshot on the enrollment
func (s *Store) SetEnrollmentIssuedSkills(ctx context.Context, id uuid.UUID, skills []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment not found: %s", id)
	}
	e.IssuedSkills = cloneStrings(skills)
	e.UpdatedAt = s.now()
	s.enrollments[id] = e
	return nil
}

// GetTrainingProgram retrieves a training program by id
func (s *Store) GetTrainingProgram(ctx context.Context, id uuid.UUID) (*types.TrainingProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trainings[id]
	if !ok {
		return nil, nil
	}
	t.Skills = cloneStrings(t.Skills)
	return &t, nil
}

// GetCertificationByEnrollment retrieves the certification issued for an enrollment
func (s *Store) GetCertificationByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Certification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.certifications {
		if c.EnrollmentID == enrollmentID {
			c = copyCertification(c)
			return &c, nil
		}
	}
	return nil, nil
}

// InsertCertification stores a certification, returning lifecycle.ErrDuplicate
// when the enrollment already has one.
func (s *Store) InsertCertification(ctx context.Context, cert *types.Certification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.certifications {
		if c.EnrollmentID == cert.EnrollmentID {
			return lifecycle.ErrDuplicate
		}
	}
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	s.certifications[cert.ID] = copyCertification(*cert)
	return nil
}

// GetTalent retrieves a talent profile by id
func (s *Store) GetTalent(ctx context.Context, id uuid.UUID) (*types.TalentProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.talents[id]
	if !ok {
		return nil, nil
	}
	t = copyTalent(t)
	return &t, nil
}

// MergeTalentSkills unions skills into the talent's set under the write lock
func (s *Store) MergeTalentSkills(ctx context.Context, id uuid.UUID, skills []string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.talents[id]
	if !ok {
		return false, fmt.Errorf("talent not found: %s", id)
	}
	merged, added := lifecycle.MergeSkills(t.Skills, skills)
	if added == 0 {
		return false, nil
	}
	t.Skills = merged
	t.UpdatedAt = s.now()
	s.talents[id] = t
	return true, nil
}

// GetVerificationRequest retrieves a verification request by id
func (s *Store) GetVerificationRequest(ctx context.Context, id uuid.UUID) (*types.VerificationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// GetLatestVerificationRequest returns the most recently created request for a subject
func (s *Store) GetLatestVerificationRequest(ctx context.Context, kind types.SubjectKind, subjectID uuid.UUID) (*types.VerificationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *types.VerificationRequest
	for _, v := range s.verifications {
		if v.SubjectKind != kind || v.SubjectID != subjectID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			v := v
			latest = &v
		}
	}
	return latest, nil
}

// InsertVerificationRequest stores a new verification request. A subject
// holds at most one request; a second one is lifecycle.ErrDuplicate.
func (s *Store) InsertVerificationRequest(ctx context.Context, req *types.VerificationRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifications[req.ID]; ok {
		return lifecycle.ErrDuplicate
	}
	for _, v := range s.verifications {
		if v.SubjectKind == req.SubjectKind && v.SubjectID == req.SubjectID {
			return lifecycle.ErrDuplicate
		}
	}
	s.verifications[req.ID] = *req
	return nil
}

// UpdateVerificationRequest sets the status and document link of a request
func (s *Store) UpdateVerificationRequest(ctx context.Context, id uuid.UUID, status types.Status, documentLink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verifications[id]
	if !ok {
		return fmt.Errorf("verification request not found: %s", id)
	}
	v.Status = status
	v.DocumentLink = documentLink
	v.UpdatedAt = s.now()
	s.verifications[id] = v
	return nil
}

// GetOrganization retrieves an organization by kind and id
func (s *Store) GetOrganization(ctx context.Context, kind types.SubjectKind, id uuid.UUID) (*types.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations[orgKey{kind, id}]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// MarkOrganizationVerified flags an organization as verified
func (s *Store) MarkOrganizationVerified(ctx context.Context, kind types.SubjectKind, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orgKey{kind, id}
	o, ok := s.organizations[key]
	if !ok {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	o.IsVerified = true
	o.VerifiedAt = &verifiedAt
	o.VerifiedBy = &verifiedBy
	s.organizations[key] = o
	return nil
}

// --- reporting.Source ---

// GetEmployer retrieves an employer by id
func (s *Store) GetEmployer(ctx context.Context, id uuid.UUID) (*types.Employer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employers[id]
	if !ok {
		return nil, nil
	}
	e = s.withVerification(e)
	return &e, nil
}

// ListTalents returns the talents matching filter ordered by name, then id
func (s *Store) ListTalents(ctx context.Context, filter types.RecordFilter) ([]types.TalentProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.TalentProfile, 0)
	for _, t := range s.talents {
		if s.talentMatches(t, filter) {
			out = append(out, copyTalent(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// ListEmployers returns the employers matching filter ordered by name, then id
func (s *Store) ListEmployers(ctx context.Context, filter types.RecordFilter) ([]types.Employer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Employer, 0)
	if filter.PartnerID != nil || filter.CampusID != nil {
		return out, nil
	}
	for _, e := range s.employers {
		if filter.EmployerID != nil && e.ID != *filter.EmployerID {
			continue
		}
		if !cityMatches(e.CityKey, filter.CityKeys) {
			continue
		}
		out = append(out, s.withVerification(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// ListJobPostings returns the job postings matching filter in creation order
func (s *Store) ListJobPostings(ctx context.Context, filter types.RecordFilter) ([]types.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.JobPosting, 0)
	for _, p := range s.postings {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.EmployerID != nil && p.EmployerID != *filter.EmployerID {
			continue
		}
		if !cityMatches(p.CityKey, filter.CityKeys) {
			continue
		}
		p.RequiredSkills = cloneStrings(p.RequiredSkills)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// ListApplications returns the applications matching filter in creation order
func (s *Store) ListApplications(ctx context.Context, filter types.RecordFilter) ([]types.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Application, 0)
	if filter.PartnerID != nil {
		return out, nil
	}
	for _, a := range s.applications {
		if filter.EmployerID != nil && a.EmployerID != *filter.EmployerID {
			continue
		}
		if !s.talentInFilter(a.TalentID, filter) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// ListEnrollments returns the enrollments matching filter in creation order
func (s *Store) ListEnrollments(ctx context.Context, filter types.RecordFilter) ([]types.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Enrollment, 0)
	if filter.EmployerID != nil {
		return out, nil
	}
	for _, e := range s.enrollments {
		if filter.PartnerID != nil && e.PartnerID != *filter.PartnerID {
			continue
		}
		if !s.talentInFilter(e.TalentID, filter) {
			continue
		}
		out = append(out, copyEnrollment(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

// Certifications returns every stored certification for an enrollment.
// The lifecycle invariant keeps this at most one.
func (s *Store) Certifications(enrollmentID uuid.UUID) []types.Certification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Certification
	for _, c := range s.certifications {
		if c.EnrollmentID == enrollmentID {
			out = append(out, copyCertification(c))
		}
	}
	return out
}

// talentMatches applies filter to a talent. Caller holds the lock.
func (s *Store) talentMatches(t types.TalentProfile, filter types.RecordFilter) bool {
	if !cityMatches(t.CityKey, filter.CityKeys) {
		return false
	}
	switch {
	case filter.CampusID != nil:
		return t.CampusID != nil && *t.CampusID == *filter.CampusID
	case filter.EmployerID != nil:
		for _, a := range s.applications {
			if a.TalentID == t.ID && a.EmployerID == *filter.EmployerID {
				return true
			}
		}
		return false
	case filter.PartnerID != nil:
		for _, e := range s.enrollments {
			if e.TalentID == t.ID && e.PartnerID == *filter.PartnerID {
				return true
			}
		}
		return false
	}
	return true
}

// talentInFilter checks the talent-derived parts of filter (city and campus)
// for an application or enrollment. Caller holds the lock.
func (s *Store) talentInFilter(talentID uuid.UUID, filter types.RecordFilter) bool {
	if len(filter.CityKeys) == 0 && filter.CampusID == nil {
		return true
	}
	t, ok := s.talents[talentID]
	if !ok {
		return false
	}
	if !cityMatches(t.CityKey, filter.CityKeys) {
		return false
	}
	if filter.CampusID != nil {
		return t.CampusID != nil && *t.CampusID == *filter.CampusID
	}
	return true
}

// withVerification copies the company organization's verification flag onto
// the employer. Caller holds the lock.
func (s *Store) withVerification(e types.Employer) types.Employer {
	if o, ok := s.organizations[orgKey{types.SubjectCompany, e.ID}]; ok {
		e.IsVerified = o.IsVerified
		e.VerifiedAt = o.VerifiedAt
		e.VerifiedBy = o.VerifiedBy
	}
	return e
}
