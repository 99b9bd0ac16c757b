package reporting

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"golang.org/x/sync/errgroup"
)

// Source is the read-only query surface the engine aggregates over.
type Source interface {
	ListTalents(ctx context.Context, filter types.RecordFilter) ([]types.TalentProfile, error)
	ListEmployers(ctx context.Context, filter types.RecordFilter) ([]types.Employer, error)
	ListJobPostings(ctx context.Context, filter types.RecordFilter) ([]types.JobPosting, error)
	ListApplications(ctx context.Context, filter types.RecordFilter) ([]types.Application, error)
	ListEnrollments(ctx context.Context, filter types.RecordFilter) ([]types.Enrollment, error)
}

// QuotaSummary totals quota compliance over the scoped employers
type QuotaSummary struct {
	Compliant         int `json:"compliant"`
	NonCompliant      int `json:"non_compliant"`
	TotalEmployees    int `json:"total_employees"`
	DisabledEmployees int `json:"disabled_employees"`
	TotalGap          int `json:"total_gap"`
}

// Stats is the dashboard payload for one scope
type Stats struct {
	Scope string `json:"scope"`

	TotalTalents           int     `json:"total_talents"`
	EmploymentRate         int     `json:"employment_rate"`
	DisabilityDistribution []Count `json:"disability_distribution"`
	TopSkills              []Count `json:"top_skills"`
	TopBarriers            []Count `json:"top_barriers"`

	SkillGap SkillGap `json:"skill_gap"`

	ApplicationFunnel        map[types.Status]int `json:"application_funnel"`
	EnrollmentStatuses       map[types.Status]int `json:"enrollment_statuses"`
	EnrollmentCompletionRate int                  `json:"enrollment_completion_rate"`

	TotalEmployers    int          `json:"total_employers"`
	VerifiedEmployers int          `json:"verified_employers"`
	Quota             QuotaSummary `json:"quota"`
	Quotas            []Quota      `json:"quotas"`
}

// TopListSize is how many entries the distribution lists in Stats report.
const TopListSize = 10

// Engine computes Stats for a scope from a Source
type Engine struct {
	source Source
}

// NewEngine creates a new Engine over source
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// FilterFor converts a read scope into a store filter. ok is false for a
// scope that can see nothing.
func FilterFor(s scope.Scope) (filter types.RecordFilter, ok bool) {
	switch {
	case s.None:
		return types.RecordFilter{}, false
	case s.All:
		return types.RecordFilter{}, true
	case s.IsOwnership():
		owner := s.OwnerID
		switch s.OwnerRole {
		case types.RoleCompany:
			return types.RecordFilter{EmployerID: &owner}, true
		case types.RolePartner:
			return types.RecordFilter{PartnerID: &owner}, true
		case types.RoleCampus:
			return types.RecordFilter{CampusID: &owner}, true
		}
		return types.RecordFilter{}, false
	case len(s.CityKeys) > 0:
		keys := make([]string, len(s.CityKeys))
		copy(keys, s.CityKeys)
		return types.RecordFilter{CityKeys: keys}, true
	}
	return types.RecordFilter{}, false
}

type dataset struct {
	talents      []types.TalentProfile
	employers    []types.Employer
	postings     []types.JobPosting
	applications []types.Application
	enrollments  []types.Enrollment
}

// ComputeStats loads the scoped records concurrently and aggregates them.
func (e *Engine) ComputeStats(ctx context.Context, s scope.Scope) (*Stats, error) {
	filter, ok := FilterFor(s)
	if !ok {
		return Aggregate(s.String(), dataset{}.asInput()), nil
	}

	data, err := e.load(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := Aggregate(s.String(), data.asInput())
	log.Printf("[stats] scope=%s talents=%d employers=%d applications=%d enrollments=%d",
		stats.Scope, stats.TotalTalents, stats.TotalEmployers, len(data.applications), len(data.enrollments))
	return stats, nil
}

func (e *Engine) load(ctx context.Context, filter types.RecordFilter) (*dataset, error) {
	var data dataset
	g, gCtx := errgroup.WithContext(ctx)

	// Each goroutine writes a distinct field, so no lock is needed.
	g.Go(func() error {
		talents, err := e.source.ListTalents(gCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to load talents: %w", err)
		}
		data.talents = talents
		return nil
	})
	g.Go(func() error {
		employers, err := e.source.ListEmployers(gCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to load employers: %w", err)
		}
		data.employers = employers
		return nil
	})
	g.Go(func() error {
		postingFilter := filter
		postingFilter.ActiveOnly = true
		postings, err := e.source.ListJobPostings(gCtx, postingFilter)
		if err != nil {
			return fmt.Errorf("failed to load job postings: %w", err)
		}
		data.postings = postings
		return nil
	})
	g.Go(func() error {
		applications, err := e.source.ListApplications(gCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to load applications: %w", err)
		}
		data.applications = applications
		return nil
	})
	g.Go(func() error {
		enrollments, err := e.source.ListEnrollments(gCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to load enrollments: %w", err)
		}
		data.enrollments = enrollments
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Input is the record set Aggregate works over
type Input struct {
	Talents      []types.TalentProfile
	Employers    []types.Employer
	JobPostings  []types.JobPosting
	Applications []types.Application
	Enrollments  []types.Enrollment
}

func (d dataset) asInput() Input {
	return Input{
		Talents:      d.talents,
		Employers:    d.employers,
		JobPostings:  d.postings,
		Applications: d.applications,
		Enrollments:  d.enrollments,
	}
}

// Aggregate computes Stats from an already scoped record set. It is pure.
func Aggregate(scopeLabel string, in Input) *Stats {
	stats := &Stats{
		Scope:              scopeLabel,
		TotalTalents:       len(in.Talents),
		EmploymentRate:     EmploymentRate(in.Talents),
		ApplicationFunnel:  make(map[types.Status]int),
		EnrollmentStatuses: make(map[types.Status]int),
		TotalEmployers:     len(in.Employers),
		Quotas:             make([]Quota, 0, len(in.Employers)),
	}

	disabilities := NewDistribution()
	skills := NewDistribution()
	barriers := NewDistribution()
	for _, t := range in.Talents {
		disabilities.Add(t.DisabilityType)
		skills.AddAll(t.Skills)
		barriers.AddAll(t.AccessibilityBarriers)
	}
	stats.DisabilityDistribution = disabilities.Counts()
	stats.TopSkills = skills.TopN(TopListSize)
	stats.TopBarriers = barriers.TopN(TopListSize)
	stats.SkillGap = ComputeSkillGap(in.Talents, in.JobPostings)

	for _, a := range in.Applications {
		stats.ApplicationFunnel[a.Status]++
	}
	for _, e := range in.Enrollments {
		stats.EnrollmentStatuses[e.Status]++
	}
	stats.EnrollmentCompletionRate = percent(stats.EnrollmentStatuses[types.EnrollmentCompleted], len(in.Enrollments))

	for _, emp := range in.Employers {
		if emp.IsVerified {
			stats.VerifiedEmployers++
		}
		q := QuotaCompliance(emp)
		stats.Quotas = append(stats.Quotas, q)
		if q.IsCompliant {
			stats.Quota.Compliant++
		} else {
			stats.Quota.NonCompliant++
		}
		stats.Quota.TotalEmployees += q.TotalEmployees
		stats.Quota.DisabledEmployees += q.DisabledEmployees
		stats.Quota.TotalGap += q.Gap
	}
	return stats
}
