package reporting

import (
	"testing"

	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestQuotaCompliance(t *testing.T) {
	tests := []struct {
		name          string
		employer      types.Employer
		wantRate      int
		wantMinimum   int
		wantCompliant bool
		wantGap       int
	}{
		{
			name:          "private meets one percent",
			employer:      types.Employer{Category: types.EmployerCategoryPrivate, TotalEmployees: 100, DisabledEmployees: 1},
			wantRate:      1,
			wantMinimum:   1,
			wantCompliant: true,
			wantGap:       0,
		},
		{
			name:          "government needs two percent",
			employer:      types.Employer{Category: types.EmployerCategoryGovernment, TotalEmployees: 100, DisabledEmployees: 1},
			wantRate:      2,
			wantMinimum:   2,
			wantCompliant: false,
			wantGap:       1,
		},
		{
			name:          "state owned label",
			employer:      types.Employer{Category: "BUMN", TotalEmployees: 250, DisabledEmployees: 5},
			wantRate:      2,
			wantMinimum:   5,
			wantCompliant: true,
		},
		{
			name:          "separators normalize",
			employer:      types.Employer{Category: "  State_Owned ", TotalEmployees: 100, DisabledEmployees: 2},
			wantRate:      2,
			wantMinimum:   2,
			wantCompliant: true,
		},
		{
			name:          "non-government organization is private rate",
			employer:      types.Employer{Category: "Non-Government Organization", TotalEmployees: 100, DisabledEmployees: 1},
			wantRate:      1,
			wantMinimum:   1,
			wantCompliant: true,
		},
		{
			name:          "non-government is private rate",
			employer:      types.Employer{Category: "non-government", TotalEmployees: 100, DisabledEmployees: 1},
			wantRate:      1,
			wantMinimum:   1,
			wantCompliant: true,
		},
		{
			name:          "supplier mentioning bumn is private rate",
			employer:      types.Employer{Category: "Private (ex-BUMN supplier)", TotalEmployees: 100, DisabledEmployees: 1},
			wantRate:      1,
			wantMinimum:   1,
			wantCompliant: true,
		},
		{
			name:        "minimum rounds up",
			employer:    types.Employer{Category: types.EmployerCategoryPrivate, TotalEmployees: 101},
			wantRate:    1,
			wantMinimum: 2,
			wantGap:     2,
		},
		{
			name:        "small employer still needs one",
			employer:    types.Employer{Category: "Instansi Pemerintah", TotalEmployees: 3},
			wantRate:    2,
			wantMinimum: 1,
			wantGap:     1,
		},
		{
			name:     "no employees is never compliant",
			employer: types.Employer{Category: types.EmployerCategoryPrivate, TotalEmployees: 0, DisabledEmployees: 0},
			wantRate: 1,
		},
		{
			name:          "over quota has no gap",
			employer:      types.Employer{Category: types.EmployerCategoryPrivate, TotalEmployees: 50, DisabledEmployees: 4},
			wantRate:      1,
			wantMinimum:   1,
			wantCompliant: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuotaCompliance(tt.employer)
			assert.Equal(t, tt.wantRate, q.MandateRate)
			assert.Equal(t, tt.wantMinimum, q.MandateMinimum)
			assert.Equal(t, tt.wantCompliant, q.IsCompliant)
			assert.Equal(t, tt.wantGap, q.Gap)
		})
	}
}

func TestMandateRate(t *testing.T) {
	for _, category := range []string{"government", "Government", "state-owned", "State Owned", "pemerintah", "BUMN", "bumd"} {
		assert.Equal(t, 2, MandateRate(category), category)
	}
	for _, category := range []string{"", "private", "nongovernment", "government contractor", "semi-bumn", "ngo"} {
		assert.Equal(t, 1, MandateRate(category), category)
	}
}

func TestQuotaCompliance_Property(t *testing.T) {
	for _, category := range []string{types.EmployerCategoryPrivate, types.EmployerCategoryGovernment} {
		for total := 0; total <= 300; total += 7 {
			for disabled := 0; disabled <= 8; disabled++ {
				q := QuotaCompliance(types.Employer{Category: category, TotalEmployees: total, DisabledEmployees: disabled})

				// ceil(total * rate / 100) without floating point
				minimum := total * q.MandateRate / 100
				if total*q.MandateRate%100 != 0 {
					minimum++
				}
				assert.Equal(t, minimum, q.MandateMinimum)
				assert.Equal(t, total > 0 && disabled >= minimum, q.IsCompliant)
				if total == 0 {
					assert.False(t, q.IsCompliant)
					assert.Zero(t, q.Gap)
				}
			}
		}
	}
}

func TestEmploymentRate(t *testing.T) {
	talents := func(statuses ...string) []types.TalentProfile {
		out := make([]types.TalentProfile, len(statuses))
		for i, s := range statuses {
			out[i] = types.TalentProfile{CareerStatus: s}
		}
		return out
	}

	assert.Equal(t, 0, EmploymentRate(nil))
	assert.Equal(t, 0, EmploymentRate(talents("Job Seeker", "belum bekerja", "FRESH GRADUATE")))
	assert.Equal(t, 100, EmploymentRate(talents("Employed", "Freelancer")))
	assert.Equal(t, 33, EmploymentRate(talents("Employed", "Job Seeker", "Job Seeker")))
	assert.Equal(t, 67, EmploymentRate(talents("Employed", "Entrepreneur", "Job Seeker")))
	// An unset status is not one of the not-employed statuses.
	assert.Equal(t, 50, EmploymentRate(talents("", "Job Seeker")))
}

func TestDistribution_TopNTiesByFirstSeen(t *testing.T) {
	d := NewDistribution()
	d.AddAll([]string{"Tuna Netra", "Tuna Rungu", "tuna netra", "Tuna Daksa", "Tuna Rungu", "", "Autism"})

	assert.Equal(t, []Count{
		{Value: "Tuna Netra", Count: 2},
		{Value: "Tuna Rungu", Count: 2},
		{Value: "Tuna Daksa", Count: 1},
		{Value: "Autism", Count: 1},
	}, d.Counts())
	assert.Equal(t, []string{"Tuna Netra", "Tuna Rungu", "Tuna Daksa"}, d.TopValues(3))
	assert.Equal(t, 6, d.Total())
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 2, d.Get("TUNA NETRA"))
}

func TestComputeSkillGap(t *testing.T) {
	talents := []types.TalentProfile{
		{Skills: []string{"Excel", "Communication"}},
		{Skills: []string{"excel", "Python"}},
	}
	postings := []types.JobPosting{
		{Active: true, RequiredSkills: []string{"SQL", "Excel"}},
		{Active: true, RequiredSkills: []string{"SQL", "Customer Service"}},
		{Active: false, RequiredSkills: []string{"Welding", "Welding"}},
	}

	gap := ComputeSkillGap(talents, postings)
	assert.Equal(t, []string{"Excel", "Communication", "Python"}, gap.TalentTop)
	assert.Equal(t, []string{"SQL", "Excel", "Customer Service"}, gap.MarketTop)
	assert.Equal(t, []string{"SQL", "Customer Service"}, gap.Gap)

	// Not symmetric: talent-only skills never appear in the gap.
	empty := ComputeSkillGap(talents, nil)
	assert.Empty(t, empty.Gap)
}
