package reporting

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// SkillGapSize is how many top skills are compared on each side.
const SkillGapSize = 5

// notEmployedStatuses are the career statuses that count as not employed.
var notEmployedStatuses = map[string]bool{
	"job seeker":     true,
	"belum bekerja":  true,
	"fresh graduate": true,
}

// higherQuotaLabels are the normalized employer categories with the 2% mandate.
var higherQuotaLabels = map[string]bool{
	categoryKey(types.EmployerCategoryGovernment): true,
	categoryKey(types.EmployerCategoryStateOwned): true,
	"pemerintah":               true,
	"instansi pemerintah":      true,
	"bumn":                     true,
	"bumd":                     true,
	"badan usaha milik negara": true,
	"badan usaha milik daerah": true,
}

// categoryKey lowercases a category label, treats '-' and '_' as spaces and
// collapses whitespace, so "State_Owned" and "state-owned" share one key.
func categoryKey(category string) string {
	label := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(category))
	return strings.Join(strings.Fields(label), " ")
}

// IsEmployed reports whether a career status counts as employed.
// An empty status is not one of the not-employed statuses and so counts as employed.
func IsEmployed(careerStatus string) bool {
	return !notEmployedStatuses[strings.ToLower(strings.TrimSpace(careerStatus))]
}

// EmploymentRate returns the rounded percentage of talents whose career status
// is employed. An empty set yields 0.
func EmploymentRate(talents []types.TalentProfile) int {
	if len(talents) == 0 {
		return 0
	}
	employed := 0
	for _, t := range talents {
		if IsEmployed(t.CareerStatus) {
			employed++
		}
	}
	return percent(employed, len(talents))
}

// percent returns part/total as a rounded integer percentage; total 0 yields 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Quota is an employer's disability quota compliance
type Quota struct {
	EmployerID        uuid.UUID `json:"employer_id"`
	EmployerName      string    `json:"employer_name"`
	Category          string    `json:"category"`
	TotalEmployees    int       `json:"total_employees"`
	DisabledEmployees int       `json:"disabled_employees"`
	MandateRate       int       `json:"mandate_rate_percent"`
	MandateMinimum    int       `json:"mandate_minimum"`
	IsCompliant       bool      `json:"is_compliant"`
	Gap               int       `json:"gap"`
}

// MandateRate returns the mandated disabled-employee percentage for a category:
// 2 for government and state-owned employers, 1 otherwise. The whole label
// must match; "non-government" is not a government category.
func MandateRate(category string) int {
	if higherQuotaLabels[categoryKey(category)] {
		return 2
	}
	return 1
}

// QuotaCompliance evaluates one employer. The minimum is the ceiling of
// total × rate computed in integers; an employer with no employees is never
// compliant and has no gap.
func QuotaCompliance(employer types.Employer) Quota {
	total := max(employer.TotalEmployees, 0)
	disabled := max(employer.DisabledEmployees, 0)
	rate := MandateRate(employer.Category)
	minimum := (total*rate + 99) / 100

	return Quota{
		EmployerID:        employer.ID,
		EmployerName:      employer.Name,
		Category:          employer.Category,
		TotalEmployees:    total,
		DisabledEmployees: disabled,
		MandateRate:       rate,
		MandateMinimum:    minimum,
		IsCompliant:       total > 0 && disabled >= minimum,
		Gap:               max(0, minimum-disabled),
	}
}

// SkillGap compares the skills talents have with what the market asks for
type SkillGap struct {
	TalentTop []string `json:"talent_top"`
	MarketTop []string `json:"market_top"`
	// Gap holds the market skills missing from TalentTop, in market order.
	Gap []string `json:"gap"`
}

// ComputeSkillGap takes the top skills of talents and of active job postings
// and reports the market skills absent from the talent side.
func ComputeSkillGap(talents []types.TalentProfile, postings []types.JobPosting) SkillGap {
	talentSkills := NewDistribution()
	for _, t := range talents {
		talentSkills.AddAll(t.Skills)
	}
	marketSkills := NewDistribution()
	for _, p := range postings {
		if p.Active {
			marketSkills.AddAll(p.RequiredSkills)
		}
	}

	gap := SkillGap{
		TalentTop: talentSkills.TopValues(SkillGapSize),
		MarketTop: marketSkills.TopValues(SkillGapSize),
		Gap:       []string{},
	}
	have := make(map[string]bool, len(gap.TalentTop))
	for _, s := range gap.TalentTop {
		have[strings.ToLower(s)] = true
	}
	for _, s := range gap.MarketTop {
		if !have[strings.ToLower(s)] {
			gap.Gap = append(gap.Gap, s)
		}
	}
	return gap
}
