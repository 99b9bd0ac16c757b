package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	stats := &reporting.Stats{
		Scope:          "city:bandung",
		TotalTalents:   12,
		EmploymentRate: 42,
		TopSkills: []reporting.Count{
			{Value: "Python", Count: 4},
			{Value: "Excel", Count: 2},
		},
		SkillGap:          reporting.SkillGap{Gap: []string{"Figma"}},
		ApplicationFunnel: map[types.Status]int{types.ApplicationApplied: 3, types.ApplicationHired: 1},
		TotalEmployers:    2,
		VerifiedEmployers: 1,
		Quota:             reporting.QuotaSummary{Compliant: 1, NonCompliant: 1, TotalGap: 2},
	}

	p.PrintStats(stats)
	output := buf.String()

	assert.Contains(t, output, "TALENT STATISTICS")
	assert.Contains(t, output, "city:bandung")
	assert.Contains(t, output, "42%")
	assert.Contains(t, output, "Python (4)")
	assert.Contains(t, output, "Figma")
	assert.Contains(t, output, "1 of 2 (gap 2)")
	assert.Contains(t, output, "hired: 1")
}

func TestPrintStats_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStats(nil)

	assert.Empty(t, buf.String())
}

func TestPrintQuotas(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	quotas := []reporting.Quota{
		{EmployerName: "PT Patuh", TotalEmployees: 100, DisabledEmployees: 1, MandateRate: 1, MandateMinimum: 1, IsCompliant: true},
		{EmployerName: "Dinas Sosial", TotalEmployees: 250, DisabledEmployees: 1, MandateRate: 2, MandateMinimum: 5, Gap: 4},
	}

	p.PrintQuotas(quotas)
	output := buf.String()

	assert.Contains(t, output, "QUOTA COMPLIANCE (2 employers)")
	assert.Contains(t, output, "✗ Dinas Sosial")
	assert.Contains(t, output, "✓ PT Patuh")
	assert.Less(t, strings.Index(output, "Dinas Sosial"), strings.Index(output, "PT Patuh"), "non-compliant first")
	assert.Contains(t, output, "gap 4")
}

func TestPrintQuotas_TruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	quotas := make([]reporting.Quota, 8)
	for i := range quotas {
		quotas[i] = reporting.Quota{EmployerName: "PT Contoh", IsCompliant: true}
	}

	p.PrintQuotas(quotas)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintQuotas_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuotas(nil)

	assert.Empty(t, buf.String())
}

func TestPrintTransition(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &lifecycle.TransitionResult{
		Kind:     types.PipelineEnrollment,
		RecordID: uuid.New(),
		From:     types.EnrollmentAccepted,
		To:       types.EnrollmentCompleted,
		Changed:  true,
		SideEffects: []lifecycle.SideEffect{
			lifecycle.SideEffectCertificateIssued,
			lifecycle.SideEffectSkillsMerged,
		},
		Certification: &types.Certification{CertificateNumber: "CERT-2026-ABCD"},
	}

	p.PrintTransition(result)
	output := buf.String()

	assert.Contains(t, output, "ENROLLMENT TRANSITION")
	assert.Contains(t, output, "accepted → completed")
	assert.Contains(t, output, "certificate_issued")
	assert.Contains(t, output, "CERT-2026-ABCD")
	assert.NotContains(t, output, "No change")
}

func TestPrintBulkResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	failed := uuid.New()
	result := &lifecycle.BulkResult{
		Kind:      types.PipelineApplication,
		Status:    types.ApplicationRejected,
		Succeeded: []uuid.UUID{uuid.New(), uuid.New()},
		Failed: []lifecycle.BulkFailure{
			{ID: failed, Kind: lifecycle.KindInvalidTransition},
		},
	}

	p.PrintBulkResult(result)
	output := buf.String()

	assert.Contains(t, output, "BULK APPLICATION (PARTIAL)")
	assert.Contains(t, output, "2 of 3")
	assert.Contains(t, output, failed.String()[:8])
	assert.Contains(t, output, string(lifecycle.KindInvalidTransition))
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuotas([]reporting.Quota{{
		EmployerName: "PT Perusahaan Dengan Nama Yang Sangat Panjang Sekali Untuk Dipotong",
	}})
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.Contains(t, output, "...")
}
