// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStats outputs a human-readable summary of dashboard statistics.
func (p *Printer) PrintStats(stats *reporting.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Scope:            %s\n", stats.Scope))
	sb.WriteString(fmt.Sprintf("Talents:          %d\n", stats.TotalTalents))
	sb.WriteString(fmt.Sprintf("Employment rate:  %d%%\n", stats.EmploymentRate))
	sb.WriteString(fmt.Sprintf("Employers:        %d (%d verified)\n", stats.TotalEmployers, stats.VerifiedEmployers))
	sb.WriteString(fmt.Sprintf("Quota compliant:  %d of %d (gap %d)\n",
		stats.Quota.Compliant, stats.Quota.Compliant+stats.Quota.NonCompliant, stats.Quota.TotalGap))
	sb.WriteString(fmt.Sprintf("Training done:    %d%%\n", stats.EnrollmentCompletionRate))

	writeCounts(&sb, "Disability types", stats.DisabilityDistribution)
	writeCounts(&sb, "Top skills", stats.TopSkills)
	writeCounts(&sb, "Top barriers", stats.TopBarriers)

	if len(stats.SkillGap.Gap) > 0 {
		sb.WriteString("\nSkill gap:\n")
		sb.WriteString(fmt.Sprintf("  %s\n", joinLimited(stats.SkillGap.Gap)))
	}

	if len(stats.ApplicationFunnel) > 0 {
		sb.WriteString("\nApplication funnel:\n")
		writeStatusCounts(&sb, stats.ApplicationFunnel)
	}

	p.printBox("TALENT STATISTICS", sb.String())
}

// PrintQuotas outputs the disability quota status of each employer,
// non-compliant employers first.
func (p *Printer) PrintQuotas(quotas []reporting.Quota) {
	if len(quotas) == 0 {
		return
	}

	sorted := append([]reporting.Quota(nil), quotas...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsCompliant != sorted[j].IsCompliant {
			return !sorted[i].IsCompliant
		}
		return sorted[i].Gap > sorted[j].Gap
	})

	var sb strings.Builder
	for i, q := range sorted {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(sorted)-maxItemsToShow))
			break
		}
		mark := "✓"
		if !q.IsCompliant {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, q.EmployerName))
		sb.WriteString(fmt.Sprintf("   %d/%d disabled, min %d (%d%%), gap %d\n",
			q.DisabledEmployees, q.TotalEmployees, q.MandateMinimum, q.MandateRate, q.Gap))
	}

	p.printBox(fmt.Sprintf("QUOTA COMPLIANCE (%d employers)", len(quotas)), sb.String())
}

// PrintTransition outputs the outcome of a single status transition.
func (p *Printer) PrintTransition(result *lifecycle.TransitionResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Record:  %s\n", result.RecordID))
	sb.WriteString(fmt.Sprintf("Status:  %s → %s\n", result.From, result.To))
	if !result.Changed {
		sb.WriteString("No change\n")
	}
	for _, effect := range result.SideEffects {
		sb.WriteString(fmt.Sprintf("  • %s\n", effect))
	}
	if result.Certification != nil {
		sb.WriteString(fmt.Sprintf("Certificate: %s\n", result.Certification.CertificateNumber))
	}

	p.printBox(fmt.Sprintf("%s TRANSITION", strings.ToUpper(string(result.Kind))), sb.String())
}

// PrintBulkResult outputs a summary of a bulk transition.
func (p *Printer) PrintBulkResult(result *lifecycle.BulkResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target status: %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("Succeeded:     %d of %d\n", len(result.Succeeded), result.Total()))
	if len(result.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("\nFailed (%d):\n", len(result.Failed)))
		for i, f := range result.Failed {
			if i >= maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Failed)-maxItemsToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  • %s [%s]\n", f.ID.String()[:8], f.Kind))
		}
	}

	title := fmt.Sprintf("BULK %s", strings.ToUpper(string(result.Kind)))
	if result.Partial() {
		title += " (PARTIAL)"
	}
	p.printBox(title, sb.String())
}

func writeCounts(sb *strings.Builder, heading string, counts []reporting.Count) {
	if len(counts) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", heading))
	for i, c := range counts {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(counts)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s (%d)\n", c.Value, c.Count))
	}
}

func writeStatusCounts(sb *strings.Builder, counts map[types.Status]int) {
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		sb.WriteString(fmt.Sprintf("  • %s: %d\n", s, counts[types.Status(s)]))
	}
}

func joinLimited(items []string) string {
	if len(items) <= maxItemsToShow {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:maxItemsToShow], ", ") + fmt.Sprintf(" (+%d more)", len(items)-maxItemsToShow)
}
