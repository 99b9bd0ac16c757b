package lifecycle

import "strings"

func skillKey(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// NormalizeSkillSet trims skills and drops blanks and case-insensitive
// duplicates, keeping the first spelling and order.
func NormalizeSkillSet(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		k := skillKey(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// MergeSkills returns the set union of existing and issued, preserving the
// order of existing and appending new skills in issued order. Nothing from
// existing is ever dropped. added counts the skills that were not present.
func MergeSkills(existing, issued []string) (merged []string, added int) {
	merged = make([]string, 0, len(existing)+len(issued))
	seen := make(map[string]bool, len(existing)+len(issued))
	for _, s := range existing {
		merged = append(merged, s)
		if k := skillKey(s); k != "" {
			seen[k] = true
		}
	}
	for _, s := range issued {
		k := skillKey(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, strings.TrimSpace(s))
		added++
	}
	return merged, added
}

func sameSkillSet(a, b []string) bool {
	a, b = NormalizeSkillSet(a), NormalizeSkillSet(b)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[skillKey(s)] = true
	}
	for _, s := range b {
		if !set[skillKey(s)] {
			return false
		}
	}
	return true
}
