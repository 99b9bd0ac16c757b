package memstore

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyTalent(t types.TalentProfile) types.TalentProfile {
	t.Skills = cloneStrings(t.Skills)
	t.AccessibilityBarriers = cloneStrings(t.AccessibilityBarriers)
	if t.CampusID != nil {
		id := *t.CampusID
		t.CampusID = &id
	}
	return t
}

func copyEnrollment(e types.Enrollment) types.Enrollment {
	e.IssuedSkills = cloneStrings(e.IssuedSkills)
	return e
}

func copyCertification(c types.Certification) types.Certification {
	c.IssuedSkills = cloneStrings(c.IssuedSkills)
	return c
}

// cityMatches reports whether key is one of keys. An empty keys list matches all.
func cityMatches(key string, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	k := strings.ToLower(strings.Join(strings.Fields(key), " "))
	for _, c := range keys {
		if c == k {
			return true
		}
	}
	return false
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
