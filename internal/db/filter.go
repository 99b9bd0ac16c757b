package db

import (
	"fmt"
	"strings"

	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// conditions accumulates WHERE clauses with numbered placeholders
type conditions struct {
	clauses []string
	args    []any
}

// add appends a clause; each %d in format receives the placeholder number of arg.
func (c *conditions) add(format string, arg any) {
	c.args = append(c.args, arg)
	n := len(c.args)
	placeholders := make([]any, strings.Count(format, "%d"))
	for i := range placeholders {
		placeholders[i] = n
	}
	c.clauses = append(c.clauses, fmt.Sprintf(format, placeholders...))
}

// raw appends a clause without an argument.
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func normalizedKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = scope.NormalizeKey(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// cityKeyMatch compares a stored city key the way scope.NormalizeKey does:
// lowercased, trimmed, internal whitespace collapsed.
func cityKeyMatch(column string) string {
	return `regexp_replace(lower(btrim(` + column + `)), '\s+', ' ', 'g') = ANY($%d)`
}

// talentConditions restricts talents aliased as t.
func talentConditions(f types.RecordFilter) *conditions {
	c := &conditions{}
	if len(f.CityKeys) > 0 {
		c.add(cityKeyMatch("t.city_key"), normalizedKeys(f.CityKeys))
	}
	switch {
	case f.CampusID != nil:
		c.add("t.campus_id = $%d", *f.CampusID)
	case f.EmployerID != nil:
		c.add("EXISTS (SELECT 1 FROM applications a WHERE a.talent_id = t.id AND a.employer_id = $%d)", *f.EmployerID)
	case f.PartnerID != nil:
		c.add("EXISTS (SELECT 1 FROM enrollments en WHERE en.talent_id = t.id AND en.partner_id = $%d)", *f.PartnerID)
	}
	return c
}

// employerConditions restricts employers aliased as e.
func employerConditions(f types.RecordFilter) *conditions {
	c := &conditions{}
	if f.PartnerID != nil || f.CampusID != nil {
		c.raw("FALSE")
		return c
	}
	if f.EmployerID != nil {
		c.add("e.id = $%d", *f.EmployerID)
	}
	if len(f.CityKeys) > 0 {
		c.add(cityKeyMatch("e.city_key"), normalizedKeys(f.CityKeys))
	}
	return c
}

// postingConditions restricts job postings aliased as p.
func postingConditions(f types.RecordFilter) *conditions {
	c := &conditions{}
	if f.ActiveOnly {
		c.raw("p.active")
	}
	if f.EmployerID != nil {
		c.add("p.employer_id = $%d", *f.EmployerID)
	}
	if len(f.CityKeys) > 0 {
		c.add(cityKeyMatch("p.city_key"), normalizedKeys(f.CityKeys))
	}
	return c
}

// applicationConditions restricts applications aliased as a joined to talents t.
func applicationConditions(f types.RecordFilter) *conditions {
	c := &conditions{}
	if f.PartnerID != nil {
		c.raw("FALSE")
		return c
	}
	if f.EmployerID != nil {
		c.add("a.employer_id = $%d", *f.EmployerID)
	}
	talentSide(c, f)
	return c
}

// enrollmentConditions restricts enrollments aliased as en joined to talents t.
func enrollmentConditions(f types.RecordFilter) *conditions {
	c := &conditions{}
	if f.EmployerID != nil {
		c.raw("FALSE")
		return c
	}
	if f.PartnerID != nil {
		c.add("en.partner_id = $%d", *f.PartnerID)
	}
	talentSide(c, f)
	return c
}

func talentSide(c *conditions, f types.RecordFilter) {
	if len(f.CityKeys) > 0 {
		c.add(cityKeyMatch("t.city_key"), normalizedKeys(f.CityKeys))
	}
	if f.CampusID != nil {
		c.add("t.campus_id = $%d", *f.CampusID)
	}
}
