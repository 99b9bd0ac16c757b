//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// RecordFilter restricts list queries to a read scope.
//
// A zero filter matches everything. CityKeys restricts talents, employers and
// job postings by their city key, and applications and enrollments by the
// city of their talent. At most one of the owner ids is set:
//   - EmployerID keeps that employer, its postings and applications, and the
//     talents who applied to it; it excludes enrollments.
//   - PartnerID keeps that partner's enrollments and their talents; it
//     excludes employers and applications.
//   - CampusID keeps the campus's talents and their applications and enrollments;
//     it excludes employers.
//
// Job postings are market data: only EmployerID and CityKeys narrow them.
type RecordFilter struct {
	CityKeys   []string
	EmployerID *uuid.UUID
	PartnerID  *uuid.UUID
	CampusID   *uuid.UUID
	// ActiveOnly limits job postings to active ones.
	ActiveOnly bool
}

// HasOwner reports whether the filter is an ownership filter.
func (f RecordFilter) HasOwner() bool {
	return f.EmployerID != nil || f.PartnerID != nil || f.CampusID != nil
}
