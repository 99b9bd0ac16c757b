package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/server/middleware"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// ListTalentsResponse represents the response for the talent directory
type ListTalentsResponse struct {
	Talents []types.TalentProfile `json:"talents"`
	Count   int                   `json:"count"`
	Scope   string                `json:"scope"`
}

// handleStats computes dashboard statistics for the actor's scope
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.GetActor(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := s.engine.ComputeStats(r.Context(), s.authorizer.Resolve(actor))
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

// handleEmployerQuota reports disability quota compliance for one employer
func (s *Server) handleEmployerQuota(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.GetActor(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	employerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid employer ID")
		return
	}

	employer, err := s.store.GetEmployer(r.Context(), employerID)
	if err != nil {
		s.failureResponse(w, err)
		return
	}
	if employer == nil {
		s.errorResponse(w, http.StatusNotFound, "Employer not found")
		return
	}

	if err := s.authorizer.Authorize(actor, scope.ActionRead, scope.Target{
		Kind:        scope.TargetEmployer,
		SubjectID:   employer.ID,
		SubjectKind: types.SubjectCompany,
		LocationKey: employer.CityKey,
	}); err != nil {
		s.failureResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, reporting.QuotaCompliance(*employer))
}

// handleListTalents lists the talents visible to the actor, ordered by name
// then id, for downstream CSV and PDF exports. An optional city query
// parameter narrows the list within the actor's scope.
func (s *Server) handleListTalents(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.GetActor(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	readScope := s.authorizer.Resolve(actor)
	filter, ok := reporting.FilterFor(readScope)
	if ok {
		filter, ok = narrowToCity(filter, readScope, r.URL.Query().Get("city"))
	}
	if !ok {
		s.jsonResponse(w, http.StatusOK, ListTalentsResponse{Talents: []types.TalentProfile{}, Scope: readScope.String()})
		return
	}

	talents, err := s.store.ListTalents(r.Context(), filter)
	if err != nil {
		s.failureResponse(w, &lifecycle.Error{Kind: lifecycle.KindOf(err), Op: "list talents", Err: err})
		return
	}
	if talents == nil {
		talents = []types.TalentProfile{}
	}

	s.jsonResponse(w, http.StatusOK, ListTalentsResponse{
		Talents: talents,
		Count:   len(talents),
		Scope:   readScope.String(),
	})
}

// narrowToCity restricts filter to one city. ok is false when the city lies
// outside a geographic scope.
func narrowToCity(filter types.RecordFilter, readScope scope.Scope, city string) (types.RecordFilter, bool) {
	key := scope.NormalizeKey(city)
	if key == "" {
		return filter, true
	}
	if len(filter.CityKeys) > 0 && !readScope.MatchesCity(key) {
		return filter, false
	}
	filter.CityKeys = []string{key}
	return filter, true
}
