package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/server/middleware"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// TransitionResponse wraps a transition outcome. Retry is set when side
// effects are incomplete and re-sending the same request will finish them.
type TransitionResponse struct {
	*lifecycle.TransitionResult
	Error string `json:"error,omitempty"`
	Retry bool   `json:"retry,omitempty"`
}

// BulkResponse is the per-id outcome of a bulk transition
type BulkResponse struct {
	*lifecycle.BulkResult
	Total     int  `json:"total"`
	IsPartial bool `json:"partial"`
}

// handleTransition applies one status change to a record of kind
func (s *Server) handleTransition(kind types.PipelineKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActor(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", kind))
			return
		}

		var req types.TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			s.failureResponse(w, validationError(err))
			return
		}

		result, err := s.orchestrator.ApplyTransition(r.Context(), actor, kind, id,
			types.NormalizeStatus(req.Status), lifecycle.Options{Notes: req.Notes})
		if err != nil {
			if lifecycle.KindOf(err) == lifecycle.KindPartialSideEffect && result != nil {
				log.Printf("[transition] %s %s persisted with incomplete side effects: %v", kind, id, err)
				s.jsonResponse(w, http.StatusAccepted, TransitionResponse{
					TransitionResult: result,
					Error:            err.Error(),
					Retry:            true,
				})
				return
			}
			s.failureResponse(w, err)
			return
		}

		s.jsonResponse(w, http.StatusOK, TransitionResponse{TransitionResult: result})
	}
}

// handleBulkTransition applies one status change to many records of kind
func (s *Server) handleBulkTransition(kind types.PipelineKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActor(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req types.BulkTransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			s.failureResponse(w, validationError(err))
			return
		}
		if len(req.IDs) > s.bulkLimit {
			s.failureResponse(w, &ErrValidation{
				Field:   "ids",
				Message: fmt.Sprintf("at most %d ids per request, got %d", s.bulkLimit, len(req.IDs)),
			})
			return
		}

		result, err := s.orchestrator.ApplyBulk(r.Context(), actor, kind, req.IDs,
			types.NormalizeStatus(req.Status), lifecycle.Options{Notes: req.Notes})
		if err != nil {
			s.failureResponse(w, err)
			return
		}

		s.jsonResponse(w, http.StatusOK, BulkResponse{
			BulkResult: result,
			Total:      result.Total(),
			IsPartial:  result.Partial(),
		})
	}
}

// handleSubmitVerification files or refreshes a verification request for an organization
func (s *Server) handleSubmitVerification(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.GetActor(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.SubmitVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.failureResponse(w, validationError(err))
		return
	}

	verification, err := s.orchestrator.SubmitVerification(r.Context(), actor,
		types.SubjectKind(req.SubjectKind), req.SubjectID, req.DocumentLink)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, verification)
}

// handleAllowedNext lists the statuses reachable from a status
func (s *Server) handleAllowedNext(w http.ResponseWriter, r *http.Request) {
	kind, err := types.ParsePipelineKind(r.PathValue("kind"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	status := types.NormalizeStatus(r.PathValue("status"))
	if !lifecycle.KnownStatus(kind, status) {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown %s status: %q", kind, status))
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"kind":         kind,
		"status":       status,
		"terminal":     lifecycle.IsTerminal(kind, status),
		"allowed_next": lifecycle.AllowedNext(kind, status),
	})
}

// validationError converts validator output into an ErrValidation for the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed '%s' check", fe.Tag()),
		}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}
