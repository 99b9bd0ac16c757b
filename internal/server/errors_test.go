package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "ids", Message: "too many"}
	assert.Equal(t, "validation error: ids - too many", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()
	forbidden := &scope.ForbiddenError{Actor: types.Actor{Role: types.RoleTalent}, Action: scope.ActionUpdateStatus, Target: scope.TargetApplication, Reason: "not the owner"}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "validation", err: &ErrValidation{Field: "status", Message: "required"}, expected: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("decode: %w", &ErrValidation{Field: "ids"}), expected: http.StatusBadRequest},
		{name: "invalid transition", err: &lifecycle.Error{Kind: lifecycle.KindInvalidTransition, Op: "transition", ID: id}, expected: http.StatusConflict},
		{name: "forbidden", err: &lifecycle.Error{Kind: lifecycle.KindForbidden, Op: "transition", ID: id, Err: forbidden}, expected: http.StatusForbidden},
		{name: "bare scope error", err: forbidden, expected: http.StatusForbidden},
		{name: "not found", err: &lifecycle.Error{Kind: lifecycle.KindNotFound, Op: "transition", ID: id}, expected: http.StatusNotFound},
		{name: "invalid request", err: &lifecycle.Error{Kind: lifecycle.KindInvalidRequest, Op: "bulk"}, expected: http.StatusBadRequest},
		{name: "partial side effect", err: &lifecycle.Error{Kind: lifecycle.KindPartialSideEffect, Op: "complete", ID: id}, expected: http.StatusAccepted},
		{name: "canceled", err: context.Canceled, expected: http.StatusRequestTimeout},
		{name: "persistence", err: &lifecycle.Error{Kind: lifecycle.KindPersistence, Op: "transition", ID: id}, expected: http.StatusServiceUnavailable},
		{name: "unknown store error", err: errors.New("connection refused"), expected: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	body := newErrorBody(&lifecycle.Error{Kind: lifecycle.KindPartialSideEffect, Op: "complete", Err: errors.New("merge failed")})
	assert.Equal(t, "partial_side_effect_failure", body.Error)
	assert.True(t, body.Retryable)
	assert.Contains(t, body.Message, "merge failed")

	body = newErrorBody(&lifecycle.Error{Kind: lifecycle.KindInvalidTransition, Op: "transition"})
	assert.Equal(t, "invalid_transition", body.Error)
	assert.False(t, body.Retryable)

	body = newErrorBody(&ErrValidation{Field: "ids", Message: "required"})
	assert.Equal(t, "invalid_request", body.Error)
	assert.False(t, body.Retryable)
}
