// Package lifecycle moves applications, enrollments and verification requests
// through their status pipelines and fires the side effects tied to those
// transitions exactly once.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/verification"
)

// ErrorKind classifies lifecycle failures for callers and transports
type ErrorKind string

const (
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindPersistence       ErrorKind = "persistence_failure"
	KindPartialSideEffect ErrorKind = "partial_side_effect_failure"
	KindCanceled          ErrorKind = "canceled"
)

// Retryable reports whether re-invoking the same operation with the same
// arguments may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindPersistence, KindPartialSideEffect, KindCanceled:
		return true
	}
	return false
}

// ErrDuplicate is returned by stores when an insert hits a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Error is the error type returned by Orchestrator operations.
type Error struct {
	Kind ErrorKind
	Op   string
	ID   uuid.UUID
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.ID != uuid.Nil {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.ID, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err. Errors that did not come from this
// package are classified by their cause; anything unknown is a persistence failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	var forbidden *scope.ForbiddenError
	if errors.As(err, &forbidden) {
		return KindForbidden
	}
	var linkErr *verification.LinkError
	if errors.As(err, &linkErr) {
		return KindInvalidRequest
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindPersistence
}

func newError(kind ErrorKind, op string, id uuid.UUID, err error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: err}
}

// storeError wraps a store failure, keeping cancellation distinct from
// unreachable or rejecting stores.
func storeError(op string, id uuid.UUID, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindCanceled, op, id, err)
	}
	return newError(KindPersistence, op, id, err)
}
