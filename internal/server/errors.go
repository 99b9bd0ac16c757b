package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talent-lifecycle/internal/lifecycle"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}

	switch lifecycle.KindOf(err) {
	case lifecycle.KindInvalidTransition:
		return http.StatusConflict
	case lifecycle.KindForbidden:
		return http.StatusForbidden
	case lifecycle.KindNotFound:
		return http.StatusNotFound
	case lifecycle.KindInvalidRequest:
		return http.StatusBadRequest
	case lifecycle.KindPartialSideEffect:
		return http.StatusAccepted
	case lifecycle.KindCanceled:
		return http.StatusRequestTimeout
	case lifecycle.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of a failed lifecycle operation.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func newErrorBody(err error) errorBody {
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return errorBody{Error: string(lifecycle.KindInvalidRequest), Message: err.Error()}
	}
	kind := lifecycle.KindOf(err)
	return errorBody{
		Error:     string(kind),
		Message:   err.Error(),
		Retryable: kind.Retryable(),
	}
}
