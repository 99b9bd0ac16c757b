//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TransitionRequest represents a single status change request.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,min=1"`
	Notes  string `json:"notes,omitempty" validate:"max=2000"`
}

// BulkTransitionRequest represents a status change applied to many records.
type BulkTransitionRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,dive,required"`
	Status string      `json:"status" validate:"required,min=1"`
	Notes  string      `json:"notes,omitempty" validate:"max=2000"`
}

// SubmitVerificationRequest represents a new or resubmitted verification request.
type SubmitVerificationRequest struct {
	SubjectKind  string    `json:"subject_kind" validate:"required,oneof=company campus partner government"`
	SubjectID    uuid.UUID `json:"subject_id" validate:"required"`
	DocumentLink string    `json:"document_link" validate:"required,url"`
}

// Validate validates the TransitionRequest using the validator.
func (r *TransitionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BulkTransitionRequest using the validator.
func (r *BulkTransitionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SubmitVerificationRequest using the validator.
func (r *SubmitVerificationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
