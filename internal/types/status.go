// Package types provides type definitions for the entities and requests shared across the talent lifecycle service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// PipelineKind identifies which status pipeline a record belongs to
type PipelineKind string

const (
	PipelineApplication  PipelineKind = "application"
	PipelineEnrollment   PipelineKind = "enrollment"
	PipelineVerification PipelineKind = "verification"
)

// Status is a pipeline status. Valid values depend on the PipelineKind.
type Status string

// Application statuses
const (
	ApplicationApplied   Status = "applied"
	ApplicationReviewing Status = "reviewing"
	ApplicationInterview Status = "interview"
	ApplicationAccepted  Status = "accepted"
	ApplicationHired     Status = "hired"
	ApplicationRejected  Status = "rejected"
)

// Enrollment statuses
const (
	EnrollmentApplied   Status = "applied"
	EnrollmentAccepted  Status = "accepted"
	EnrollmentRejected  Status = "rejected"
	EnrollmentCompleted Status = "completed"
)

// Verification request statuses
const (
	VerificationPending  Status = "pending"
	VerificationVerified Status = "verified"
	VerificationRejected Status = "rejected"
)

// ParsePipelineKind accepts the singular and plural path forms used by the API.
func ParsePipelineKind(s string) (PipelineKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "application", "applications":
		return PipelineApplication, nil
	case "enrollment", "enrollments":
		return PipelineEnrollment, nil
	case "verification", "verifications", "verification_request", "verification_requests":
		return PipelineVerification, nil
	default:
		return "", fmt.Errorf("unknown pipeline kind: %q", s)
	}
}

// NormalizeStatus lowercases and trims a status string.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

func (k PipelineKind) String() string { return string(k) }

func (s Status) String() string { return string(s) }
