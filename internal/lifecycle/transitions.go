package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// transitionGraph is the single source of truth for legal status moves.
// A status present as a key with no successors is terminal.
var transitionGraph = map[types.PipelineKind]map[types.Status][]types.Status{
	types.PipelineApplication: {
		types.ApplicationApplied:   {types.ApplicationReviewing, types.ApplicationRejected},
		types.ApplicationReviewing: {types.ApplicationInterview, types.ApplicationRejected},
		types.ApplicationInterview: {types.ApplicationAccepted, types.ApplicationRejected},
		types.ApplicationAccepted:  {types.ApplicationHired, types.ApplicationRejected},
		types.ApplicationHired:     nil,
		types.ApplicationRejected:  nil,
	},
	types.PipelineEnrollment: {
		types.EnrollmentApplied:   {types.EnrollmentAccepted, types.EnrollmentRejected},
		types.EnrollmentAccepted:  {types.EnrollmentCompleted, types.EnrollmentRejected},
		types.EnrollmentCompleted: nil,
		types.EnrollmentRejected:  nil,
	},
	types.PipelineVerification: {
		types.VerificationPending:  {types.VerificationVerified, types.VerificationRejected},
		types.VerificationRejected: {types.VerificationPending},
		types.VerificationVerified: nil,
	},
}

// initialStatus is the status records are created in
var initialStatus = map[types.PipelineKind]types.Status{
	types.PipelineApplication:  types.ApplicationApplied,
	types.PipelineEnrollment:   types.EnrollmentApplied,
	types.PipelineVerification: types.VerificationPending,
}

// Validate decides whether moving from current to requested is legal for the
// pipeline kind. Requesting the current status is a no-op success.
func Validate(kind types.PipelineKind, current, requested types.Status) error {
	const op = "validate transition"

	graph, ok := transitionGraph[kind]
	if !ok {
		return newError(KindInvalidTransition, op, uuid.Nil, fmt.Errorf("unknown pipeline kind %q", kind))
	}
	if _, ok := graph[current]; !ok {
		return newError(KindInvalidTransition, op, uuid.Nil, fmt.Errorf("unknown %s status %q", kind, current))
	}
	if _, ok := graph[requested]; !ok {
		return newError(KindInvalidTransition, op, uuid.Nil, fmt.Errorf("unknown %s status %q", kind, requested))
	}
	if current == requested {
		return nil
	}
	for _, next := range graph[current] {
		if next == requested {
			return nil
		}
	}
	if len(graph[current]) == 0 {
		return newError(KindInvalidTransition, op, uuid.Nil, fmt.Errorf("%s status %q is terminal", kind, current))
	}
	return newError(KindInvalidTransition, op, uuid.Nil, fmt.Errorf("%s cannot move from %q to %q", kind, current, requested))
}

// IsTerminal reports whether status is a sink for the pipeline kind.
func IsTerminal(kind types.PipelineKind, status types.Status) bool {
	next, ok := transitionGraph[kind][status]
	return ok && len(next) == 0
}

// AllowedNext returns the statuses reachable in one step from status.
func AllowedNext(kind types.PipelineKind, status types.Status) []types.Status {
	next := transitionGraph[kind][status]
	out := make([]types.Status, len(next))
	copy(out, next)
	return out
}

// InitialStatus returns the status new records of kind start in.
func InitialStatus(kind types.PipelineKind) types.Status {
	return initialStatus[kind]
}

// KnownStatus reports whether status belongs to the pipeline kind.
func KnownStatus(kind types.PipelineKind, status types.Status) bool {
	_, ok := transitionGraph[kind][status]
	return ok
}
