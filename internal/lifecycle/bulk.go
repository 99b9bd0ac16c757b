package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// BulkFailure records why one id in a bulk request did not transition.
type BulkFailure struct {
	ID      uuid.UUID `json:"id"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// BulkResult aggregates the per-id outcomes of a bulk transition.
// Succeeded and Failed together hold every distinct requested id exactly once.
type BulkResult struct {
	Kind      types.PipelineKind `json:"kind"`
	Status    types.Status       `json:"status"`
	Succeeded []uuid.UUID        `json:"succeeded"`
	Failed    []BulkFailure      `json:"failed"`
}

// Partial reports whether some but not all ids succeeded.
func (r *BulkResult) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// Total returns the number of ids processed.
func (r *BulkResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// ApplyBulk applies the same requested status to every id independently.
// A failure on one id never rolls back or blocks the others. Duplicate ids are
// processed once. Ids left unprocessed when ctx is canceled are reported with
// KindCanceled.
//
// An id whose status persisted but whose side effects failed is reported as a
// failure with KindPartialSideEffect so the caller knows to retry it.
func (o *Orchestrator) ApplyBulk(ctx context.Context, actor types.Actor, kind types.PipelineKind, ids []uuid.UUID, requested types.Status, opts Options) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, newError(KindInvalidRequest, "bulk transition", uuid.Nil, errors.New("no ids given"))
	}
	if _, ok := transitionGraph[kind]; !ok {
		return nil, newError(KindInvalidRequest, "bulk transition", uuid.Nil, fmt.Errorf("unknown pipeline kind %q", kind))
	}

	requested = types.NormalizeStatus(string(requested))
	result := &BulkResult{
		Kind:      kind,
		Status:    requested,
		Succeeded: make([]uuid.UUID, 0, len(ids)),
		Failed:    make([]BulkFailure, 0),
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Kind: KindCanceled, Message: err.Error()})
			continue
		}

		if _, err := o.ApplyTransition(ctx, actor, kind, id, requested, opts); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Kind: KindOf(err), Message: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	log.Printf("[bulk] %s -> %s by %s: %d succeeded, %d failed",
		kind, requested, actor, len(result.Succeeded), len(result.Failed))
	return result, nil
}
