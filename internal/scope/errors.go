package scope

import (
	"fmt"

	"github.com/jonathan/talent-lifecycle/internal/types"
)

// ForbiddenError indicates the actor's scope does not cover the target or action
type ForbiddenError struct {
	Actor  types.Actor
	Action Action
	Target TargetKind
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s may not %s %s: %s", e.Actor, e.Action, e.Target, e.Reason)
}
