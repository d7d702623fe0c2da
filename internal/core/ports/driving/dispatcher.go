package driving

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// EventDispatcher routes domain events to agents and chains follow-up
// events based on their results. It holds no queue and no persistence:
// each event is handled by exactly one handler within the caller's
// call stack, and delivery is at-most-once per call.
type EventDispatcher interface {
	// Dispatch routes one event and runs its chain to completion.
	// Unrecognised event types are logged and dropped, not errors.
	Dispatch(ctx context.Context, event domain.Event) error

	// DispatchDetached routes one event on a background goroutine.
	// Chain failures are caught and logged at the detachment point,
	// never propagated to the caller.
	DispatchDetached(event domain.Event)
}
