// Package queue captures write actions attempted while the agent is offline
// and replays them in enqueue order once connectivity returns. Queued actions
// live in a durable store that outlives the process.
package queue

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

// ErrActionNotFound means the queue store has no action with that ID.
var ErrActionNotFound = errors.New("queued action not found")

// Store is the durable backend for queued actions. Implementations must
// preserve enqueue order and survive process restarts.
type Store interface {
	// Append durably persists a new action. A failed append means the action
	// is NOT queued; the error must reach the caller.
	Append(ctx context.Context, action models.QueuedAction) error
	// ListPending returns all pending actions in enqueue order.
	ListPending(ctx context.Context) ([]models.QueuedAction, error)
	// MarkInFlight flags an action as picked up by a drain cycle.
	MarkInFlight(ctx context.Context, id string) error
	// MarkDelivered removes a successfully delivered action.
	MarkDelivered(ctx context.Context, id string) error
	// MarkFailed returns an action to pending for the next drain, recording
	// the failure.
	MarkFailed(ctx context.Context, id string, lastError string) error
	// RecoverInFlight returns actions stranded in flight by an interrupted
	// drain to pending and reports how many were recovered. Drains are
	// serialized, so any in-flight action seen at the start of a cycle
	// belongs to a drain that died before settling it.
	RecoverInFlight(ctx context.Context) (int, error)
}
