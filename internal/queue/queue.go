package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/client"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

// ErrDrainInProgress means another drain cycle is already running; only one
// runs at a time so FIFO order holds.
var ErrDrainInProgress = errors.New("drain already in progress")

// Dispatcher sends one queued action to the backend.
type Dispatcher interface {
	Dispatch(ctx context.Context, action models.QueuedAction) error
}

// APIDispatcher maps (domain, kind) pairs onto alerts API calls.
type APIDispatcher struct {
	api    client.AlertsAPI
	logger zerolog.Logger
}

func NewAPIDispatcher(api client.AlertsAPI, logger zerolog.Logger) *APIDispatcher {
	return &APIDispatcher{
		api:    api,
		logger: logger.With().Str("component", "queue_dispatcher").Logger(),
	}
}

func (d *APIDispatcher) Dispatch(ctx context.Context, action models.QueuedAction) error {
	switch {
	case action.Domain == "alert" && action.Kind == "create":
		alertID, err := d.api.CreateAlert(ctx, action.Payload)
		if err != nil {
			return err
		}
		d.logger.Info().
			Str("queue_id", action.ID).
			Str("alert_id", alertID).
			Msg("queued alert delivered")
		return nil
	default:
		return errors.Errorf("no dispatch route for %s/%s", action.Domain, action.Kind)
	}
}

// Queue is the process-wide offline action queue. Enqueues are safe from any
// goroutine; drains are serialized.
type Queue struct {
	store      Store
	dispatcher Dispatcher
	logger     zerolog.Logger
	drainMu    sync.Mutex
}

func New(store Store, dispatcher Dispatcher, logger zerolog.Logger) *Queue {
	return &Queue{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "offline_queue").Logger(),
	}
}

// Enqueue durably captures an action for later delivery and returns its queue
// ID. A store failure means the action was NOT queued and is reported to the
// caller; a silently lost emergency action is the worst outcome this queue
// exists to prevent.
func (q *Queue) Enqueue(ctx context.Context, domain, kind string, payload json.RawMessage, actionCtx models.ActionContext) (string, error) {
	action := models.QueuedAction{
		ID:         uuid.New().String(),
		Domain:     domain,
		Kind:       kind,
		Payload:    payload,
		Context:    actionCtx,
		Status:     models.ActionStatusPending,
		EnqueuedAt: time.Now(),
	}

	if err := q.store.Append(ctx, action); err != nil {
		return "", errors.Wrap(err, "enqueue")
	}

	q.logger.Info().
		Str("queue_id", action.ID).
		Str("domain", domain).
		Str("kind", kind).
		Msg("action queued for later delivery")
	return action.ID, nil
}

// Pending lists queued actions awaiting delivery, in enqueue order.
func (q *Queue) Pending(ctx context.Context) ([]models.QueuedAction, error) {
	return q.store.ListPending(ctx)
}

// Drain replays pending actions in enqueue order, one at a time. The first
// delivery failure returns the action to pending and ends the cycle, so a
// later action is never delivered ahead of an earlier one; the failed action
// retries on the next drain trigger. There is no retry cap or dead-letter
// cutoff; attempts and the last error are recorded for inspection.
func (q *Queue) Drain(ctx context.Context) error {
	if !q.drainMu.TryLock() {
		return ErrDrainInProgress
	}
	defer q.drainMu.Unlock()

	// Actions stranded in flight by a crash mid-drain would otherwise be
	// invisible forever: durably stored but never listed as pending.
	recovered, err := q.store.RecoverInFlight(ctx)
	if err != nil {
		return errors.Wrap(err, "recover in-flight actions")
	}
	if recovered > 0 {
		q.logger.Warn().Int("count", recovered).Msg("recovered actions from interrupted drain")
	}

	pending, err := q.store.ListPending(ctx)
	if err != nil {
		return errors.Wrap(err, "drain")
	}
	if len(pending) == 0 {
		return nil
	}

	q.logger.Info().Int("count", len(pending)).Msg("draining queued actions")

	for _, action := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := q.store.MarkInFlight(ctx, action.ID); err != nil {
			return errors.Wrapf(err, "drain %s", action.ID)
		}

		if err := q.dispatcher.Dispatch(ctx, action); err != nil {
			if markErr := q.store.MarkFailed(ctx, action.ID, err.Error()); markErr != nil {
				q.logger.Error().
					Err(markErr).
					Str("queue_id", action.ID).
					Msg("failed to return action to pending")
			}
			q.logger.Warn().
				Err(err).
				Str("queue_id", action.ID).
				Int("attempts", action.Attempts+1).
				Msg("delivery failed, will retry on next drain")
			return errors.Wrapf(err, "deliver %s", action.ID)
		}

		if err := q.store.MarkDelivered(ctx, action.ID); err != nil {
			return errors.Wrapf(err, "mark delivered %s", action.ID)
		}
	}

	q.logger.Info().Int("count", len(pending)).Msg("drain complete")
	return nil
}
