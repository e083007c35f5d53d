package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/queue"
)

type QueueHandler struct {
	queue  *queue.Queue
	logger zerolog.Logger
}

func NewQueueHandler(actionQueue *queue.Queue, logger zerolog.Logger) *QueueHandler {
	return &QueueHandler{
		queue:  actionQueue,
		logger: logger.With().Str("handler", "queue").Logger(),
	}
}

func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	pending, err := h.queue.Pending(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pending actions")
		writeError(w, http.StatusInternalServerError, "Failed to list queued actions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending": pending,
	})
}

func (h *QueueHandler) Drain(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.Drain(r.Context()); err != nil {
		if errors.Is(err, queue.ErrDrainInProgress) {
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "drain already running"})
			return
		}
		h.logger.Warn().Err(err).Msg("drain stopped on failure")
		writeError(w, http.StatusBadGateway, "Drain stopped; remaining actions will retry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "drained"})
}
