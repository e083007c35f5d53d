package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/connectivity"
	"github.com/sivaSai9177/alert-agent/internal/queue"
)

// HealthHandler reports agent liveness plus the connectivity and queue
// state a ward-station dashboard polls for.
type HealthHandler struct {
	monitor *connectivity.Monitor
	queue   *queue.Queue
	logger  zerolog.Logger
}

func NewHealthHandler(monitor *connectivity.Monitor, actionQueue *queue.Queue, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
		queue:   actionQueue,
		logger:  logger.With().Str("handler", "health").Logger(),
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"online": h.monitor.IsOnline(),
	}

	if pending, err := h.queue.Pending(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("queue store unavailable")
		body["status"] = "degraded"
	} else {
		body["queue_depth"] = len(pending)
	}

	writeJSON(w, http.StatusOK, body)
}
