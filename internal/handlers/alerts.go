package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/cache"
	"github.com/sivaSai9177/alert-agent/internal/client"
	"github.com/sivaSai9177/alert-agent/internal/connectivity"
	"github.com/sivaSai9177/alert-agent/internal/models"
	"github.com/sivaSai9177/alert-agent/internal/queue"
)

type AlertHandler struct {
	cache      *cache.Cache
	poller     *cache.Poller
	api        client.AlertsAPI
	queue      *queue.Queue
	monitor    *connectivity.Monitor
	hospitalID string
	logger     zerolog.Logger
}

func NewAlertHandler(
	alertCache *cache.Cache,
	poller *cache.Poller,
	api client.AlertsAPI,
	actionQueue *queue.Queue,
	monitor *connectivity.Monitor,
	hospitalID string,
	logger zerolog.Logger,
) *AlertHandler {
	return &AlertHandler{
		cache:      alertCache,
		poller:     poller,
		api:        api,
		queue:      actionQueue,
		monitor:    monitor,
		hospitalID: hospitalID,
		logger:     logger.With().Str("handler", "alerts").Logger(),
	}
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": h.cache.List(),
		"online": h.monitor.IsOnline(),
	})
}

type acknowledgeRequest struct {
	Notes string `json:"notes"`
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	alertID := strings.TrimSpace(mux.Vars(r)["alertID"])
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "Alert ID is required")
		return
	}

	var req acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if err := h.cache.Acknowledge(r.Context(), alertID, req.Notes); err != nil {
		h.writeMutationError(w, err, alertID, "acknowledge")
		return
	}

	alert, _ := h.cache.Get(alertID)
	writeJSON(w, http.StatusOK, alert)
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	alertID := strings.TrimSpace(mux.Vars(r)["alertID"])
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "Alert ID is required")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	if err := h.cache.Resolve(r.Context(), alertID, req.Resolution); err != nil {
		h.writeMutationError(w, err, alertID, "resolve")
		return
	}

	alert, _ := h.cache.Get(alertID)
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.poller.Refresh(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("manual refresh failed")
		writeError(w, http.StatusBadGateway, "Failed to refresh alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": h.cache.List(),
	})
}

// Create sends a new alert to the backend directly when online. Offline, or
// when the backend is unreachable, the action is captured in the durable
// queue instead and acknowledged with 202; it must never be silently lost.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	if !json.Valid(payload) {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	actionCtx := models.ActionContext{HospitalID: h.hospitalID}

	if h.monitor.IsOnline() {
		alertID, err := h.api.CreateAlert(r.Context(), payload)
		if err == nil {
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"alert": map[string]string{"id": alertID},
			})
			return
		}

		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Validation() {
			writeError(w, http.StatusBadRequest, apiErr.Message)
			return
		}
		h.logger.Warn().Err(err).Msg("direct create failed, queueing action")
	}

	queueID, err := h.queue.Enqueue(r.Context(), "alert", "create", payload, actionCtx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to queue alert creation")
		writeError(w, http.StatusInternalServerError, "Failed to queue alert; please retry")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"queued":   true,
		"queue_id": queueID,
	})
}

func (h *AlertHandler) writeMutationError(w http.ResponseWriter, err error, alertID, op string) {
	switch {
	case errors.Is(err, cache.ErrNotFound):
		writeError(w, http.StatusNotFound, "Alert not found")
	case errors.Is(err, cache.ErrPrecondition):
		writeError(w, http.StatusConflict, "Alert status does not allow this operation")
	default:
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Validation() {
			writeError(w, http.StatusBadRequest, apiErr.Message)
			return
		}
		h.logger.Warn().Err(err).Str("alert_id", alertID).Msgf("%s failed", op)
		writeError(w, http.StatusBadGateway, "Backend unavailable; change was rolled back")
	}
}
