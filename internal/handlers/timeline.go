package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/cache"
	"github.com/sivaSai9177/alert-agent/internal/client"
	"github.com/sivaSai9177/alert-agent/internal/timeline"
)

// TimelineHandler serves the derived lifecycle timeline for one alert. The
// timeline is the only escalation-event view exposed to presentation clients;
// raw escalation records stay inside the agent.
type TimelineHandler struct {
	cache  *cache.Cache
	api    client.AlertsAPI
	logger zerolog.Logger
}

func NewTimelineHandler(alertCache *cache.Cache, api client.AlertsAPI, logger zerolog.Logger) *TimelineHandler {
	return &TimelineHandler{
		cache:  alertCache,
		api:    api,
		logger: logger.With().Str("handler", "timeline").Logger(),
	}
}

func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	alertID := strings.TrimSpace(mux.Vars(r)["alertID"])
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "Alert ID is required")
		return
	}

	alert, ok := h.cache.Get(alertID)
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}

	escalations, err := h.api.GetEscalationHistory(r.Context(), alertID)
	if err != nil {
		h.logger.Warn().Err(err).Str("alert_id", alertID).Msg("failed to fetch escalation history")
		writeError(w, http.StatusBadGateway, "Failed to fetch escalation history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timeline": timeline.Build(alert, escalations),
	})
}
