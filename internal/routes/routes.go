package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sivaSai9177/alert-agent/internal/handlers"
)

// NewRouter sets up the agent's local API routes
func NewRouter(
	alerts *handlers.AlertHandler,
	timeline *handlers.TimelineHandler,
	queue *handlers.QueueHandler,
	health *handlers.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", health.Check).Methods(http.MethodGet)

	// Alert state
	router.HandleFunc("/api/alerts", alerts.List).Methods(http.MethodGet)
	router.HandleFunc("/api/alerts", alerts.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/alerts/refresh", alerts.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/api/alerts/{alertID}/acknowledge", alerts.Acknowledge).Methods(http.MethodPost)
	router.HandleFunc("/api/alerts/{alertID}/resolve", alerts.Resolve).Methods(http.MethodPost)
	router.HandleFunc("/api/alerts/{alertID}/timeline", timeline.Get).Methods(http.MethodGet)

	// Offline action queue
	router.HandleFunc("/api/queue", queue.List).Methods(http.MethodGet)
	router.HandleFunc("/api/queue/drain", queue.Drain).Methods(http.MethodPost)

	return router
}
