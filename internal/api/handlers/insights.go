package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
)

// InsightsHandler serves the derived analytics views. Apart from the
// dashboard these always answer 200 with a best-effort payload.
type InsightsHandler struct {
	svc CoachService
	log zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc CoachService, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, log: log}
}

// Insights handles GET /api/users/{userID}/insights
func (h *InsightsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Insights(r.Context(), chi.URLParam(r, "userID")))
}

// Dashboard handles GET /api/users/{userID}/dashboard
func (h *InsightsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Dashboard(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err, "fetching dashboard data")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dash)
}

// GoalForecast handles GET /api/users/{userID}/goal-forecast
func (h *InsightsHandler) GoalForecast(w http.ResponseWriter, r *http.Request) {
	report := h.svc.GoalForecast(r.Context(), chi.URLParam(r, "userID"))
	if report.IsTimeout() {
		h.log.Warn().Str("user_id", report.UserID).Msg("Serving timed out goal forecast")
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// Subscriptions handles GET /api/users/{userID}/subscriptions
func (h *InsightsHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Subscriptions(r.Context(), chi.URLParam(r, "userID")))
}
