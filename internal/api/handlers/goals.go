package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// GoalResponse wraps a created or updated goal.
type GoalResponse struct {
	Message string      `json:"message"`
	Goal    domain.Goal `json:"goal"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// GoalsHandler handles goal CRUD endpoints.
type GoalsHandler struct {
	svc CoachService
	log zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(svc CoachService, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{svc: svc, log: log}
}

// ListGoals handles GET /api/users/{userID}/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListGoals(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err, "fetching goals")
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// CreateGoal handles POST /api/users/{userID}/goals
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	goal, err := h.svc.CreateGoal(r.Context(), chi.URLParam(r, "userID"), body)
	if err != nil {
		writeServiceError(w, r, err, "creating goal")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, GoalResponse{Message: "Goal created successfully", Goal: goal})
}

// UpdateGoal handles PUT /api/users/{userID}/goals/{goalID}
func (h *GoalsHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	goal, err := h.svc.UpdateGoal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "goalID"), body)
	if err != nil {
		writeServiceError(w, r, err, "updating goal")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, GoalResponse{Message: "Goal updated successfully", Goal: goal})
}

// DeleteGoal handles DELETE /api/users/{userID}/goals/{goalID}
func (h *GoalsHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGoal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "goalID")); err != nil {
		writeServiceError(w, r, err, "deleting goal")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Goal deleted successfully"})
}
