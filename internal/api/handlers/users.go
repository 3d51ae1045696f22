package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
)

// UsersHandler handles user endpoints.
type UsersHandler struct {
	svc CoachService
	log zerolog.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(svc CoachService, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, log: log}
}

// CreateUser handles POST /api/users. Both body fields are optional.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil && !errors.Is(err, errEmptyBody) {
		writeBodyError(w, err)
		return
	}

	email, _ := body["email"].(string)
	name, _ := body["name"].(string)

	user, err := h.svc.CreateUser(r.Context(), email, name)
	if err != nil {
		writeServiceError(w, r, err, "creating user")
		return
	}

	h.log.Info().Str("user_id", user.ID).Msg("User registered")
	middleware.WriteJSON(w, http.StatusOK, user)
}

// SeedSampleData handles POST /api/users/{userID}/sample-data
func (h *UsersHandler) SeedSampleData(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SeedSampleData(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err, "creating sample data")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}
