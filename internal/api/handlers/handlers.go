package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/service"
	"github.com/dvloznov/finance-coach/internal/store"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

// CoachService is the coaching API consumed by the handlers.
type CoachService interface {
	CreateUser(ctx context.Context, email, name string) (domain.User, error)
	SeedSampleData(ctx context.Context, userID string) (service.SampleDataResult, error)

	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, body map[string]any) (domain.Transaction, error)

	Insights(ctx context.Context, userID string) service.InsightsReport
	Dashboard(ctx context.Context, userID string) (analytics.Dashboard, error)
	GoalForecast(ctx context.Context, userID string) service.ForecastReport
	Subscriptions(ctx context.Context, userID string) service.SubscriptionsReport

	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	CreateGoal(ctx context.Context, userID string, body map[string]any) (domain.Goal, error)
	UpdateGoal(ctx context.Context, userID, goalID string, body map[string]any) (domain.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

var _ CoachService = (*service.Service)(nil)

var errEmptyBody = errors.New("request body is empty")

// decodeBody reads a JSON object with numbers kept as json.Number so amounts
// may arrive as numbers or numeric strings.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, fmt.Errorf("decodeBody: %w", err)
	}
	if body == nil {
		return nil, errEmptyBody
	}
	return body, nil
}

// writeBodyError reports an undecodable request body.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, errEmptyBody):
		middleware.WriteError(w, http.StatusBadRequest, "Request body is required")
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
	}
}

// writeServiceError maps service errors onto status codes: validation
// failures are 400, unknown goals 404, anything else 500 with a generic
// message naming the failed action.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
	default:
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Str("action", action).Msg("Request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Error "+action)
	}
}
