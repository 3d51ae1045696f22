package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/jobs"
)

// RouterConfig holds the collaborators of the HTTP API. Publisher and
// JobStore may be nil when background jobs are disabled.
type RouterConfig struct {
	Service   CoachService
	Publisher jobs.Publisher
	JobStore  jobs.JobStore
	Log       zerolog.Logger
}

// NewRouter builds the /api router with the standard middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	users := NewUsersHandler(cfg.Service, cfg.Log)
	transactions := NewTransactionsHandler(cfg.Service, cfg.Log)
	insights := NewInsightsHandler(cfg.Service, cfg.Log)
	goals := NewGoalsHandler(cfg.Service, cfg.Log)
	exports := NewExportsHandler(cfg.Publisher, cfg.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Log))
	r.Use(middleware.Logger(cfg.Log))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			middleware.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Finance Coach API is running"})
		})
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"status":    "healthy",
				"timestamp": time.Now().UTC(),
			})
		})

		r.Post("/users", users.CreateUser)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/sample-data", users.SeedSampleData)

			r.Get("/transactions", transactions.ListTransactions)
			r.Post("/transactions", transactions.CreateTransaction)

			r.Get("/insights", insights.Insights)
			r.Get("/dashboard", insights.Dashboard)
			r.Get("/goal-forecast", insights.GoalForecast)
			r.Get("/subscriptions", insights.Subscriptions)

			r.Get("/goals", goals.ListGoals)
			r.Post("/goals", goals.CreateGoal)
			r.Put("/goals/{goalID}", goals.UpdateGoal)
			r.Delete("/goals/{goalID}", goals.DeleteGoal)

			r.Post("/exports", exports.Enqueue)
		})

		if cfg.JobStore != nil {
			jobsHandler := NewJobsHandler(cfg.JobStore, cfg.Log)
			r.Get("/jobs", jobsHandler.ListJobs)
			r.Get("/jobs/{jobID}", jobsHandler.GetJob)
		}
	})

	return r
}
