package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/coach"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// Forecast messages.
const (
	MessageNoGoals       = "No goals found. Create your first financial goal to get personalized forecasts."
	MessageTimeout       = "Forecast analysis timed out. Please try again."
	GuidanceNoData       = "No transaction data available. Start tracking your spending to get personalized forecasts."
	GuidanceUnavailable  = "Unable to generate forecast. Please try again or create a goal first."
	placeholderGoalTitle = "Set Your First Goal"
	placeholderTarget    = 1000.0
)

// GoalForecast is the projection of one goal plus coaching text.
type GoalForecast struct {
	GoalID                  string               `json:"goal_id"`
	Title                   string               `json:"title"`
	TargetAmount            float64              `json:"target_amount"`
	CurrentAmount           float64              `json:"current_amount"`
	Remaining               float64              `json:"remaining"`
	MonthsNeeded            *float64             `json:"months_needed"`
	Status                  analytics.GoalStatus `json:"status"`
	ProgressPercentage      float64              `json:"progress_percentage"`
	EstimatedCompletionDate *time.Time           `json:"estimated_completion_date"`
	TargetDate              *time.Time           `json:"target_date,omitempty"`
	AIGuidance              string               `json:"ai_guidance"`
	GuidanceSource          string               `json:"guidance_source,omitempty"`
}

// ForecastReport is the response of the goal forecast view.
type ForecastReport struct {
	UserID                 string                     `json:"user_id"`
	MonthlySavingsEstimate float64                    `json:"monthly_savings_estimate"`
	Savings                *analytics.SavingsEstimate `json:"savings_basis,omitempty"`
	Forecasts              []GoalForecast             `json:"forecasts"`
	TotalGoals             int                        `json:"total_goals"`
	Message                string                     `json:"message,omitempty"`
}

// GoalForecast projects every active goal of the user. It never fails: a
// timeout yields an empty, labeled report and a store failure yields a single
// placeholder goal.
func (s *Service) GoalForecast(ctx context.Context, userID string) ForecastReport {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ForecastTimeout)
	defer cancel()

	type outcome struct {
		report ForecastReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := s.forecast(ctx, userID)
		done <- outcome{report, err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
	}

	if ctx.Err() != nil {
		s.log.Warn().
			Err(ctx.Err()).
			Str("user_id", userID).
			Dur("timeout", s.cfg.ForecastTimeout).
			Msg("Goal forecast timed out")
		return ForecastReport{
			UserID:    userID,
			Forecasts: []GoalForecast{},
			Message:   MessageTimeout,
		}
	}
	if o.err != nil {
		s.log.Error().Err(o.err).Str("user_id", userID).Msg("Goal forecast failed, returning placeholder")
		return placeholderForecast(userID)
	}
	return o.report
}

func (s *Service) forecast(ctx context.Context, userID string) (ForecastReport, error) {
	goals, err := s.activeGoals(ctx, userID)
	if err != nil {
		return ForecastReport{}, fmt.Errorf("forecast: %w", err)
	}
	if len(goals) == 0 {
		return ForecastReport{
			UserID:    userID,
			Forecasts: []GoalForecast{},
			Message:   MessageNoGoals,
		}, nil
	}

	txs, err := s.transactions(ctx, userID)
	if err != nil {
		return ForecastReport{}, fmt.Errorf("forecast: %w", err)
	}

	report := ForecastReport{
		UserID:     userID,
		Forecasts:  make([]GoalForecast, 0, len(goals)),
		TotalGoals: len(goals),
	}

	if len(txs) == 0 {
		for _, g := range goals {
			report.Forecasts = append(report.Forecasts, GoalForecast{
				GoalID:        g.ID,
				Title:         g.Title,
				TargetAmount:  g.TargetAmount,
				CurrentAmount: g.CurrentAmount,
				Remaining:     analytics.Forecast(0, g.TargetAmount, g.CurrentAmount, s.now()).Remaining,
				Status:        analytics.StatusNoData,
				TargetDate:    g.TargetDate,
				AIGuidance:    GuidanceNoData,
			})
		}
		return report, nil
	}

	now := s.now()
	estimate := analytics.EstimateMonthlySavings(txs, now, s.cfg.IncomeMode)
	report.MonthlySavingsEstimate = analytics.Round2(estimate.MonthlySavings)
	report.Savings = &estimate

	for _, g := range goals {
		if err := ctx.Err(); err != nil {
			return ForecastReport{}, err
		}
		p := analytics.Forecast(estimate.MonthlySavings, g.TargetAmount, g.CurrentAmount, now)
		guidance := s.coach.GoalGuidance(ctx, p)
		report.Forecasts = append(report.Forecasts, goalForecast(g, p, guidance))
	}
	return report, nil
}

func goalForecast(g domain.Goal, p analytics.GoalProjection, guidance coach.Result[string]) GoalForecast {
	return GoalForecast{
		GoalID:                  g.ID,
		Title:                   g.Title,
		TargetAmount:            p.TargetAmount,
		CurrentAmount:           p.CurrentAmount,
		Remaining:               p.Remaining,
		MonthsNeeded:            p.MonthsNeeded,
		Status:                  p.Status,
		ProgressPercentage:      analytics.Round2(p.ProgressPercentage),
		EstimatedCompletionDate: p.EstimatedCompletionDate,
		TargetDate:              g.TargetDate,
		AIGuidance:              guidance.Value,
		GuidanceSource:          string(guidance.Source),
	}
}

func placeholderForecast(userID string) ForecastReport {
	return ForecastReport{
		UserID: userID,
		Forecasts: []GoalForecast{{
			GoalID:         "fallback",
			Title:          placeholderGoalTitle,
			TargetAmount:   placeholderTarget,
			Remaining:      placeholderTarget,
			Status:         analytics.StatusError,
			AIGuidance:     GuidanceUnavailable,
			GuidanceSource: string(coach.SourceFallback),
		}},
		TotalGoals: 1,
	}
}

// IsTimeout reports whether report is the labeled timeout result.
func (r ForecastReport) IsTimeout() bool {
	return r.Message == MessageTimeout
}
