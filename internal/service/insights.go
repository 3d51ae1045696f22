package service

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-coach/internal/analytics"
)

// InsightsReport is the response of the insights view.
type InsightsReport struct {
	Insights          []analytics.SpendingInsight `json:"insights"`
	TotalTransactions int                         `json:"total_transactions"`
	AnalysisPeriod    string                      `json:"analysis_period"`
	AnomaliesPresent  bool                        `json:"anomalies_present"`
}

// Insights builds per-category spending insights with coaching text. It never
// fails: an unreadable history yields a welcome placeholder.
func (s *Service) Insights(ctx context.Context, userID string) InsightsReport {
	txs, err := s.transactions(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Insights unavailable, returning welcome insight")
		return InsightsReport{
			Insights:       []analytics.SpendingInsight{analytics.WelcomeInsight(userID)},
			AnalysisPeriod: analytics.PeriodGettingStarted,
		}
	}

	if len(txs) == 0 {
		return InsightsReport{
			Insights:       analytics.StarterInsights(userID),
			AnalysisPeriod: analytics.PeriodNoDataYet,
		}
	}

	breakdown := analytics.Aggregate(txs)

	var insights []analytics.SpendingInsight
	if breakdown.HasSpending() {
		results := s.coach.RecommendAll(ctx, breakdown.Categories)
		insights = make([]analytics.SpendingInsight, 0, len(breakdown.Categories))
		for i, stats := range breakdown.Categories {
			in := analytics.NewSpendingInsight(userID, stats)
			in.Recommendation = results[i].Value
			in.RecommendationSource = string(results[i].Source)
			insights = append(insights, in)
		}
	} else {
		insights = []analytics.SpendingInsight{analytics.GeneralInsight(userID, len(txs))}
	}

	return InsightsReport{
		Insights:          insights,
		TotalTransactions: len(txs),
		AnalysisPeriod:    analytics.PeriodLast30Days,
		AnomaliesPresent:  analytics.AnyIncreasing(insights),
	}
}

// Dashboard summarizes income, spending and recent activity.
func (s *Service) Dashboard(ctx context.Context, userID string) (analytics.Dashboard, error) {
	txs, err := s.transactions(ctx, userID)
	if err != nil {
		return analytics.Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}
	return analytics.BuildDashboard(userID, txs), nil
}

// SubscriptionsReport is the response of the recurring-charge view.
type SubscriptionsReport struct {
	UserID string `json:"user_id"`
	analytics.SubscriptionReport
	Message string `json:"message,omitempty"`
}

// Subscriptions detects recurring charges. A store failure yields an empty
// report with a message.
func (s *Service) Subscriptions(ctx context.Context, userID string) SubscriptionsReport {
	txs, err := s.transactions(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Subscriptions unavailable")
		return SubscriptionsReport{
			UserID:             userID,
			SubscriptionReport: analytics.SubscriptionReport{Subscriptions: []analytics.Subscription{}},
			Message:            "Unable to analyze subscriptions right now. Please try again later.",
		}
	}
	return SubscriptionsReport{
		UserID:             userID,
		SubscriptionReport: analytics.DetectSubscriptions(txs, s.cfg.Subscriptions),
	}
}
