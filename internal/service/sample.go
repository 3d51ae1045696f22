package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/normalize"
)

// SampleDataResult reports what SeedSampleData wrote.
type SampleDataResult struct {
	Message      string `json:"message"`
	Transactions int    `json:"transactions"`
	Goals        int    `json:"goals"`
	DataPeriod   string `json:"data_period"`
}

// SeedSampleData adds two demo goals and a month of synthetic spending. Unlike
// user creation, any store failure aborts the operation.
func (s *Service) SeedSampleData(ctx context.Context, userID string) (SampleDataResult, error) {
	now := s.now()
	goals := sampleGoals(userID, now)

	txs := s.data.Transactions(userID, SampleTransactions, now)
	for _, tx := range txs {
		rec := normalize.TransactionRecord(tx)
		rec[domain.FieldCreatedAt] = now.Format(time.RFC3339Nano)
		if err := s.store.InsertTransaction(ctx, rec); err != nil {
			return SampleDataResult{}, fmt.Errorf("SeedSampleData: insert transaction: %w", err)
		}
	}

	for _, g := range goals {
		if err := s.store.InsertGoal(ctx, normalize.GoalRecord(g)); err != nil {
			return SampleDataResult{}, fmt.Errorf("SeedSampleData: insert goal: %w", err)
		}
	}

	s.log.Info().Str("user_id", userID).Int("transactions", len(txs)).Int("goals", len(goals)).Msg("Sample data created")
	return SampleDataResult{
		Message:      "Comprehensive sample data created successfully",
		Transactions: len(txs),
		Goals:        len(goals),
		DataPeriod:   "Last 30 days",
	}, nil
}

func sampleGoals(userID string, now time.Time) []domain.Goal {
	due := func(days int) *time.Time {
		t := now.AddDate(0, 0, days)
		return &t
	}
	return []domain.Goal{
		{
			ID:            uuid.NewString(),
			UserID:        userID,
			Title:         "Emergency Fund",
			GoalType:      "emergency_fund",
			TargetAmount:  15000,
			CurrentAmount: 12450,
			TargetDate:    due(120),
			Active:        true,
			CreatedAt:     now.AddDate(0, 0, -60),
		},
		{
			ID:            uuid.NewString(),
			UserID:        userID,
			Title:         "Vacation Fund",
			GoalType:      "vacation",
			TargetAmount:  5000,
			CurrentAmount: 1200,
			TargetDate:    due(180),
			Active:        true,
			CreatedAt:     now.AddDate(0, 0, -30),
		},
	}
}
