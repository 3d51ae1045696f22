package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/normalize"
)

// DefaultGoalType is used when a goal is created without a type.
const DefaultGoalType = "custom"

// ListGoals returns the user's active goals.
func (s *Service) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	goals, err := s.activeGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListGoals: %w", err)
	}
	return goals, nil
}

// CreateGoal validates body and stores a new active goal.
func (s *Service) CreateGoal(ctx context.Context, userID string, body map[string]any) (domain.Goal, error) {
	title := stringField(body, domain.FieldTitle)
	if title == "" {
		return domain.Goal{}, missingField(domain.FieldTitle)
	}
	if v, ok := body[domain.FieldTargetAmount]; !ok || v == nil {
		return domain.Goal{}, missingField(domain.FieldTargetAmount)
	}

	fields, err := goalFields(body)
	if err != nil {
		return domain.Goal{}, err
	}

	g := domain.Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		GoalType:  DefaultGoalType,
		Active:    true,
		CreatedAt: s.now(),
	}
	g.TargetAmount, _ = fields[domain.FieldTargetAmount].(float64)
	if v, ok := fields[domain.FieldCurrentAmount].(float64); ok {
		g.CurrentAmount = v
	}
	if v, ok := fields[domain.FieldGoalType].(string); ok {
		g.GoalType = v
	}
	if v, ok := fields[domain.FieldTargetDate].(time.Time); ok {
		g.TargetDate = &v
	}

	if err := s.store.InsertGoal(ctx, normalize.GoalRecord(g)); err != nil {
		return domain.Goal{}, fmt.Errorf("CreateGoal: insert: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("goal_id", g.ID).Float64("target_amount", g.TargetAmount).Msg("Goal created")
	return g, nil
}

// UpdateGoal applies the updatable fields of body to a goal. Unknown fields
// are ignored; a body without any updatable field is rejected.
func (s *Service) UpdateGoal(ctx context.Context, userID, goalID string, body map[string]any) (domain.Goal, error) {
	fields, err := goalFields(body)
	if err != nil {
		return domain.Goal{}, err
	}
	if len(fields) == 0 {
		return domain.Goal{}, invalidField("", "No updatable fields provided")
	}
	return s.updateGoal(ctx, userID, goalID, fields)
}

// DeleteGoal soft-deletes a goal by marking it inactive.
func (s *Service) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if _, err := s.updateGoal(ctx, userID, goalID, domain.Record{domain.FieldIsActive: false}); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("goal_id", goalID).Msg("Goal deactivated")
	return nil
}

func (s *Service) updateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Goal, error) {
	fields[domain.FieldUpdatedAt] = s.now()
	rec, err := s.store.UpdateGoal(ctx, userID, goalID, fields)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("UpdateGoal: %w", err)
	}
	return normalize.Goal(rec, s.now()), nil
}

func (s *Service) activeGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	recs, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	var active []domain.Goal
	for _, g := range normalize.Goals(recs, s.now()) {
		if g.Active {
			active = append(active, g)
		}
	}
	return active, nil
}

// goalFields validates the updatable goal fields present in body and returns
// them under their stored names. Timestamps are returned as time.Time so
// every backend can bind them to a timestamp column.
func goalFields(body map[string]any) (domain.Record, error) {
	fields := domain.Record{}

	for _, key := range []string{domain.FieldTitle, domain.FieldGoalName} {
		if _, present := body[key]; !present {
			continue
		}
		title := stringField(body, key)
		if title == "" {
			return nil, invalidField(key, "%s must be a non-empty string", key)
		}
		fields[domain.FieldGoalName] = title
	}

	if _, present := body[domain.FieldGoalType]; present {
		goalType := stringField(body, domain.FieldGoalType)
		if goalType == "" {
			goalType = DefaultGoalType
		}
		fields[domain.FieldGoalType] = goalType
	}

	if v, present := body[domain.FieldTargetAmount]; present {
		amount, ok := normalize.ParseAmount(v)
		if !ok || amount <= 0 {
			return nil, invalidField(domain.FieldTargetAmount, "target_amount must be a positive number")
		}
		fields[domain.FieldTargetAmount] = analytics.Round2(amount)
	}

	if v, present := body[domain.FieldCurrentAmount]; present && v != nil {
		amount, ok := normalize.ParseAmount(v)
		if !ok || amount < 0 {
			return nil, invalidField(domain.FieldCurrentAmount, "current_amount must be a non-negative number")
		}
		fields[domain.FieldCurrentAmount] = analytics.Round2(amount)
	}

	if v, present := body[domain.FieldTargetDate]; present {
		switch raw := v.(type) {
		case nil:
			fields[domain.FieldTargetDate] = nil
		case string:
			if raw == "" {
				fields[domain.FieldTargetDate] = nil
				break
			}
			ts, ok := normalize.ParseTimestamp(raw)
			if !ok {
				return nil, invalidField(domain.FieldTargetDate, "target_date must be an ISO-8601 date")
			}
			fields[domain.FieldTargetDate] = ts.UTC()
		default:
			return nil, invalidField(domain.FieldTargetDate, "target_date must be an ISO-8601 date")
		}
	}

	if v, present := body[domain.FieldIsActive]; present {
		active, ok := v.(bool)
		if !ok {
			return nil, invalidField(domain.FieldIsActive, "is_active must be a boolean")
		}
		fields[domain.FieldIsActive] = active
	}

	return fields, nil
}
