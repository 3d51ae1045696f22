package pipeline

import (
	"time"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// Report is the archived analytics snapshot of one user. It is written once
// and never read back for computation.
type Report struct {
	SchemaVersion int       `json:"schema_version"`
	SnapshotID    string    `json:"snapshot_id"`
	UserID        string    `json:"user_id"`
	GeneratedAt   time.Time `json:"generated_at"`

	Breakdown     analytics.Breakdown          `json:"breakdown"`
	Subscriptions analytics.SubscriptionReport `json:"subscriptions"`
	Savings       analytics.SavingsEstimate    `json:"savings"`
	Goals         []GoalSnapshot               `json:"goals"`
}

// GoalSnapshot pairs an active goal with its projection at snapshot time.
type GoalSnapshot struct {
	GoalID     string                   `json:"goal_id"`
	Title      string                   `json:"title"`
	TargetDate *time.Time               `json:"target_date,omitempty"`
	Projection analytics.GoalProjection `json:"projection"`
}

// TopCategory returns the highest-spend category, or "" without spending.
func (r *Report) TopCategory() string {
	if len(r.Breakdown.Categories) == 0 {
		return ""
	}
	return r.Breakdown.Categories[0].Category
}

func goalSnapshot(g domain.Goal, p analytics.GoalProjection) GoalSnapshot {
	return GoalSnapshot{GoalID: g.ID, Title: g.Title, TargetDate: g.TargetDate, Projection: p}
}
