package pipeline

import (
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	infra "github.com/dvloznov/finance-coach/internal/infra/bigquery"
)

// BuildReport computes the deterministic analytics of a snapshot. No model
// is called; archived reports carry numbers only.
func BuildReport(
	snapshotID, userID string,
	txs []domain.Transaction,
	goals []domain.Goal,
	now time.Time,
	subs analytics.SubscriptionConfig,
	mode analytics.IncomeMode,
) *Report {
	savings := analytics.EstimateMonthlySavings(txs, now, mode)

	r := &Report{
		SchemaVersion: ReportSchemaVersion,
		SnapshotID:    snapshotID,
		UserID:        userID,
		GeneratedAt:   now,
		Breakdown:     analytics.Aggregate(txs),
		Subscriptions: analytics.DetectSubscriptions(txs, subs),
		Savings:       savings,
		Goals:         make([]GoalSnapshot, 0, len(goals)),
	}

	for _, g := range goals {
		if !g.Active {
			continue
		}
		p := analytics.Forecast(savings.MonthlySavings, g.TargetAmount, g.CurrentAmount, now)
		r.Goals = append(r.Goals, goalSnapshot(g, p))
	}
	return r
}

// SnapshotRow maps a report onto its warehouse row.
func SnapshotRow(r *Report, reportURI string) *infra.SnapshotRow {
	row := &infra.SnapshotRow{
		SnapshotID:          r.SnapshotID,
		UserID:              r.UserID,
		SnapshotDate:        civil.DateOf(r.GeneratedAt.UTC()),
		TotalExpenses:       infra.NumericFromFloat(r.Breakdown.TotalExpenses),
		TotalIncome:         infra.NumericFromFloat(r.Breakdown.TotalIncome),
		MonthlySavings:      infra.NumericFromFloat(r.Savings.MonthlySavings),
		SavingsBasis:        r.Savings.Basis,
		TransactionCount:    int64(r.Breakdown.ExpenseCount + r.Breakdown.IncomeCount),
		SubscriptionCount:   int64(r.Subscriptions.Count),
		SubscriptionMonthly: infra.NumericFromFloat(r.Subscriptions.TotalMonthly),
		ActiveGoalCount:     int64(len(r.Goals)),
	}
	if top := r.TopCategory(); top != "" {
		row.TopCategory = bigquerylib.NullString{StringVal: top, Valid: true}
	}
	if reportURI != "" {
		row.ReportURI = bigquerylib.NullString{StringVal: reportURI, Valid: true}
	}
	return row
}
