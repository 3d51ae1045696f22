package analytics

import "github.com/dvloznov/finance-coach/internal/domain"

// RecentLimit is the number of transactions on the dashboard.
const RecentLimit = 10

// Summary is the cashflow headline of the dashboard.
type Summary struct {
	TotalSpent       float64 `json:"total_spent"`
	TotalIncome      float64 `json:"total_income"`
	NetCashflow      float64 `json:"net_cashflow"`
	TransactionCount int     `json:"transaction_count"`
}

// Dashboard is the aggregate view for one user.
type Dashboard struct {
	UserID             string               `json:"user_id"`
	Summary            Summary              `json:"summary"`
	CategorySpending   map[string]float64   `json:"category_spending"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
}

// BuildDashboard aggregates txs into the dashboard view.
func BuildDashboard(userID string, txs []domain.Transaction) Dashboard {
	b := Aggregate(txs)
	return Dashboard{
		UserID: userID,
		Summary: Summary{
			TotalSpent:       b.TotalExpenses,
			TotalIncome:      b.TotalIncome,
			NetCashflow:      b.NetCashflow,
			TransactionCount: len(txs),
		},
		CategorySpending:   b.CategoryTotals(),
		RecentTransactions: Recent(txs, RecentLimit),
	}
}
