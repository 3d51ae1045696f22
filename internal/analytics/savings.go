package analytics

import (
	"math"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// IncomeMode selects how monthly income is estimated.
type IncomeMode string

const (
	// IncomeProxy assumes income is a fixed multiple of observed expenses.
	IncomeProxy IncomeMode = "proxy"
	// IncomeObserved sums credit and deposit transactions, falling back to
	// the proxy when there are none.
	IncomeObserved IncomeMode = "observed"
)

const (
	// IncomeProxyMultiplier stands in for a 23% savings rate on expense-only data.
	IncomeProxyMultiplier = 1.3
	// DefaultMonthlyIncome is assumed when no expenses are observed.
	DefaultMonthlyIncome = 3000.0
	// SavingsWindow is the trailing window used for the estimate.
	SavingsWindow = 30 * 24 * time.Hour
)

// Basis values recorded on a SavingsEstimate.
const (
	BasisExpenseProxy  = "expense_proxy"
	BasisDefaultIncome = "default_income"
	BasisObserved      = "observed_income"
)

// SavingsEstimate is the derived monthly savings rate and how it was reached.
type SavingsEstimate struct {
	Expenses       float64 `json:"expenses"`
	Income         float64 `json:"income"`
	MonthlySavings float64 `json:"monthly_savings"`
	Basis          string  `json:"basis"`
	WindowCount    int     `json:"window_transactions"`
}

// ParseIncomeMode maps a config value onto a mode, defaulting to the proxy.
func ParseIncomeMode(s string) IncomeMode {
	if IncomeMode(s) == IncomeObserved {
		return IncomeObserved
	}
	return IncomeProxy
}

// EstimateMonthlySavings derives savings from transactions dated within the
// trailing window ending at now.
func EstimateMonthlySavings(txs []domain.Transaction, now time.Time, mode IncomeMode) SavingsEstimate {
	cutoff := now.Add(-SavingsWindow)

	var expenses, income []float64
	var windowCount int
	for _, tx := range txs {
		if tx.Timestamp.Before(cutoff) {
			continue
		}
		windowCount++
		switch {
		case tx.Type.IsExpense():
			expenses = append(expenses, tx.Amount)
		case tx.Type.IsIncome():
			income = append(income, tx.Amount)
		}
	}

	est := SavingsEstimate{
		Expenses:    sumExact(expenses),
		WindowCount: windowCount,
	}

	switch {
	case mode == IncomeObserved && len(income) > 0:
		est.Income = sumExact(income)
		est.Basis = BasisObserved
	case est.Expenses > 0:
		est.Income = est.Expenses * IncomeProxyMultiplier
		est.Basis = BasisExpenseProxy
	default:
		est.Income = DefaultMonthlyIncome
		est.Basis = BasisDefaultIncome
	}

	est.MonthlySavings = math.Max(est.Income-est.Expenses, 0)
	return est
}
