package analytics

import (
	"sort"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// CategoryStats is the spending picture of one effective category.
type CategoryStats struct {
	Category         string  `json:"category"`
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int     `json:"transaction_count"`
	AvgTransaction   float64 `json:"avg_transaction"`
	Percentage       float64 `json:"percentage"`
	Trend            Trend   `json:"trend"`

	// Amounts in chronological order.
	Amounts []float64 `json:"-"`
}

// Breakdown is the result of aggregating one user's transactions.
type Breakdown struct {
	Categories    []CategoryStats `json:"categories"`
	TotalExpenses float64         `json:"total_expenses"`
	TotalIncome   float64         `json:"total_income"`
	NetCashflow   float64         `json:"net_cashflow"`
	ExpenseCount  int             `json:"expense_count"`
	IncomeCount   int             `json:"income_count"`
}

// HasSpending reports whether any expense amount was aggregated.
func (b Breakdown) HasSpending() bool {
	return b.TotalExpenses > 0
}

// CategoryTotals maps each category to its total spend.
func (b Breakdown) CategoryTotals() map[string]float64 {
	out := make(map[string]float64, len(b.Categories))
	for _, c := range b.Categories {
		out[c.Category] = c.TotalAmount
	}
	return out
}

// Aggregate partitions expense transactions by effective category. Income
// transactions only feed TotalIncome. Transactions are ordered by timestamp
// before partitioning so each category's amounts are chronological.
func Aggregate(txs []domain.Transaction) Breakdown {
	ordered := Chronological(txs)

	amountsByCategory := make(map[string][]float64)
	var expenses, income []float64

	for _, tx := range ordered {
		switch {
		case tx.Type.IsExpense():
			cat := tx.EffectiveCategory()
			amountsByCategory[cat] = append(amountsByCategory[cat], tx.Amount)
			expenses = append(expenses, tx.Amount)
		case tx.Type.IsIncome():
			income = append(income, tx.Amount)
		}
	}

	b := Breakdown{
		TotalExpenses: sumExact(expenses),
		TotalIncome:   sumExact(income),
		ExpenseCount:  len(expenses),
		IncomeCount:   len(income),
	}
	b.NetCashflow = b.TotalIncome - b.TotalExpenses

	for cat, amounts := range amountsByCategory {
		stats := CategoryStats{
			Category:         cat,
			TotalAmount:      sumExact(amounts),
			TransactionCount: len(amounts),
			Trend:            ClassifyTrend(amounts),
			Amounts:          amounts,
		}
		if stats.TransactionCount > 0 {
			stats.AvgTransaction = stats.TotalAmount / float64(stats.TransactionCount)
		}
		if b.TotalExpenses > 0 {
			stats.Percentage = stats.TotalAmount / b.TotalExpenses * 100
		}
		b.Categories = append(b.Categories, stats)
	}

	sort.Slice(b.Categories, func(i, j int) bool {
		if b.Categories[i].TotalAmount != b.Categories[j].TotalAmount {
			return b.Categories[i].TotalAmount > b.Categories[j].TotalAmount
		}
		return b.Categories[i].Category < b.Categories[j].Category
	})

	return b
}

// Chronological returns a copy of txs sorted by timestamp, oldest first.
// Ties keep their input order.
func Chronological(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Recent returns up to n transactions, newest first.
func Recent(txs []domain.Transaction, n int) []domain.Transaction {
	ordered := Chronological(txs)
	out := make([]domain.Transaction, 0, n)
	for i := len(ordered) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, ordered[i])
	}
	return out
}
