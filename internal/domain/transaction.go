package domain

import (
	"time"
)

// Record is a row as returned by a store backend. Field names vary between
// backends and between historical writers, so records must go through the
// normalize package before any analytics touch them.
type Record map[string]any

// TransactionType is the stored money-movement label of a transaction.
type TransactionType string

const (
	TypeDebit      TransactionType = "debit"
	TypeCredit     TransactionType = "credit"
	TypePayment    TransactionType = "payment"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDebit, TypeCredit, TypePayment, TypeWithdrawal, TypeDeposit:
		return true
	}
	return false
}

// IsExpense reports whether t moves money out of the account.
func (t TransactionType) IsExpense() bool {
	return t == TypeDebit || t == TypePayment || t == TypeWithdrawal
}

// IsIncome reports whether t moves money into the account.
func (t TransactionType) IsIncome() bool {
	return t == TypeCredit || t == TypeDeposit
}

// Analysis is the per-transaction annotation produced once when the
// transaction is created. It is never recomputed in place.
type Analysis struct {
	Category string `json:"category"`
	Insight  string `json:"insight"`
	Tip      string `json:"tip"`
}

// Transaction is the canonical, normalized transaction shape.
// Amount is always a non-negative magnitude; direction is carried by Type.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Merchant    *string         `json:"merchant"`
	Timestamp   time.Time       `json:"date"`
	Category    *string         `json:"category"`
	AICategory  *string         `json:"ai_category"`
	Type        TransactionType `json:"transaction_type"`
	AIInsights  *Analysis       `json:"ai_insights"`

	// Effective is the resolved category used for aggregation.
	Effective string `json:"effective_category"`
}

// EffectiveCategory returns the category label used for aggregation.
func (t Transaction) EffectiveCategory() string {
	if t.Effective == "" {
		return "other"
	}
	return t.Effective
}

// MerchantName returns the merchant or an empty string.
func (t Transaction) MerchantName() string {
	if t.Merchant == nil {
		return ""
	}
	return *t.Merchant
}
