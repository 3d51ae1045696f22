package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/normalize"
)

// ListTransactions returns the user's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	txs, err := s.transactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return analytics.Recent(txs, len(txs)), nil
}

// CreateTransaction validates body, annotates the transaction with the
// coach's analysis and stores it.
func (s *Service) CreateTransaction(ctx context.Context, userID string, body map[string]any) (domain.Transaction, error) {
	tx, err := s.transactionFromBody(userID, body)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.annotate(ctx, &tx)

	rec := normalize.TransactionRecord(tx)
	rec[domain.FieldCreatedAt] = tx.Timestamp.UTC().Format(time.RFC3339Nano)
	if err := s.store.InsertTransaction(ctx, rec); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: insert: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("transaction_id", tx.ID).
		Str("category", tx.EffectiveCategory()).
		Msg("Transaction created")
	return tx, nil
}

func (s *Service) transactionFromBody(userID string, body map[string]any) (domain.Transaction, error) {
	raw, ok := body[domain.FieldAmount]
	if !ok || raw == nil {
		return domain.Transaction{}, missingField(domain.FieldAmount)
	}
	amount, ok := normalize.ParseAmount(raw)
	if !ok || amount <= 0 {
		return domain.Transaction{}, invalidField(domain.FieldAmount, "amount must be a positive number")
	}

	description := stringField(body, domain.FieldDescription)
	if description == "" {
		return domain.Transaction{}, missingField(domain.FieldDescription)
	}

	txType := domain.TypeDebit
	if t := stringField(body, domain.FieldTransactionType); t != "" {
		txType = domain.TransactionType(strings.ToLower(t))
		if !txType.Valid() {
			return domain.Transaction{}, invalidField(domain.FieldTransactionType,
				"transaction_type must be one of debit, credit, payment, withdrawal, deposit")
		}
	}

	return domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      analytics.Round2(amount),
		Description: description,
		Merchant:    optionalString(body, domain.FieldMerchant),
		Category:    optionalString(body, domain.FieldCategory),
		Timestamp:   s.now(),
		Type:        txType,
	}, nil
}

// annotate attaches the coach's analysis. A fallback analysis does not
// override a category the transaction already carries.
func (s *Service) annotate(ctx context.Context, tx *domain.Transaction) {
	res := s.coach.AnalyzeTransaction(ctx, *tx)
	analysis := res.Value

	category := analysis.Category
	if res.IsFallback() && tx.Category != nil {
		category = *tx.Category
	}
	tx.AICategory = &category
	tx.AIInsights = &analysis
	tx.Effective = normalize.EffectiveCategory(tx.AICategory, tx.Category, tx.Merchant)
}

func (s *Service) transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	recs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return normalize.Transactions(recs, s.now()), nil
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}

func optionalString(body map[string]any, key string) *string {
	s := stringField(body, key)
	if s == "" {
		return nil
	}
	return &s
}
