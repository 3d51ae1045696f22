// Package normalize converts loosely typed store records into canonical
// domain values. It never fails on a single record: missing or malformed
// fields are coerced to safe defaults.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// categoryRule coerces any category containing one of its tokens.
type categoryRule struct {
	canonical string
	tokens    []string
}

// categoryRules are applied in order; the first match wins.
var categoryRules = []categoryRule{
	{canonical: "coffee", tokens: []string{"starbucks", "coffee"}},
	{canonical: "food", tokens: []string{"food", "restaurant", "dining"}},
	{canonical: "entertainment", tokens: []string{"entertainment", "netflix", "streaming"}},
	{canonical: "transportation", tokens: []string{"transportation", "uber", "gas"}},
	{canonical: "shopping", tokens: []string{"shopping", "amazon", "target"}},
}

// CoerceCategory maps brand and synonym tokens onto canonical category names.
// Labels matching no rule are returned unchanged.
func CoerceCategory(category string) string {
	lower := strings.ToLower(category)
	for _, rule := range categoryRules {
		for _, token := range rule.tokens {
			if strings.Contains(lower, token) {
				return rule.canonical
			}
		}
	}
	return category
}

// EffectiveCategory resolves ai_category, category, lower-cased merchant and
// finally "other", then applies CoerceCategory.
func EffectiveCategory(aiCategory, category, merchant *string) string {
	resolved := "other"
	switch {
	case aiCategory != nil && strings.TrimSpace(*aiCategory) != "":
		resolved = strings.TrimSpace(*aiCategory)
	case category != nil && strings.TrimSpace(*category) != "":
		resolved = strings.TrimSpace(*category)
	case merchant != nil && strings.TrimSpace(*merchant) != "":
		resolved = strings.ToLower(strings.TrimSpace(*merchant))
	}
	return CoerceCategory(resolved)
}

// Transaction converts a stored record. now is used when no timestamp can be
// derived.
func Transaction(rec domain.Record, now time.Time) domain.Transaction {
	tx := domain.Transaction{
		Timestamp: now,
		Type:      domain.TypeDebit,
	}

	if v, ok := lookup(rec, FieldID); ok {
		tx.ID = toString(v)
	}
	if v, ok := lookup(rec, FieldUserID); ok {
		tx.UserID = toString(v)
	}
	if v, ok := lookup(rec, FieldAmount); ok {
		tx.Amount = math.Abs(toFloat(v))
	}
	if v, ok := lookup(rec, FieldDescription); ok {
		tx.Description = toString(v)
	}
	tx.Merchant = toOptionalString(lookup(rec, FieldMerchant))

	if v, ok := lookup(rec, FieldTimestamp); ok {
		if ts, parsed := toTime(v); parsed {
			tx.Timestamp = ts
		}
	}

	tx.AICategory = toOptionalString(rawField(rec, domain.FieldAICategory))
	tx.Category = toOptionalString(rawField(rec, domain.FieldCategory))

	if v, ok := lookup(rec, FieldType); ok {
		t := domain.TransactionType(strings.ToLower(strings.TrimSpace(toString(v))))
		if t.Valid() {
			tx.Type = t
		}
	}

	if v, ok := lookup(rec, FieldInsights); ok {
		tx.AIInsights = toAnalysis(v)
	}

	tx.Effective = effectiveFromRecord(rec)
	return tx
}

// effectiveFromRecord is EffectiveCategory driven by the candidate table.
func effectiveFromRecord(rec domain.Record) string {
	resolved := "other"
	if v, ok := lookup(rec, FieldCategory); ok && strings.TrimSpace(toString(v)) != "" {
		resolved = strings.TrimSpace(toString(v))
	} else if v, ok := lookup(rec, FieldMerchant); ok && strings.TrimSpace(toString(v)) != "" {
		resolved = strings.ToLower(strings.TrimSpace(toString(v)))
	}
	return CoerceCategory(resolved)
}

// Transactions converts a batch of records, preserving order.
func Transactions(recs []domain.Record, now time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Transaction(rec, now))
	}
	return out
}

// Goal converts a stored goal record.
func Goal(rec domain.Record, now time.Time) domain.Goal {
	g := domain.Goal{
		Title:     "Financial Goal",
		GoalType:  "custom",
		Active:    true,
		CreatedAt: now,
	}

	if v, ok := lookup(rec, FieldID); ok {
		g.ID = toString(v)
	}
	if v, ok := lookup(rec, FieldUserID); ok {
		g.UserID = toString(v)
	}
	if v, ok := lookup(rec, FieldGoalTitle); ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			g.Title = s
		}
	}
	if v, ok := lookup(rec, FieldGoalType); ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			g.GoalType = s
		}
	}
	if v, ok := lookup(rec, FieldGoalTarget); ok {
		g.TargetAmount = toFloat(v)
	}
	if v, ok := lookup(rec, FieldGoalCurrent); ok {
		g.CurrentAmount = math.Max(toFloat(v), 0)
	}
	if v, ok := lookup(rec, FieldGoalDue); ok {
		if ts, parsed := toTime(v); parsed {
			g.TargetDate = &ts
		}
	}
	if v, ok := lookup(rec, FieldGoalActive); ok {
		g.Active = toBool(v, true)
	}
	if v, ok := lookup(rec, FieldCreatedAt); ok {
		if ts, parsed := toTime(v); parsed {
			g.CreatedAt = ts
		}
	}
	if v, ok := lookup(rec, FieldUpdatedAt); ok {
		if ts, parsed := toTime(v); parsed {
			g.UpdatedAt = &ts
		}
	}
	return g
}

// Goals converts a batch of goal records.
func Goals(recs []domain.Record, now time.Time) []domain.Goal {
	out := make([]domain.Goal, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Goal(rec, now))
	}
	return out
}

// TransactionRecord renders a canonical transaction in the stored field
// layout. Normalizing the result yields the same transaction.
func TransactionRecord(tx domain.Transaction) domain.Record {
	rec := domain.Record{
		domain.FieldID:              tx.ID,
		domain.FieldUserID:          tx.UserID,
		domain.FieldAmount:          tx.Amount,
		domain.FieldDescription:     tx.Description,
		domain.FieldTransactionType: string(tx.Type),
		domain.FieldProcessedAt:     tx.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if tx.Merchant != nil {
		rec[domain.FieldMerchant] = *tx.Merchant
	}
	if tx.Category != nil {
		rec[domain.FieldCategory] = *tx.Category
	}
	if tx.AICategory != nil {
		rec[domain.FieldAICategory] = *tx.AICategory
	}
	if tx.AIInsights != nil {
		rec[domain.FieldAIInsights] = map[string]any{
			"category": tx.AIInsights.Category,
			"insight":  tx.AIInsights.Insight,
			"tip":      tx.AIInsights.Tip,
		}
	}
	return rec
}

// rawField reads one stored name without candidate fallback.
func rawField(rec domain.Record, key string) (any, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// GoalRecord renders a goal in the stored field layout.
func GoalRecord(g domain.Goal) domain.Record {
	rec := domain.Record{
		domain.FieldID:            g.ID,
		domain.FieldUserID:        g.UserID,
		domain.FieldGoalName:      g.Title,
		domain.FieldGoalType:      g.GoalType,
		domain.FieldTargetAmount:  g.TargetAmount,
		domain.FieldCurrentAmount: g.CurrentAmount,
		domain.FieldIsActive:      g.Active,
		domain.FieldCreatedAt:     g.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if g.TargetDate != nil {
		rec[domain.FieldTargetDate] = g.TargetDate.UTC().Format(time.RFC3339Nano)
	}
	if g.UpdatedAt != nil {
		rec[domain.FieldUpdatedAt] = g.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

// User converts a stored user record.
func User(rec domain.Record, now time.Time) domain.User {
	u := domain.User{Name: "User", CreatedAt: now}
	if v, ok := lookup(rec, FieldID); ok {
		u.ID = toString(v)
	}
	if v, ok := rawField(rec, domain.FieldEmail); ok {
		u.Email = toString(v)
	}
	if v, ok := rawField(rec, domain.FieldName); ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			u.Name = s
		}
	}
	if v, ok := rawField(rec, domain.FieldCreatedAt); ok {
		if ts, parsed := toTime(v); parsed {
			u.CreatedAt = ts
		}
	}
	return u
}

// UserRecord renders a user in the stored field layout.
func UserRecord(u domain.User) domain.Record {
	return domain.Record{
		domain.FieldID:        u.ID,
		domain.FieldEmail:     u.Email,
		domain.FieldName:      u.Name,
		domain.FieldCreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
