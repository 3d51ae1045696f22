package normalize

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestTransaction_TimestampResolution(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.Record
		want time.Time
	}{
		{
			name: "date wins over processed_at",
			rec: domain.Record{
				"date":         "2025-03-01",
				"processed_at": "2025-02-01T10:00:00Z",
			},
			want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "processed_at with offset",
			rec: domain.Record{
				"processed_at": "2025-02-01T10:00:00+00:00",
				"created_at":   "2025-01-01T10:00:00Z",
			},
			want: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "created_at fallback without zone",
			rec:  domain.Record{"created_at": "2025-01-05T08:30:00.123456"},
			want: time.Date(2025, 1, 5, 8, 30, 0, 123456000, time.UTC),
		},
		{
			name: "no timestamp gives now",
			rec:  domain.Record{"amount": 10.0},
			want: fixedNow,
		},
		{
			name: "unparseable gives now",
			rec:  domain.Record{"date": "yesterday-ish"},
			want: fixedNow,
		},
		{
			name: "unparseable date-time gives now",
			rec:  domain.Record{"date": "2025-13-45T99:00:00"},
			want: fixedNow,
		},
		{
			name: "time.Time passes through",
			rec:  domain.Record{"processed_at": time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC)},
			want: time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "civil date from warehouse",
			rec:  domain.Record{"date": civil.Date{Year: 2024, Month: time.June, Day: 2}},
			want: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "empty date string skipped",
			rec:  domain.Record{"date": "", "created_at": "2025-01-02"},
			want: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transaction(tt.rec, fixedNow)
			if !got.Timestamp.Equal(tt.want) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, tt.want)
			}
		})
	}
}

func TestTransaction_EffectiveCategory(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.Record
		want string
	}{
		{"ai_category first", domain.Record{"ai_category": "utilities", "category": "food"}, "utilities"},
		{"category second", domain.Record{"category": "healthcare", "merchant": "CVS"}, "healthcare"},
		{"merchant lower-cased", domain.Record{"merchant": "Home Depot"}, "home depot"},
		{"literal other", domain.Record{"amount": 3.0}, "other"},
		{"starbucks coerced to coffee", domain.Record{"merchant": "Starbucks"}, "coffee"},
		{"coffee beats food", domain.Record{"category": "coffee food"}, "coffee"},
		{"dining coerced to food", domain.Record{"ai_category": "Fine Dining"}, "food"},
		{"netflix coerced", domain.Record{"merchant": "Netflix"}, "entertainment"},
		{"gas station coerced", domain.Record{"merchant": "Shell Gas Station"}, "transportation"},
		{"amazon coerced", domain.Record{"merchant": "Amazon"}, "shopping"},
		{"empty ai_category skipped", domain.Record{"ai_category": "", "category": "housing"}, "housing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transaction(tt.rec, fixedNow)
			if got.EffectiveCategory() != tt.want {
				t.Errorf("EffectiveCategory() = %q, want %q", got.EffectiveCategory(), tt.want)
			}
		})
	}
}

func TestEffectiveCategory_MatchesRecordPath(t *testing.T) {
	got := EffectiveCategory(nil, strPtr("  "), strPtr("Uber"))
	if got != "transportation" {
		t.Errorf("EffectiveCategory = %q, want transportation", got)
	}
	if got := EffectiveCategory(nil, nil, nil); got != "other" {
		t.Errorf("EffectiveCategory(nil...) = %q, want other", got)
	}
}

func TestTransaction_AmountCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"int64", int64(9), 9},
		{"json number", json.Number("3.25"), 3.25},
		{"numeric string", " 42.10 ", 42.10},
		{"negative becomes magnitude", -15.0, 15},
		{"big.Rat from NUMERIC", big.NewRat(1999, 100), 19.99},
		{"decimal", decimal.RequireFromString("5.55"), 5.55},
		{"garbage string", "twelve", 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transaction(domain.Record{"amount": tt.value}, fixedNow)
			if diff := got.Amount - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.want)
			}
		})
	}
}

func TestTransaction_MissingOptionalFields(t *testing.T) {
	got := Transaction(domain.Record{}, fixedNow)

	if got.Merchant != nil || got.Category != nil || got.AICategory != nil || got.AIInsights != nil {
		t.Errorf("expected nil optional fields, got %+v", got)
	}
	if got.Type != domain.TypeDebit {
		t.Errorf("Type = %q, want debit", got.Type)
	}
	if got.Amount != 0 {
		t.Errorf("Amount = %v, want 0", got.Amount)
	}
}

func TestTransaction_TypeAndInsights(t *testing.T) {
	rec := domain.Record{
		"type":        "DEPOSIT",
		"ai_insights": `{"category":"other","insight":"Paycheck","tip":""}`,
	}
	got := Transaction(rec, fixedNow)

	if got.Type != domain.TypeDeposit {
		t.Errorf("Type = %q, want deposit", got.Type)
	}
	if got.AIInsights == nil || got.AIInsights.Insight != "Paycheck" {
		t.Errorf("AIInsights = %+v, want insight Paycheck", got.AIInsights)
	}

	unknown := Transaction(domain.Record{"transaction_type": "refund"}, fixedNow)
	if unknown.Type != domain.TypeDebit {
		t.Errorf("unknown type should default to debit, got %q", unknown.Type)
	}
}

func TestTransaction_FixedPoint(t *testing.T) {
	original := domain.Record{
		"id":               "tx-1",
		"user_id":          "u-1",
		"amount":           "18.40",
		"description":      "Purchase at Starbucks",
		"merchant":         "Starbucks",
		"category":         "food",
		"ai_category":      "food",
		"transaction_type": "payment",
		"created_at":       "2025-03-01T07:45:00Z",
		"ai_insights":      map[string]any{"category": "food", "insight": "Nice", "tip": "Brew at home"},
	}

	first := Transaction(original, fixedNow)
	second := Transaction(TransactionRecord(first), fixedNow.Add(time.Hour))

	if first.ID != second.ID || first.UserID != second.UserID {
		t.Errorf("identity changed: %+v vs %+v", first, second)
	}
	if first.Amount != second.Amount {
		t.Errorf("Amount changed: %v vs %v", first.Amount, second.Amount)
	}
	if !first.Timestamp.Equal(second.Timestamp) {
		t.Errorf("Timestamp changed: %v vs %v", first.Timestamp, second.Timestamp)
	}
	if first.EffectiveCategory() != second.EffectiveCategory() {
		t.Errorf("EffectiveCategory changed: %q vs %q", first.EffectiveCategory(), second.EffectiveCategory())
	}
	if first.Type != second.Type || first.Description != second.Description {
		t.Errorf("fields changed: %+v vs %+v", first, second)
	}
	if first.MerchantName() != second.MerchantName() {
		t.Errorf("Merchant changed")
	}
	if *first.AIInsights != *second.AIInsights {
		t.Errorf("AIInsights changed: %+v vs %+v", first.AIInsights, second.AIInsights)
	}
}

func TestGoal(t *testing.T) {
	tests := []struct {
		name        string
		rec         domain.Record
		wantTitle   string
		wantTarget  float64
		wantCurrent float64
		wantActive  bool
	}{
		{
			name:        "stored schema",
			rec:         domain.Record{"goal_name": "Emergency Fund", "target_amount": 15000.0, "current_amount": 12450.0, "is_active": true},
			wantTitle:   "Emergency Fund",
			wantTarget:  15000,
			wantCurrent: 12450,
			wantActive:  true,
		},
		{
			name:        "legacy names",
			rec:         domain.Record{"title": "Car", "target": "8000", "current": 500, "is_active": false},
			wantTitle:   "Car",
			wantTarget:  8000,
			wantCurrent: 500,
			wantActive:  false,
		},
		{
			name:        "defaults",
			rec:         domain.Record{},
			wantTitle:   "Financial Goal",
			wantTarget:  0,
			wantCurrent: 0,
			wantActive:  true,
		},
		{
			name:        "negative current clamped",
			rec:         domain.Record{"goal_name": "X", "target_amount": 100, "current_amount": -5},
			wantTitle:   "X",
			wantTarget:  100,
			wantCurrent: 0,
			wantActive:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal(tt.rec, fixedNow)
			if g.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", g.Title, tt.wantTitle)
			}
			if g.TargetAmount != tt.wantTarget {
				t.Errorf("TargetAmount = %v, want %v", g.TargetAmount, tt.wantTarget)
			}
			if g.CurrentAmount != tt.wantCurrent {
				t.Errorf("CurrentAmount = %v, want %v", g.CurrentAmount, tt.wantCurrent)
			}
			if g.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", g.Active, tt.wantActive)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01T00:00:00.5+02:00", time.Date(2024, 12, 31, 22, 0, 0, 500000000, time.UTC), true},
		{"2025-01-01T10:15", time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC), true},
		{"2024-01-15 10:30:00", want, true},
		{"2024-01-15 10:30:00+00:00", want, true},
		{"2024-01-15T10:30:00+00", want, true},
		{"2024-01-15 12:30:00.000000+02", want, true},
		{"01/02/2025", time.Time{}, false},
		{"2024-01-15 bogus", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 3, 3, true},
		{"json number", json.Number("19.99"), 19.99, true},
		{"numeric string", " 7.25 ", 7.25, true},
		{"word", "ten", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseAmount(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
