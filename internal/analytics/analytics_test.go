package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
)

var baseTime = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func expense(cat string, amount float64, day int) domain.Transaction {
	return domain.Transaction{
		ID:        fmt.Sprintf("%s-%d", cat, day),
		Amount:    amount,
		Type:      domain.TypeDebit,
		Effective: cat,
		Timestamp: baseTime.AddDate(0, 0, day),
	}
}

func charge(merchant string, amount float64, at time.Time) domain.Transaction {
	return domain.Transaction{
		Merchant:  strPtr(merchant),
		Amount:    amount,
		Type:      domain.TypePayment,
		Effective: "entertainment",
		Timestamp: at,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAggregate_AverageAndCompleteness(t *testing.T) {
	txs := []domain.Transaction{
		expense("food", 12.30, 1),
		expense("food", 45.10, 2),
		expense("coffee", 4.75, 2),
		expense("coffee", 5.25, 3),
		expense("coffee", 6.10, 4),
		expense("housing", 1450.00, 5),
		{Amount: 2500, Type: domain.TypeCredit, Timestamp: baseTime, Effective: "other"},
		{Amount: 100, Type: domain.TypeDeposit, Timestamp: baseTime, Effective: "other"},
		{Amount: 19.99, Type: domain.TypeWithdrawal, Timestamp: baseTime.AddDate(0, 0, 6), Effective: "other"},
		{Amount: 80.01, Type: domain.TypePayment, Timestamp: baseTime.AddDate(0, 0, 7), Effective: "food"},
	}

	b := Aggregate(txs)

	var sum float64
	for _, c := range b.Categories {
		if c.TransactionCount > 0 && !almostEqual(c.AvgTransaction, c.TotalAmount/float64(c.TransactionCount)) {
			t.Errorf("%s: avg %v != total/count %v", c.Category, c.AvgTransaction, c.TotalAmount/float64(c.TransactionCount))
		}
		sum += c.TotalAmount
	}
	if !almostEqual(sum, b.TotalExpenses) {
		t.Errorf("sum of category totals %v != total expenses %v", sum, b.TotalExpenses)
	}
	if !almostEqual(b.TotalExpenses, 1623.50) {
		t.Errorf("TotalExpenses = %v, want 1623.50", b.TotalExpenses)
	}
	if !almostEqual(b.TotalIncome, 2600) {
		t.Errorf("TotalIncome = %v, want 2600", b.TotalIncome)
	}
	if !almostEqual(b.NetCashflow, 2600-1623.50) {
		t.Errorf("NetCashflow = %v", b.NetCashflow)
	}
	if b.ExpenseCount != 8 || b.IncomeCount != 2 {
		t.Errorf("counts = %d/%d, want 8/2", b.ExpenseCount, b.IncomeCount)
	}
	if b.Categories[0].Category != "housing" {
		t.Errorf("largest category first, got %q", b.Categories[0].Category)
	}

	var pct float64
	for _, c := range b.Categories {
		pct += c.Percentage
	}
	if !almostEqual(pct, 100) {
		t.Errorf("percentages sum to %v, want 100", pct)
	}
}

func TestAggregate_NoExpenses(t *testing.T) {
	b := Aggregate([]domain.Transaction{
		{Amount: 1000, Type: domain.TypeCredit, Timestamp: baseTime},
	})

	if b.HasSpending() {
		t.Error("expected no spending")
	}
	if len(b.Categories) != 0 {
		t.Errorf("expected no categories, got %d", len(b.Categories))
	}
	for _, c := range b.Categories {
		if math.IsNaN(c.Percentage) {
			t.Error("percentage must not be NaN")
		}
	}

	starters := StarterInsights("u1")
	if len(starters) != 2 || starters[0].Category != "food" || starters[1].Category != "entertainment" {
		t.Fatalf("unexpected starter insights: %+v", starters)
	}
	for _, s := range starters {
		if s.TotalAmount != 0 || s.Recommendation == "" {
			t.Errorf("starter insight should carry zero amounts and text: %+v", s)
		}
	}
}

func TestAggregate_ChronologicalWithinCategory(t *testing.T) {
	// Input out of order; the increase is only visible once sorted.
	txs := []domain.Transaction{
		expense("food", 90, 5),
		expense("food", 10, 1),
		expense("food", 80, 4),
		expense("food", 10, 2),
		expense("food", 85, 6),
		expense("food", 10, 3),
	}

	b := Aggregate(txs)
	if len(b.Categories) != 1 {
		t.Fatalf("expected one category, got %d", len(b.Categories))
	}
	got := b.Categories[0].Amounts
	want := []float64{10, 10, 10, 80, 90, 85}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("amounts = %v, want %v", got, want)
		}
	}
	if b.Categories[0].Trend != TrendIncreasing {
		t.Errorf("Trend = %q, want increasing", b.Categories[0].Trend)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    Trend
	}{
		{"empty", nil, TrendStable},
		{"two values", []float64{10, 500}, TrendStable},
		{"flat", []float64{20, 20, 20, 20}, TrendStable},
		{"increasing", []float64{10, 10, 10, 50, 50, 50}, TrendIncreasing},
		{"decreasing", []float64{50, 50, 50, 10, 10, 10}, TrendDecreasing},
		{"exactly three is its own average", []float64{5, 100, 7}, TrendStable},
		{"within band", []float64{100, 100, 100, 110, 110, 110}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.amounts); got != tt.want {
				t.Errorf("ClassifyTrend(%v) = %q, want %q", tt.amounts, got, tt.want)
			}
		})
	}
}

func TestClassifyTrend_OrderSensitive(t *testing.T) {
	amounts := []float64{10, 10, 10, 50, 50, 50}
	reversed := []float64{50, 50, 50, 10, 10, 10}

	if ClassifyTrend(amounts) == ClassifyTrend(reversed) {
		t.Errorf("reversing the sequence is expected to change the trend, both gave %q", ClassifyTrend(amounts))
	}
}

func TestDetectSubscriptions(t *testing.T) {
	start := time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		txs       []domain.Transaction
		wantCount int
		wantTotal float64
	}{
		{
			name: "stable monthly charge is flagged",
			txs: []domain.Transaction{
				charge("Netflix", 50.00, start),
				charge("Netflix", 50.00, start.AddDate(0, 0, 30)),
				charge("Netflix", 50.00, start.AddDate(0, 0, 60)),
			},
			wantCount: 1,
			wantTotal: 50.00,
		},
		{
			name: "volatile amounts are not flagged",
			txs: []domain.Transaction{
				charge("Gym", 10, start),
				charge("Gym", 90, start.AddDate(0, 0, 30)),
			},
			wantCount: 0,
		},
		{
			name: "single occurrence is not flagged",
			txs: []domain.Transaction{
				charge("Spotify", 9.99, start),
			},
			wantCount: 0,
		},
		{
			name: "weekly cadence is not flagged",
			txs: []domain.Transaction{
				charge("Coffee Club", 5, start),
				charge("Coffee Club", 5, start.AddDate(0, 0, 7)),
				charge("Coffee Club", 5, start.AddDate(0, 0, 14)),
			},
			wantCount: 0,
		},
		{
			name: "two data points at monthly spacing are enough",
			txs: []domain.Transaction{
				charge("Hulu", 17.99, start),
				charge("Hulu", 17.99, start.AddDate(0, 0, 31)),
			},
			wantCount: 1,
			wantTotal: 17.99,
		},
		{
			name: "zero amounts are not a subscription",
			txs: []domain.Transaction{
				charge("Trial", 0, start),
				charge("Trial", 0, start.AddDate(0, 0, 30)),
			},
			wantCount: 0,
		},
		{
			name: "description used when merchant missing and case folded",
			txs: []domain.Transaction{
				{Description: "  Cloud Storage ", Amount: 2.99, Type: domain.TypeDebit, Timestamp: start},
				{Description: "cloud storage", Amount: 2.99, Type: domain.TypeDebit, Timestamp: start.AddDate(0, 0, 29)},
			},
			wantCount: 1,
			wantTotal: 2.99,
		},
		{
			name: "empty keys skipped",
			txs: []domain.Transaction{
				{Amount: 10, Type: domain.TypeDebit, Timestamp: start},
				{Amount: 10, Type: domain.TypeDebit, Timestamp: start.AddDate(0, 0, 30)},
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := DetectSubscriptions(tt.txs, DefaultSubscriptionConfig())
			if report.Count != tt.wantCount || len(report.Subscriptions) != tt.wantCount {
				t.Fatalf("Count = %d (%d listed), want %d: %+v", report.Count, len(report.Subscriptions), tt.wantCount, report.Subscriptions)
			}
			if !almostEqual(report.TotalMonthly, tt.wantTotal) {
				t.Errorf("TotalMonthly = %v, want %v", report.TotalMonthly, tt.wantTotal)
			}
			if tt.wantCount == 1 && !almostEqual(report.Subscriptions[0].EstimatedMonthlyTotal, tt.wantTotal) {
				t.Errorf("EstimatedMonthlyTotal = %v, want %v", report.Subscriptions[0].EstimatedMonthlyTotal, tt.wantTotal)
			}
		})
	}
}

func TestDetectSubscriptions_SortedAndDetailed(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		charge("Small", 5, start),
		charge("Small", 5, start.AddDate(0, 0, 30)),
		charge("Big", 99, start.AddDate(0, 0, 30)),
		charge("Big", 101, start),
	}

	report := DetectSubscriptions(txs, DefaultSubscriptionConfig())
	if report.Count != 2 {
		t.Fatalf("Count = %d, want 2", report.Count)
	}
	big := report.Subscriptions[0]
	if big.MerchantKey != "big" {
		t.Errorf("first subscription = %q, want big", big.MerchantKey)
	}
	if !big.LastChargeDate.Equal(start.AddDate(0, 0, 30)) {
		t.Errorf("LastChargeDate = %v", big.LastChargeDate)
	}
	if big.AvgIntervalDays == nil || *big.AvgIntervalDays != 30 {
		t.Errorf("AvgIntervalDays = %v, want 30", big.AvgIntervalDays)
	}
	if big.ChargeCount != 2 {
		t.Errorf("ChargeCount = %d, want 2", big.ChargeCount)
	}
	if !almostEqual(report.TotalMonthly, 105) {
		t.Errorf("TotalMonthly = %v, want 105", report.TotalMonthly)
	}
}

func TestDetectSubscriptions_CustomWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		charge("Weekly Box", 30, start),
		charge("Weekly Box", 30, start.AddDate(0, 0, 7)),
	}

	cfg := SubscriptionConfig{MinIntervalDays: 5, MaxIntervalDays: 10}
	if got := DetectSubscriptions(txs, cfg).Count; got != 1 {
		t.Errorf("Count with weekly window = %d, want 1", got)
	}
}

func TestAverageIntervalDays_WholeDays(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := AverageIntervalDays([]domain.Transaction{
		{Timestamp: start},
		{Timestamp: start.Add(30*24*time.Hour + 23*time.Hour)},
	})
	if got == nil || *got != 30 {
		t.Errorf("AverageIntervalDays = %v, want 30", got)
	}
	if AverageIntervalDays([]domain.Transaction{{Timestamp: start}}) != nil {
		t.Error("single timestamp should give nil")
	}
}

func TestForecast(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		savings    float64
		target     float64
		current    float64
		wantStatus GoalStatus
		wantMonths *float64
		wantRemain float64
	}{
		{"no savings", 0, 1000, 0, StatusNoSavings, nil, 1000},
		{"negative savings", -50, 1000, 0, StatusNoSavings, nil, 1000},
		{"on track boundary", 200, 1200, 0, StatusOnTrack, floatPtr(6), 1200},
		{"moderate", 100, 1200, 0, StatusModerateTrack, floatPtr(12), 1200},
		{"off track", 50, 1200, 0, StatusOffTrack, floatPtr(24), 1200},
		{"already reached", 100, 1000, 1500, StatusOnTrack, floatPtr(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Forecast(tt.savings, tt.target, tt.current, now)
			if p.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", p.Status, tt.wantStatus)
			}
			if p.Remaining != tt.wantRemain {
				t.Errorf("Remaining = %v, want %v", p.Remaining, tt.wantRemain)
			}
			switch {
			case tt.wantMonths == nil && p.MonthsNeeded != nil:
				t.Errorf("MonthsNeeded = %v, want nil", *p.MonthsNeeded)
			case tt.wantMonths != nil && (p.MonthsNeeded == nil || !almostEqual(*p.MonthsNeeded, *tt.wantMonths)):
				t.Errorf("MonthsNeeded = %v, want %v", p.MonthsNeeded, *tt.wantMonths)
			}
			if tt.wantMonths == nil && p.EstimatedCompletionDate != nil {
				t.Error("EstimatedCompletionDate should be nil without savings")
			}
		})
	}
}

func TestForecast_Progress(t *testing.T) {
	p := Forecast(100, 15000, 12450, time.Now())
	if !almostEqual(p.ProgressPercentage, 83) {
		t.Errorf("ProgressPercentage = %v, want 83", p.ProgressPercentage)
	}
	if Forecast(100, 0, 50, time.Now()).ProgressPercentage != 0 {
		t.Error("zero target should give zero progress")
	}
}

func TestForecast_CompletionDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		savings float64
		wantETA bool
	}{
		{"near goal", 500, true},
		{"inside the horizon", 5000.0 / (maxETAMonths - 1), true},
		{"centuries away", 0.9, false},
		{"tiny savings", 1e-9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Forecast(tt.savings, 5000, 0, now)
			if p.MonthsNeeded == nil {
				t.Fatalf("MonthsNeeded is nil for savings %v", tt.savings)
			}
			if (p.EstimatedCompletionDate != nil) != tt.wantETA {
				t.Fatalf("EstimatedCompletionDate = %v, wantETA %v", p.EstimatedCompletionDate, tt.wantETA)
			}
			if p.EstimatedCompletionDate != nil && !p.EstimatedCompletionDate.After(now) {
				t.Errorf("EstimatedCompletionDate %v is not after %v", p.EstimatedCompletionDate, now)
			}
		})
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestEstimateMonthlySavings(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -5)
	old := now.AddDate(0, 0, -45)

	txs := []domain.Transaction{
		{Amount: 600, Type: domain.TypeDebit, Timestamp: recent},
		{Amount: 400, Type: domain.TypePayment, Timestamp: recent},
		{Amount: 9999, Type: domain.TypeDebit, Timestamp: old},
		{Amount: 2000, Type: domain.TypeDeposit, Timestamp: recent},
	}

	tests := []struct {
		name        string
		txs         []domain.Transaction
		mode        IncomeMode
		wantSavings float64
		wantBasis   string
	}{
		{"proxy uses 1.3x expenses", txs, IncomeProxy, 300, BasisExpenseProxy},
		{"observed uses deposits", txs, IncomeObserved, 1000, BasisObserved},
		{"observed falls back to proxy", txs[:2], IncomeObserved, 300, BasisExpenseProxy},
		{"no expenses uses default income", nil, IncomeProxy, 3000, BasisDefaultIncome},
		{"only old expenses uses default income", txs[2:3], IncomeProxy, 3000, BasisDefaultIncome},
		{"overspending clamps to zero", []domain.Transaction{
			{Amount: 500, Type: domain.TypeDebit, Timestamp: recent},
			{Amount: 100, Type: domain.TypeCredit, Timestamp: recent},
		}, IncomeObserved, 0, BasisObserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateMonthlySavings(tt.txs, now, tt.mode)
			if !almostEqual(est.MonthlySavings, tt.wantSavings) {
				t.Errorf("MonthlySavings = %v, want %v", est.MonthlySavings, tt.wantSavings)
			}
			if est.Basis != tt.wantBasis {
				t.Errorf("Basis = %q, want %q", est.Basis, tt.wantBasis)
			}
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	var txs []domain.Transaction
	for i := 0; i < 15; i++ {
		txs = append(txs, expense("food", 10, i))
	}
	txs = append(txs, domain.Transaction{Amount: 500, Type: domain.TypeCredit, Timestamp: baseTime.AddDate(0, 0, 3)})

	d := BuildDashboard("u1", txs)

	if d.Summary.TransactionCount != 16 {
		t.Errorf("TransactionCount = %d, want 16", d.Summary.TransactionCount)
	}
	if !almostEqual(d.Summary.TotalSpent, 150) || !almostEqual(d.Summary.TotalIncome, 500) {
		t.Errorf("Summary = %+v", d.Summary)
	}
	if !almostEqual(d.Summary.NetCashflow, 350) {
		t.Errorf("NetCashflow = %v, want 350", d.Summary.NetCashflow)
	}
	if len(d.RecentTransactions) != RecentLimit {
		t.Fatalf("recent = %d, want %d", len(d.RecentTransactions), RecentLimit)
	}
	for i := 1; i < len(d.RecentTransactions); i++ {
		if d.RecentTransactions[i].Timestamp.After(d.RecentTransactions[i-1].Timestamp) {
			t.Fatal("recent transactions must be newest first")
		}
	}
	if !almostEqual(d.CategorySpending["food"], 150) {
		t.Errorf("CategorySpending[food] = %v", d.CategorySpending["food"])
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.344, 2.34},
		{-1.555, -1.56},
		{50, 50},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
