package coach

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// mockGenerator is a configurable Generator.
type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	calls        atomic.Int32
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", errors.New("not implemented")
}

var _ Generator = (*mockGenerator)(nil)

func replying(text string) *mockGenerator {
	return &mockGenerator{GenerateFunc: func(context.Context, string) (string, error) { return text, nil }}
}

func failing() *mockGenerator {
	return &mockGenerator{GenerateFunc: func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}}
}

func newCoach(gen Generator) *Coach {
	return New(gen, time.Second, zerolog.Nop())
}

func TestAnalyzeTransaction(t *testing.T) {
	tx := domain.Transaction{Amount: 4.5, Description: "Coffee at the corner cafe", Type: domain.TypeDebit}

	tests := []struct {
		name         string
		gen          Generator
		wantSource   Source
		wantReason   string
		wantCategory string
		wantInsight  string
	}{
		{
			name:         "fenced json",
			gen:          replying("```json\n{\"category\": \"Food\", \"insight\": \"Nice treat.\", \"tip\": \"Brew at home.\"}\n```"),
			wantSource:   SourceModel,
			wantCategory: "food",
			wantInsight:  "Nice treat.",
		},
		{
			name:         "json with surrounding prose",
			gen:          replying("Here you go: {\"category\": \"shopping\", \"insight\": \"ok\", \"tip\": \"\"} hope it helps"),
			wantSource:   SourceModel,
			wantCategory: "shopping",
			wantInsight:  "ok",
		},
		{
			name:         "missing tip key",
			gen:          replying(`{"category": "food", "insight": "Nice"}`),
			wantSource:   SourceFallback,
			wantReason:   ReasonUnusable,
			wantCategory: "food",
			wantInsight:  FallbackInsight,
		},
		{
			name:         "unknown category",
			gen:          replying(`{"category": "luxury", "insight": "Nice", "tip": ""}`),
			wantSource:   SourceFallback,
			wantReason:   ReasonUnusable,
			wantCategory: "food",
			wantInsight:  FallbackInsight,
		},
		{
			name:         "not json",
			gen:          replying("I think this is food."),
			wantSource:   SourceFallback,
			wantReason:   ReasonUnusable,
			wantCategory: "food",
			wantInsight:  FallbackInsight,
		},
		{
			name:         "generator error",
			gen:          failing(),
			wantSource:   SourceFallback,
			wantReason:   ReasonCallFailed,
			wantCategory: "food",
			wantInsight:  FallbackInsight,
		},
		{
			name:         "no generator",
			gen:          nil,
			wantSource:   SourceFallback,
			wantReason:   ReasonNoGenerator,
			wantCategory: "food",
			wantInsight:  FallbackInsight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newCoach(tt.gen).AnalyzeTransaction(context.Background(), tx)
			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Value.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Value.Category, tt.wantCategory)
			}
			if got.Value.Insight != tt.wantInsight {
				t.Errorf("Insight = %q, want %q", got.Value.Insight, tt.wantInsight)
			}
		})
	}
}

func TestSpendingRecommendation(t *testing.T) {
	stats := analytics.CategoryStats{Category: "coffee", TotalAmount: 120, TransactionCount: 24}

	t.Run("model text", func(t *testing.T) {
		got := newCoach(replying("  Try brewing at home three days a week.  ")).SpendingRecommendation(context.Background(), stats)
		if got.IsFallback() || got.Value != "Try brewing at home three days a week." {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("too short", func(t *testing.T) {
		got := newCoach(replying("ok")).SpendingRecommendation(context.Background(), stats)
		if !got.IsFallback() || got.Reason != ReasonUnusable {
			t.Errorf("expected unusable fallback, got %+v", got)
		}
		want := "You've spent $120 on coffee this month across 24 visits. That's $1440 annually! Brewing at home could save you $1008 per year."
		if got.Value != want {
			t.Errorf("Value = %q, want %q", got.Value, want)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		slow := &mockGenerator{GenerateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		c := New(slow, 10*time.Millisecond, zerolog.Nop())
		got := c.SpendingRecommendation(context.Background(), stats)
		if got.Reason != ReasonTimeout {
			t.Errorf("Reason = %q, want %q", got.Reason, ReasonTimeout)
		}
		if got.Value == "" {
			t.Error("fallback text must not be empty")
		}
	})
}

func TestRecommendAll_IndependentResults(t *testing.T) {
	gen := &mockGenerator{GenerateFunc: func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Category: shopping") {
			return "", errors.New("boom")
		}
		return "Keep an eye on this category every week.", nil
	}}

	cats := []analytics.CategoryStats{
		{Category: "food", TotalAmount: 300, TransactionCount: 10},
		{Category: "shopping", TotalAmount: 200, TransactionCount: 4},
		{Category: "utilities", TotalAmount: 100, TransactionCount: 2},
	}

	results := newCoach(gen).RecommendAll(context.Background(), cats)
	if len(results) != len(cats) {
		t.Fatalf("got %d results, want %d", len(results), len(cats))
	}
	if results[0].IsFallback() || results[2].IsFallback() {
		t.Error("healthy categories should keep model text")
	}
	if !results[1].IsFallback() || !strings.HasPrefix(results[1].Value, "Shopping expenses: $200") {
		t.Errorf("failed category should fall back, got %+v", results[1])
	}
	if n := gen.calls.Load(); n != 3 {
		t.Errorf("generator called %d times, want 3", n)
	}
}

func TestGoalGuidance_FallbackByStatus(t *testing.T) {
	months := 24.0
	tests := []struct {
		name string
		p    analytics.GoalProjection
		want string
	}{
		{
			name: "on track",
			p:    analytics.GoalProjection{Status: analytics.StatusOnTrack, MonthlySavings: 200, TargetAmount: 1200},
			want: "Great progress! You're saving $200/month toward your $1200 goal. Keep up the momentum!",
		},
		{
			name: "off track",
			p:    analytics.GoalProjection{Status: analytics.StatusOffTrack, MonthlySavings: 50, TargetAmount: 1200, Remaining: 1200, MonthsNeeded: &months},
			want: "To reach your $1200 goal in a year, try to save $100/month. Consider cutting dining out or entertainment expenses.",
		},
		{
			name: "no savings",
			p:    analytics.GoalProjection{Status: analytics.StatusNoSavings, TargetAmount: 6000, Remaining: 6000},
			want: "Start your savings journey! Aim for $500/month to reach your $6000 goal in a year.",
		},
		{
			name: "moderate",
			p:    analytics.GoalProjection{Status: analytics.StatusModerateTrack, TargetAmount: 900},
			want: "Track your spending to understand your savings potential, then identify areas to cut back toward your $900 goal.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newCoach(failing()).GoalGuidance(context.Background(), tt.p)
			if !got.IsFallback() {
				t.Fatal("expected fallback")
			}
			if got.Value != tt.want {
				t.Errorf("Value = %q, want %q", got.Value, tt.want)
			}
		})
	}
}

func TestFallbackRecommendation(t *testing.T) {
	tests := []struct {
		category string
		prefix   string
	}{
		{"food", "Your food spending is $100 this month ($1200 annually). Cooking at home 2 more times per week could save you $360 per year."},
		{"entertainment", "Entertainment costs: $100 this month ($1200 annually). Consider setting a monthly budget of $80 to save $240 per year."},
		{"transportation", "Transportation spending: $100 this month ($1200 annually). Carpooling or using public transit could reduce this by 20-30%."},
		{"shopping", "Shopping expenses: $100 this month ($1200 annually)."},
		{"healthcare", "Your healthcare spending is $100 this month ($1200 annually)."},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := FallbackRecommendation(analytics.CategoryStats{Category: tt.category, TotalAmount: 100, TransactionCount: 5})
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("got %q, want prefix %q", got, tt.prefix)
			}
		})
	}
}

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Weekly grocery run", "food"},
		{"Shell fuel", "transportation"},
		{"Netflix monthly", "entertainment"},
		{"Internet bill", "utilities"},
		{"Amazon order", "shopping"},
		{"Dentist", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		if got := GuessCategory(tt.desc); got != tt.want {
			t.Errorf("GuessCategory(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced object", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around object", "Sure! {\"a\":1} Thanks", `{"a":1}`},
		{"array first", `noise [{"a":1}] noise`, `[{"a":1}]`},
		{"no json", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	gen, err := NewGeminiGenerator(context.Background(), "", "gemini-1.5-flash")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
	if gen != nil {
		t.Errorf("generator = %v, want nil", gen)
	}
}

func TestAnalyzeTransaction_ContextDone(t *testing.T) {
	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	canceled, cancel2 := context.WithCancel(context.Background())
	cancel2()

	tests := []struct {
		name       string
		ctx        context.Context
		wantReason string
	}{
		{name: "deadline passed", ctx: expired, wantReason: ReasonTimeout},
		{name: "canceled", ctx: canceled, wantReason: ReasonCallFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := replying(`{"category":"Food","insight":"ok","tip":"ok"}`)
			tx := domain.Transaction{Amount: 12, Description: "Lunch", Type: domain.TypeDebit}

			got := newCoach(gen).AnalyzeTransaction(tt.ctx, tx)
			if got.Source != SourceFallback || got.Reason != tt.wantReason {
				t.Errorf("result = %+v, want fallback with reason %q", got, tt.wantReason)
			}
			if n := gen.calls.Load(); n != 0 {
				t.Errorf("generator called %d times, want 0", n)
			}
		})
	}
}
