package coach

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 8 * time.Second

// Fallback reasons.
const (
	ReasonNoGenerator = "generator not configured"
	ReasonTimeout     = "model call timed out"
	ReasonCallFailed  = "model call failed"
	ReasonUnusable    = "unusable model output"
)

// Coach turns analytics into coaching text. Every method returns a usable
// value even when the generator is nil or failing.
type Coach struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Coach. gen may be nil.
func New(gen Generator, timeout time.Duration, log zerolog.Logger) *Coach {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coach{gen: gen, timeout: timeout, log: log}
}

// Enabled reports whether a generator is configured.
func (c *Coach) Enabled() bool {
	return c.gen != nil
}

// AnalyzeTransaction categorizes tx and produces a short insight and tip.
func (c *Coach) AnalyzeTransaction(ctx context.Context, tx domain.Transaction) Result[domain.Analysis] {
	raw, reason := c.call(ctx, "analyze_transaction", transactionPrompt(tx))
	if reason != "" {
		return Fallback(FallbackAnalysis(tx), reason)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("call", "analyze_transaction").Str("reason", ReasonUnusable).Msg("Using fallback analysis")
		return Fallback(FallbackAnalysis(tx), ReasonUnusable)
	}
	return Ok(analysis)
}

// SpendingRecommendation produces advice for one spending category.
func (c *Coach) SpendingRecommendation(ctx context.Context, stats analytics.CategoryStats) Result[string] {
	return c.text(ctx, "spending_recommendation", spendingPrompt(stats), FallbackRecommendation(stats))
}

// GoalGuidance produces advice for reaching a goal.
func (c *Coach) GoalGuidance(ctx context.Context, p analytics.GoalProjection) Result[string] {
	return c.text(ctx, "goal_guidance", goalPrompt(p), FallbackGuidance(p))
}

// RecommendAll requests advice for every category concurrently. Each result
// is independent; a failure for one category does not affect the others.
func (c *Coach) RecommendAll(ctx context.Context, categories []analytics.CategoryStats) []Result[string] {
	results := make([]Result[string], len(categories))

	var wg sync.WaitGroup
	for i, stats := range categories {
		wg.Add(1)
		go func(i int, stats analytics.CategoryStats) {
			defer wg.Done()
			results[i] = c.SpendingRecommendation(ctx, stats)
		}(i, stats)
	}
	wg.Wait()

	return results
}

func (c *Coach) text(ctx context.Context, call, prompt, fallback string) Result[string] {
	raw, reason := c.call(ctx, call, prompt)
	if reason != "" {
		return Fallback(fallback, reason)
	}

	text, err := usableText(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("call", call).Str("reason", ReasonUnusable).Msg("Using fallback text")
		return Fallback(fallback, ReasonUnusable)
	}
	return Ok(text)
}

// call runs the generator under the per-call timeout. A non-empty reason
// means the caller must use its fallback.
func (c *Coach) call(ctx context.Context, call, prompt string) (string, string) {
	if c.gen == nil {
		return "", ReasonNoGenerator
	}
	if err := ctx.Err(); err != nil {
		c.log.Debug().Err(err).Str("call", call).Msg("Context done, skipping model call")
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ReasonTimeout
		}
		return "", ReasonCallFailed
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		reason := ReasonCallFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		c.log.Warn().
			Err(err).
			Str("call", call).
			Str("reason", reason).
			Dur("duration", time.Since(start)).
			Msg("Model call failed, using fallback")
		return "", reason
	}

	c.log.Debug().Str("call", call).Dur("duration", time.Since(start)).Msg("Model call completed")
	return raw, ""
}
