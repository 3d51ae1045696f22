package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// Default detection thresholds. A monthly bill lands 20 to 40 days apart
// and varies by at most 10% of its mean.
const (
	DefaultMinOccurrences     = 2
	DefaultMinIntervalDays    = 20.0
	DefaultMaxIntervalDays    = 40.0
	DefaultAmplitudeTolerance = 0.1
)

// SubscriptionConfig holds the detector thresholds.
type SubscriptionConfig struct {
	MinOccurrences     int
	MinIntervalDays    float64
	MaxIntervalDays    float64
	AmplitudeTolerance float64
}

// DefaultSubscriptionConfig returns the default thresholds.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		MinOccurrences:     DefaultMinOccurrences,
		MinIntervalDays:    DefaultMinIntervalDays,
		MaxIntervalDays:    DefaultMaxIntervalDays,
		AmplitudeTolerance: DefaultAmplitudeTolerance,
	}
}

// withDefaults fills zero-valued thresholds.
func (c SubscriptionConfig) withDefaults() SubscriptionConfig {
	d := DefaultSubscriptionConfig()
	if c.MinOccurrences < 2 {
		c.MinOccurrences = d.MinOccurrences
	}
	if c.MinIntervalDays <= 0 {
		c.MinIntervalDays = d.MinIntervalDays
	}
	if c.MaxIntervalDays <= 0 {
		c.MaxIntervalDays = d.MaxIntervalDays
	}
	if c.AmplitudeTolerance <= 0 {
		c.AmplitudeTolerance = d.AmplitudeTolerance
	}
	return c
}

// Subscription is a recurring charge inferred from transaction history.
type Subscription struct {
	MerchantKey           string    `json:"merchant_key"`
	Category              string    `json:"category"`
	AverageAmount         float64   `json:"average_amount"`
	AvgIntervalDays       *float64  `json:"avg_interval_days"`
	LastChargeDate        time.Time `json:"last_charge_date"`
	EstimatedMonthlyTotal float64   `json:"estimated_monthly_total"`
	ChargeCount           int       `json:"charge_count"`
}

// SubscriptionReport lists detected subscriptions, largest first.
type SubscriptionReport struct {
	Subscriptions []Subscription `json:"subscriptions"`
	TotalMonthly  float64        `json:"total_monthly"`
	Count         int            `json:"count"`
}

// MerchantKey is the grouping key: trimmed lower-cased merchant, else description.
func MerchantKey(tx domain.Transaction) string {
	if key := strings.ToLower(strings.TrimSpace(tx.MerchantName())); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(tx.Description))
}

// DetectSubscriptions flags merchants whose charges are stable in amount and
// arrive on a roughly monthly cadence.
func DetectSubscriptions(txs []domain.Transaction, cfg SubscriptionConfig) SubscriptionReport {
	cfg = cfg.withDefaults()

	groups := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		key := MerchantKey(tx)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	report := SubscriptionReport{Subscriptions: []Subscription{}}
	for key, group := range groups {
		if len(group) < cfg.MinOccurrences {
			continue
		}
		sub, ok := evaluateGroup(key, group, cfg)
		if !ok {
			continue
		}
		report.Subscriptions = append(report.Subscriptions, sub)
	}

	sort.Slice(report.Subscriptions, func(i, j int) bool {
		a, b := report.Subscriptions[i], report.Subscriptions[j]
		if a.EstimatedMonthlyTotal != b.EstimatedMonthlyTotal {
			return a.EstimatedMonthlyTotal > b.EstimatedMonthlyTotal
		}
		return a.MerchantKey < b.MerchantKey
	})

	monthly := make([]float64, 0, len(report.Subscriptions))
	for _, s := range report.Subscriptions {
		monthly = append(monthly, s.EstimatedMonthlyTotal)
	}
	report.TotalMonthly = Round2(sumExact(monthly))
	report.Count = len(report.Subscriptions)
	return report
}

func evaluateGroup(key string, group []domain.Transaction, cfg SubscriptionConfig) (Subscription, bool) {
	ordered := Chronological(group)

	amounts := make([]float64, len(ordered))
	for i, tx := range ordered {
		amounts[i] = Round2(tx.Amount)
	}

	avgInterval := AverageIntervalDays(ordered)
	if avgInterval == nil {
		return Subscription{}, false
	}

	avgAmount := mean(amounts)
	if !stableAmounts(amounts, avgAmount, cfg.AmplitudeTolerance) {
		return Subscription{}, false
	}
	if *avgInterval < cfg.MinIntervalDays || *avgInterval > cfg.MaxIntervalDays {
		return Subscription{}, false
	}

	last := ordered[len(ordered)-1]
	return Subscription{
		MerchantKey:           key,
		Category:              last.EffectiveCategory(),
		AverageAmount:         Round2(avgAmount),
		AvgIntervalDays:       avgInterval,
		LastChargeDate:        last.Timestamp,
		EstimatedMonthlyTotal: Round2(avgAmount),
		ChargeCount:           len(ordered),
	}, true
}

// AverageIntervalDays is the mean of whole-day gaps between consecutive
// chronologically ordered transactions, or nil with fewer than two.
func AverageIntervalDays(ordered []domain.Transaction) *float64 {
	if len(ordered) < 2 {
		return nil
	}
	var total float64
	for i := 1; i < len(ordered); i++ {
		gap := ordered[i].Timestamp.Sub(ordered[i-1].Timestamp)
		total += math.Floor(gap.Hours() / 24)
	}
	avg := total / float64(len(ordered)-1)
	return &avg
}

func stableAmounts(amounts []float64, avg, tolerance float64) bool {
	if avg <= 0 || len(amounts) == 0 {
		return false
	}
	lo, hi := amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	return hi-lo <= tolerance*avg+1e-9
}
