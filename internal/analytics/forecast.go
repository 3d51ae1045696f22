package analytics

import (
	"math"
	"time"
)

// GoalStatus is the status tier of a goal forecast.
type GoalStatus string

const (
	StatusNoSavings     GoalStatus = "no_savings"
	StatusOnTrack       GoalStatus = "on_track"
	StatusModerateTrack GoalStatus = "moderate_track"
	StatusOffTrack      GoalStatus = "off_track"

	// StatusNoData marks goals of users without any transactions.
	StatusNoData GoalStatus = "no_data"
	// StatusError marks the synthetic forecast returned when data is unavailable.
	StatusError GoalStatus = "error"
)

const (
	onTrackMonths  = 6
	moderateMonths = 12
	daysPerMonth   = 30.44

	// maxETAMonths keeps the completion date inside time.Duration range.
	maxETAMonths = 1200
)

// GoalProjection is the deterministic part of a goal forecast.
type GoalProjection struct {
	MonthlySavings          float64    `json:"monthly_savings"`
	TargetAmount            float64    `json:"target_amount"`
	CurrentAmount           float64    `json:"current_amount"`
	Remaining               float64    `json:"remaining"`
	MonthsNeeded            *float64   `json:"months_needed"`
	Status                  GoalStatus `json:"status"`
	ProgressPercentage      float64    `json:"progress_percentage"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date"`
}

// Forecast projects how long a goal takes at the given monthly savings rate.
// MonthsNeeded is nil when savings are zero or negative. EstimatedCompletionDate
// is nil as well when the goal is more than maxETAMonths away.
func Forecast(monthlySavings, targetAmount, currentAmount float64, now time.Time) GoalProjection {
	p := GoalProjection{
		MonthlySavings: monthlySavings,
		TargetAmount:   targetAmount,
		CurrentAmount:  currentAmount,
		Remaining:      math.Max(targetAmount-currentAmount, 0),
	}

	if targetAmount > 0 {
		p.ProgressPercentage = math.Min(currentAmount/targetAmount*100, 100)
	}

	if monthlySavings <= 0 {
		p.Status = StatusNoSavings
		return p
	}

	months := p.Remaining / monthlySavings
	p.MonthsNeeded = &months

	switch {
	case months <= onTrackMonths:
		p.Status = StatusOnTrack
	case months <= moderateMonths:
		p.Status = StatusModerateTrack
	default:
		p.Status = StatusOffTrack
	}

	// Beyond a century the date is meaningless; leave it unset.
	if months <= maxETAMonths {
		eta := now.Add(time.Duration(months * daysPerMonth * float64(24*time.Hour)))
		p.EstimatedCompletionDate = &eta
	}
	return p
}
