package pipeline

import (
	"errors"
	"fmt"
	"math"
)

// amountTolerance absorbs float rounding when comparing summed amounts.
const amountTolerance = 0.005

// ValidateReport checks the internal consistency of a report before it is
// archived. Every returned error is joined so one run reports all problems.
func ValidateReport(r *Report) error {
	if r == nil {
		return errors.New("ValidateReport: nil report")
	}

	var errs []error
	if r.UserID == "" {
		errs = append(errs, errors.New("missing user id"))
	}
	if r.SnapshotID == "" {
		errs = append(errs, errors.New("missing snapshot id"))
	}

	var sum float64
	var count int
	for _, c := range r.Breakdown.Categories {
		sum += c.TotalAmount
		count += c.TransactionCount
		if c.TransactionCount > 0 && math.Abs(c.AvgTransaction-c.TotalAmount/float64(c.TransactionCount)) > amountTolerance {
			errs = append(errs, fmt.Errorf("category %q: average %.2f does not match total/count", c.Category, c.AvgTransaction))
		}
	}
	if math.Abs(sum-r.Breakdown.TotalExpenses) > amountTolerance {
		errs = append(errs, fmt.Errorf("category totals %.2f do not add up to expenses %.2f", sum, r.Breakdown.TotalExpenses))
	}
	if count != r.Breakdown.ExpenseCount {
		errs = append(errs, fmt.Errorf("category counts %d do not add up to expense count %d", count, r.Breakdown.ExpenseCount))
	}

	var monthly float64
	for _, s := range r.Subscriptions.Subscriptions {
		monthly += s.EstimatedMonthlyTotal
	}
	if math.Abs(monthly-r.Subscriptions.TotalMonthly) > amountTolerance {
		errs = append(errs, fmt.Errorf("subscription total %.2f does not match listed charges %.2f", r.Subscriptions.TotalMonthly, monthly))
	}

	for _, g := range r.Goals {
		if g.Projection.Remaining < 0 {
			errs = append(errs, fmt.Errorf("goal %q: negative remaining amount", g.GoalID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("ValidateReport: %w", errors.Join(errs...))
	}
	return nil
}
