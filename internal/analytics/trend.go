package analytics

// Trend labels the direction of recent spending within a category.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const (
	trendWindow         = 3
	trendIncreaseFactor = 1.2
	trendDecreaseFactor = 0.8
)

// ClassifyTrend compares the mean of the last three amounts with the mean of
// all amounts. The input order is taken as chronological; reversing it can
// change the result.
func ClassifyTrend(amounts []float64) Trend {
	if len(amounts) < trendWindow {
		return TrendStable
	}

	avg := mean(amounts)
	recent := mean(amounts[len(amounts)-trendWindow:])

	switch {
	case recent > avg*trendIncreaseFactor:
		return TrendIncreasing
	case recent < avg*trendDecreaseFactor:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
