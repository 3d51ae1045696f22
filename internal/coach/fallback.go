package coach

import (
	"fmt"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// FallbackInsight is the transaction insight used without a model.
const FallbackInsight = "Transaction recorded successfully"

// FallbackAnalysis categorizes tx from its description alone.
func FallbackAnalysis(tx domain.Transaction) domain.Analysis {
	return domain.Analysis{
		Category: GuessCategory(tx.Description),
		Insight:  FallbackInsight,
	}
}

// FallbackRecommendation is the templated advice for a spending category.
// Annual figures project the observed total over twelve months.
func FallbackRecommendation(stats analytics.CategoryStats) string {
	total := stats.TotalAmount
	annual := total * 12

	switch stats.Category {
	case "coffee":
		return fmt.Sprintf("You've spent $%.0f on coffee this month across %d visits. That's $%.0f annually! Brewing at home could save you $%.0f per year.",
			total, stats.TransactionCount, annual, annual*0.7)
	case "food":
		return fmt.Sprintf("Your food spending is $%.0f this month ($%.0f annually). Cooking at home 2 more times per week could save you $%.0f per year.",
			total, annual, annual*0.3)
	case "entertainment":
		return fmt.Sprintf("Entertainment costs: $%.0f this month ($%.0f annually). Consider setting a monthly budget of $%.0f to save $%.0f per year.",
			total, annual, total*0.8, annual*0.2)
	case "transportation":
		return fmt.Sprintf("Transportation spending: $%.0f this month ($%.0f annually). Carpooling or using public transit could reduce this by 20-30%%.",
			total, annual)
	case "shopping":
		return fmt.Sprintf("Shopping expenses: $%.0f this month ($%.0f annually). Consider implementing a 24-hour rule before non-essential purchases.",
			total, annual)
	default:
		return fmt.Sprintf("Your %s spending is $%.0f this month ($%.0f annually). Review this category to identify potential savings opportunities.",
			stats.Category, total, annual)
	}
}

// FallbackGuidance is the templated goal advice for a projection's status.
func FallbackGuidance(p analytics.GoalProjection) string {
	switch p.Status {
	case analytics.StatusOnTrack:
		return fmt.Sprintf("Great progress! You're saving $%.0f/month toward your $%.0f goal. Keep up the momentum!",
			p.MonthlySavings, p.TargetAmount)
	case analytics.StatusOffTrack:
		return fmt.Sprintf("To reach your $%.0f goal in a year, try to save $%.0f/month. Consider cutting dining out or entertainment expenses.",
			p.TargetAmount, p.Remaining/12)
	case analytics.StatusNoSavings:
		return fmt.Sprintf("Start your savings journey! Aim for $%.0f/month to reach your $%.0f goal in a year.",
			p.TargetAmount/12, p.TargetAmount)
	default:
		return fmt.Sprintf("Track your spending to understand your savings potential, then identify areas to cut back toward your $%.0f goal.",
			p.TargetAmount)
	}
}
