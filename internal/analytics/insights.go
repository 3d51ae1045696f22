package analytics

// Analysis periods reported alongside insights.
const (
	PeriodLast30Days     = "last_30_days"
	PeriodNoDataYet      = "no_data_yet"
	PeriodGettingStarted = "getting_started"
)

// SpendingInsight is a category breakdown decorated with coaching text.
type SpendingInsight struct {
	UserID           string  `json:"user_id"`
	Category         string  `json:"category"`
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int     `json:"transaction_count"`
	AvgTransaction   float64 `json:"avg_transaction"`
	Percentage       float64 `json:"percentage"`
	Trend            Trend   `json:"trend"`
	Recommendation   string  `json:"ai_recommendation"`
	Period           string  `json:"period"`

	// RecommendationSource is "model" or "fallback".
	RecommendationSource string `json:"recommendation_source,omitempty"`
}

// NewSpendingInsight copies the numeric part of stats.
func NewSpendingInsight(userID string, stats CategoryStats) SpendingInsight {
	return SpendingInsight{
		UserID:           userID,
		Category:         stats.Category,
		TotalAmount:      stats.TotalAmount,
		TransactionCount: stats.TransactionCount,
		AvgTransaction:   stats.AvgTransaction,
		Percentage:       stats.Percentage,
		Trend:            stats.Trend,
		Period:           "monthly",
	}
}

// AnyIncreasing reports whether any insight trends upward.
func AnyIncreasing(insights []SpendingInsight) bool {
	for _, in := range insights {
		if in.Trend == TrendIncreasing {
			return true
		}
	}
	return false
}

// StarterInsights are shown to users with no spending yet.
func StarterInsights(userID string) []SpendingInsight {
	return []SpendingInsight{
		placeholder(userID, "food", "Start tracking your food expenses to get personalized insights! Most people can save $200-500 monthly by cooking at home more often."),
		placeholder(userID, "entertainment", "Track your entertainment spending to identify opportunities to save. Consider setting a monthly budget of $150-200 for movies, dining out, and subscriptions."),
	}
}

// GeneralInsight is shown when transactions exist but none are expenses.
func GeneralInsight(userID string, transactionCount int) SpendingInsight {
	in := placeholder(userID, "general", "Great job tracking your expenses! Keep monitoring your spending patterns to identify areas for improvement.")
	in.TransactionCount = transactionCount
	return in
}

// WelcomeInsight is shown when the transaction history cannot be read.
func WelcomeInsight(userID string) SpendingInsight {
	return placeholder(userID, "tracking", "Welcome to Smart Financial Coach! Start adding transactions to get personalized insights and recommendations.")
}

func placeholder(userID, category, text string) SpendingInsight {
	return SpendingInsight{
		UserID:               userID,
		Category:             category,
		Trend:                TrendStable,
		Recommendation:       text,
		Period:               "monthly",
		RecommendationSource: "fallback",
	}
}
