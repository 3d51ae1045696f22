package coach

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
)

func transactionPrompt(tx domain.Transaction) string {
	merchant := tx.MerchantName()
	if merchant == "" {
		merchant = "unknown"
	}

	return "You are a smart financial coach. Analyze this financial transaction and provide helpful insights.\n\n" +
		"TRANSACTION DETAILS:\n" +
		fmt.Sprintf("Amount: $%.2f\n", tx.Amount) +
		fmt.Sprintf("Description: %s\n", tx.Description) +
		fmt.Sprintf("Merchant: %s\n", merchant) +
		fmt.Sprintf("Date: %s\n", tx.Timestamp.Format("2006-01-02")) +
		fmt.Sprintf("Transaction Type: %s\n\n", tx.Type) +
		"TASK:\n" +
		"1. Categorize into one of: " + strings.Join(AllowedCategories, ", ") + "\n" +
		"2. Provide a brief, encouraging insight (1-2 sentences, be supportive not judgmental)\n" +
		"3. Give a helpful tip if applicable (or empty string if none)\n\n" +
		"Return ONLY a raw JSON object with the keys \"category\", \"insight\" and \"tip\".\n" +
		"Do NOT wrap the response in code fences.\n"
}

func spendingPrompt(stats analytics.CategoryStats) string {
	return "You are a smart financial coach. Analyze this spending category and provide specific, concise, actionable insights.\n\n" +
		"SPENDING DATA:\n" +
		fmt.Sprintf("Category: %s\n", stats.Category) +
		fmt.Sprintf("Total spent: $%.2f\n", stats.TotalAmount) +
		fmt.Sprintf("Number of transactions: %d\n", stats.TransactionCount) +
		fmt.Sprintf("Average per transaction: $%.2f\n", stats.AvgTransaction) +
		fmt.Sprintf("Percentage of total spending: %.1f%%\n", stats.Percentage) +
		fmt.Sprintf("Trend: %s\n\n", stats.Trend) +
		"TASK:\n" +
		"Provide a specific, encouraging insight with actionable advice. Include:\n" +
		"1. A friendly observation about the spending\n" +
		"2. A specific tip to save money in this category\n" +
		"3. An estimated annual savings potential\n\n" +
		"Keep it conversational, specific, and motivating. Focus on one clear action. Plain text only."
}

func goalPrompt(p analytics.GoalProjection) string {
	months := "infinite (no savings)"
	if p.MonthsNeeded != nil {
		months = fmt.Sprintf("%.1f months", *p.MonthsNeeded)
	}

	return "You are a supportive financial coach helping someone reach their financial goal.\n\n" +
		"GOAL PROGRESS:\n" +
		fmt.Sprintf("Current amount saved: $%.2f\n", p.CurrentAmount) +
		fmt.Sprintf("Target amount: $%.2f\n", p.TargetAmount) +
		fmt.Sprintf("Amount remaining: $%.2f\n", p.Remaining) +
		fmt.Sprintf("Current monthly savings rate: $%.2f\n", p.MonthlySavings) +
		fmt.Sprintf("Estimated months to reach goal: %s\n", months) +
		fmt.Sprintf("Status: %s\n\n", strings.ReplaceAll(string(p.Status), "_", " ")) +
		"TASK: Provide specific, actionable guidance based on their situation:\n" +
		"- If on track: 2 tips to maintain momentum\n" +
		"- If off track: 2 specific ways to increase savings rate\n" +
		"- If no savings: 2 concrete steps to start saving\n\n" +
		"Be encouraging, concise and specific. Include dollar amounts or percentages where possible."
}
