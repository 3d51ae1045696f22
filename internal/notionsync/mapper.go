package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-coach/internal/service"
)

// Property names of the goals database.
const (
	PropGoal         = "Goal"
	PropGoalID       = "Goal ID"
	PropUserID       = "User ID"
	PropTarget       = "Target"
	PropCurrent      = "Current"
	PropRemaining    = "Remaining"
	PropProgress     = "Progress"
	PropMonthsNeeded = "Months Needed"
	PropStatus       = "Status"
	PropTargetDate   = "Target Date"
	PropCompletion   = "Estimated Completion"
	PropGuidance     = "Guidance"
	PropSyncedAt     = "Synced At"
)

// maxRichText is the Notion limit for a single rich text object.
const maxRichText = 2000

// GoalToNotionProperties converts a goal forecast to page properties.
func GoalToNotionProperties(userID string, f service.GoalForecast, syncedAt time.Time) notionapi.Properties {
	props := notionapi.Properties{
		PropGoal: notionapi.TitleProperty{
			Title: richText(f.Title),
		},
		PropGoalID: notionapi.RichTextProperty{
			RichText: richText(f.GoalID),
		},
		PropUserID: notionapi.RichTextProperty{
			RichText: richText(userID),
		},
		PropTarget:    notionapi.NumberProperty{Number: f.TargetAmount},
		PropCurrent:   notionapi.NumberProperty{Number: f.CurrentAmount},
		PropRemaining: notionapi.NumberProperty{Number: f.Remaining},
		PropProgress:  notionapi.NumberProperty{Number: f.ProgressPercentage},
		PropStatus: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(f.Status)},
		},
		PropSyncedAt: dateProperty(syncedAt),
	}

	if f.MonthsNeeded != nil {
		props[PropMonthsNeeded] = notionapi.NumberProperty{Number: *f.MonthsNeeded}
	}
	if f.TargetDate != nil {
		props[PropTargetDate] = dateProperty(*f.TargetDate)
	}
	if f.EstimatedCompletionDate != nil {
		props[PropCompletion] = dateProperty(*f.EstimatedCompletionDate)
	}
	if f.AIGuidance != "" {
		props[PropGuidance] = notionapi.RichTextProperty{
			RichText: richText(f.AIGuidance),
		}
	}
	return props
}

func richText(content string) []notionapi.RichText {
	if r := []rune(content); len(r) > maxRichText {
		content = string(r[:maxRichText])
	}
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t.UTC())
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

// extractGoalID reads the Goal ID property of a page, or "" when absent.
func extractGoalID(page notionapi.Page) string {
	prop, ok := page.Properties[PropGoalID]
	if !ok {
		return ""
	}
	if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
		if rt.RichText[0].PlainText != "" {
			return rt.RichText[0].PlainText
		}
		if rt.RichText[0].Text != nil {
			return rt.RichText[0].Text.Content
		}
	}
	return ""
}
