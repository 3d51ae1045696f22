package notionsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/logger"
)

// queryPageSize is the page size used when listing existing goal pages.
const queryPageSize = 100

// ErrForecastUnavailable is returned when the forecast could not be computed,
// so that stale pages are not archived on a transient failure.
var ErrForecastUnavailable = errors.New("goal forecast unavailable")

// SyncResult counts the page operations of one sync.
type SyncResult struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

func (r SyncResult) String() string {
	return fmt.Sprintf("created=%d updated=%d archived=%d failed=%d", r.Created, r.Updated, r.Archived, r.Failed)
}

// SyncGoals mirrors the user's goal forecasts into a Notion database.
// Pages are matched on the Goal ID property: existing pages are updated,
// missing ones created, and pages of goals that are no longer active are
// archived. Per-page failures are logged and counted, not returned.
func SyncGoals(ctx context.Context, src ForecastSource, notionClient NotionService, notionDBID, userID string, dryRun bool) (SyncResult, error) {
	log := logger.FromContext(ctx).With().Str("user_id", userID).Logger()
	var result SyncResult

	log.Info().Bool("dry_run", dryRun).Msg("Starting goal sync to Notion")

	report := src.GoalForecast(ctx, userID)
	if report.IsTimeout() {
		return result, fmt.Errorf("SyncGoals: %w: %s", ErrForecastUnavailable, report.Message)
	}
	for _, f := range report.Forecasts {
		if f.Status == analytics.StatusError {
			return result, fmt.Errorf("SyncGoals: %w", ErrForecastUnavailable)
		}
	}

	pages, err := queryUserPages(ctx, notionClient, notionDBID, userID)
	if err != nil {
		return result, fmt.Errorf("SyncGoals: %w", err)
	}
	log.Info().
		Int("forecast_count", len(report.Forecasts)).
		Int("notion_page_count", len(pages)).
		Msg("Retrieved goals and existing Notion pages")

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if goalID := extractGoalID(page); goalID != "" {
			existing[goalID] = string(page.ID)
		}
	}

	current := make(map[string]bool, len(report.Forecasts))
	now := time.Now().UTC()
	for _, f := range report.Forecasts {
		current[f.GoalID] = true
		pageID, found := existing[f.GoalID]

		if dryRun {
			if found {
				log.Info().Str("goal_id", f.GoalID).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				result.Updated++
			} else {
				log.Info().Str("goal_id", f.GoalID).Msg("[DRY RUN] Would create Notion page")
				result.Created++
			}
			continue
		}

		props := GoalToNotionProperties(userID, f, now)
		if found {
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("goal_id", f.GoalID).Str("page_id", pageID).Msg("Failed to update Notion page")
				result.Failed++
				continue
			}
			result.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().Err(err).Str("goal_id", f.GoalID).Msg("Failed to create Notion page")
			result.Failed++
			continue
		}
		log.Debug().Str("goal_id", f.GoalID).Str("page_id", string(page.ID)).Msg("Created Notion page")
		result.Created++
	}

	for _, page := range pages {
		goalID := extractGoalID(page)
		if goalID != "" && current[goalID] {
			continue
		}
		if dryRun {
			log.Info().Str("goal_id", goalID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			result.Archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("goal_id", goalID).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			result.Failed++
			continue
		}
		result.Archived++
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("archived", result.Archived).
		Int("failed", result.Failed).
		Msg("Goal sync completed")
	return result, nil
}

// queryUserPages lists every page of the database owned by userID,
// following pagination cursors.
func queryUserPages(ctx context.Context, notionClient NotionService, databaseID, userID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter: &notionapi.PropertyFilter{
				Property: PropUserID,
				RichText: &notionapi.TextFilterCondition{Equals: userID},
			},
			PageSize: queryPageSize,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryUserPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}
