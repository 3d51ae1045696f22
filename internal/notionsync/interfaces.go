package notionsync

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-coach/internal/service"
)

// NotionService defines the Notion operations used by the goal sync.
// This interface enables mocking of the Notion API in tests.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// ArchivePage removes a page from the database view.
	ArchivePage(ctx context.Context, pageID string) error
}

// ForecastSource produces the goal forecasts that are mirrored into Notion.
type ForecastSource interface {
	GoalForecast(ctx context.Context, userID string) service.ForecastReport
}

var _ ForecastSource = (*service.Service)(nil)
