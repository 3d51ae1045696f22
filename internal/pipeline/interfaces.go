package pipeline

import (
	"context"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/gcs"
	infra "github.com/dvloznov/finance-coach/internal/infra/bigquery"
)

// Repository is the read side of the store used by the snapshot pipeline.
type Repository interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Record, error)
	ListGoals(ctx context.Context, userID string) ([]domain.Record, error)
}

// StorageService archives report objects.
type StorageService = gcs.StorageService

// SnapshotRecorder writes one warehouse row per snapshot.
type SnapshotRecorder = infra.SnapshotRecorder
