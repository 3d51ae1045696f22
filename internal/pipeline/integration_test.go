package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	infra "github.com/dvloznov/finance-coach/internal/infra/bigquery"
	"github.com/dvloznov/finance-coach/internal/pipeline"
)

// MockRepository is a mock implementation of Repository for testing.
type MockRepository struct {
	ListTransactionsFunc func(ctx context.Context, userID string) ([]domain.Record, error)
	ListGoalsFunc        func(ctx context.Context, userID string) ([]domain.Record, error)
}

func (m *MockRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Record, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) ListGoals(ctx context.Context, userID string) ([]domain.Record, error) {
	if m.ListGoalsFunc != nil {
		return m.ListGoalsFunc(ctx, userID)
	}
	return nil, nil
}

// MockStorageService is a mock implementation of StorageService for testing.
type MockStorageService struct {
	UploadBytesFunc  func(ctx context.Context, bucket, object, contentType string, data []byte) error
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
}

func (m *MockStorageService) UploadBytes(ctx context.Context, bucket, object, contentType string, data []byte) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, bucket, object, contentType, data)
	}
	return nil
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return nil, errors.New("not found")
}

// MockRecorder is a mock implementation of SnapshotRecorder for testing.
type MockRecorder struct {
	RecordSnapshotFunc func(ctx context.Context, row *infra.SnapshotRow) error
}

func (m *MockRecorder) RecordSnapshot(ctx context.Context, row *infra.SnapshotRow) error {
	if m.RecordSnapshotFunc != nil {
		return m.RecordSnapshotFunc(ctx, row)
	}
	return nil
}

var (
	_ pipeline.Repository       = (*MockRepository)(nil)
	_ pipeline.StorageService   = (*MockStorageService)(nil)
	_ pipeline.SnapshotRecorder = (*MockRecorder)(nil)
)

func sampleRepo() *MockRepository {
	now := time.Now().UTC()
	day := func(n int) string { return now.AddDate(0, 0, -n).Format(time.RFC3339) }
	return &MockRepository{
		ListTransactionsFunc: func(_ context.Context, userID string) ([]domain.Record, error) {
			return []domain.Record{
				{"id": "t1", "user_id": userID, "amount": 15.99, "merchant": "Netflix", "transaction_type": "payment", "processed_at": day(62)},
				{"id": "t2", "user_id": userID, "amount": 15.99, "merchant": "Netflix", "transaction_type": "payment", "processed_at": day(32)},
				{"id": "t3", "user_id": userID, "amount": 15.99, "merchant": "Netflix", "transaction_type": "payment", "processed_at": day(2)},
				{"id": "t4", "user_id": userID, "amount": 120.0, "category": "food", "transaction_type": "debit", "date": day(3)},
				{"id": "t5", "user_id": userID, "amount": 2000.0, "description": "Salary", "transaction_type": "deposit", "date": day(4)},
			}, nil
		},
		ListGoalsFunc: func(_ context.Context, userID string) ([]domain.Record, error) {
			return []domain.Record{
				{"id": "g1", "user_id": userID, "goal_name": "Emergency Fund", "target_amount": 1000.0, "current_amount": 400.0, "is_active": true},
				{"id": "g2", "user_id": userID, "goal_name": "Old", "target_amount": 50.0, "is_active": false},
			}, nil
		},
	}
}

func TestExportSnapshot_FullPipeline(t *testing.T) {
	var uploaded struct {
		bucket, object, contentType string
		data                        []byte
	}
	storage := &MockStorageService{
		UploadBytesFunc: func(_ context.Context, bucket, object, contentType string, data []byte) error {
			uploaded.bucket, uploaded.object, uploaded.contentType, uploaded.data = bucket, object, contentType, data
			return nil
		},
	}

	var recorded *infra.SnapshotRow
	recorder := &MockRecorder{
		RecordSnapshotFunc: func(_ context.Context, row *infra.SnapshotRow) error {
			recorded = row
			return nil
		},
	}

	deps := pipeline.Deps{
		Repo:          sampleRepo(),
		Storage:       storage,
		Bucket:        "reports",
		Recorder:      recorder,
		Subscriptions: analytics.DefaultSubscriptionConfig(),
		IncomeMode:    analytics.IncomeObserved,
		Log:           zerolog.Nop(),
	}

	state, err := pipeline.ExportSnapshot(context.Background(), deps, "u1", "snap-1")
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	if !strings.HasPrefix(uploaded.object, "snapshots/u1/") || !strings.HasSuffix(uploaded.object, "/snap-1.json") {
		t.Errorf("object = %q", uploaded.object)
	}
	if uploaded.bucket != "reports" || uploaded.contentType != pipeline.ReportContentType {
		t.Errorf("upload = %s %s", uploaded.bucket, uploaded.contentType)
	}
	if state.ReportURI != "gs://reports/"+uploaded.object || state.Outcome() != state.ReportURI {
		t.Errorf("ReportURI = %q", state.ReportURI)
	}

	var report pipeline.Report
	if err := json.Unmarshal(uploaded.data, &report); err != nil {
		t.Fatalf("archived report is not JSON: %v", err)
	}
	if report.Subscriptions.Count != 1 || len(report.Goals) != 1 || report.Breakdown.TotalIncome != 2000 {
		t.Errorf("report = %+v", report)
	}

	if recorded == nil {
		t.Fatal("snapshot row was not recorded")
	}
	if recorded.SnapshotID != "snap-1" || recorded.ActiveGoalCount != 1 || recorded.SubscriptionCount != 1 {
		t.Errorf("row = %+v", recorded)
	}
	if !recorded.ReportURI.Valid || recorded.ReportURI.StringVal != state.ReportURI {
		t.Errorf("row ReportURI = %+v", recorded.ReportURI)
	}
	if recorded.SavingsBasis != analytics.BasisObserved {
		t.Errorf("SavingsBasis = %q", recorded.SavingsBasis)
	}
}

func TestExportSnapshot_OptionalSinks(t *testing.T) {
	deps := pipeline.Deps{Repo: sampleRepo(), Log: zerolog.Nop()}

	state, err := pipeline.ExportSnapshot(context.Background(), deps, "u1", "")
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if state.SnapshotID == "" || state.ReportURI != "" || state.Recorded {
		t.Errorf("state = %+v", state)
	}
	if !strings.HasSuffix(state.Outcome(), "computed") {
		t.Errorf("Outcome() = %q", state.Outcome())
	}
}

func TestExportSnapshot_Failures(t *testing.T) {
	tests := []struct {
		name     string
		deps     pipeline.Deps
		wantStep string
	}{
		{
			name: "repository failure",
			deps: pipeline.Deps{Repo: &MockRepository{
				ListTransactionsFunc: func(context.Context, string) ([]domain.Record, error) {
					return nil, errors.New("connection refused")
				},
			}},
			wantStep: "pipeline step 1 failed",
		},
		{
			name: "upload failure",
			deps: pipeline.Deps{
				Repo:   sampleRepo(),
				Bucket: "reports",
				Storage: &MockStorageService{UploadBytesFunc: func(context.Context, string, string, string, []byte) error {
					return errors.New("permission denied")
				}},
			},
			wantStep: "pipeline step 3 failed",
		},
		{
			name: "recorder failure",
			deps: pipeline.Deps{
				Repo: sampleRepo(),
				Recorder: &MockRecorder{RecordSnapshotFunc: func(context.Context, *infra.SnapshotRow) error {
					return errors.New("table not found")
				}},
			},
			wantStep: "pipeline step 4 failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Log = zerolog.Nop()
			_, err := pipeline.ExportSnapshot(context.Background(), tt.deps, "u1", "snap")
			if err == nil || !strings.Contains(err.Error(), tt.wantStep) {
				t.Errorf("error = %v, want %q", err, tt.wantStep)
			}
		})
	}

	if _, err := pipeline.ExportSnapshot(context.Background(), pipeline.Deps{Repo: sampleRepo()}, "", ""); err == nil {
		t.Error("expected error for missing user id")
	}
}
