// Package app wires configuration into the stores, model clients and
// services shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/coach"
	"github.com/dvloznov/finance-coach/internal/config"
	"github.com/dvloznov/finance-coach/internal/gcsuploader"
	infra "github.com/dvloznov/finance-coach/internal/infra/bigquery"
	"github.com/dvloznov/finance-coach/internal/infra/mongodb"
	"github.com/dvloznov/finance-coach/internal/infra/postgres"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/notionsync"
	"github.com/dvloznov/finance-coach/internal/pipeline"
	"github.com/dvloznov/finance-coach/internal/service"
	"github.com/dvloznov/finance-coach/internal/store"
	"github.com/dvloznov/finance-coach/internal/store/memory"
	"github.com/dvloznov/finance-coach/internal/synthetic"
)

// App holds the long-lived collaborators of a process.
type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Store   store.Store
	Coach   *coach.Coach
	Service *service.Service

	// Optional sinks; nil when not configured.
	Storage  pipeline.StorageService
	Recorder pipeline.SnapshotRecorder
	Notion   notionsync.NotionService

	closers []func() error
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg config.Config) zerolog.Logger {
	return logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// New opens the configured store and model client. Close releases them.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app.New: %w", err)
	}
	a.Coach = coach.New(gen, cfg.LLMTimeout, log)
	if !a.Coach.Enabled() {
		log.Warn().Str("provider", cfg.LLMProvider).Msg("No model configured, coaching text uses deterministic fallbacks")
	}

	a.Service = service.New(st, a.Coach, synthetic.New(0), service.Config{
		IncomeMode:      cfg.IncomeMode,
		Subscriptions:   cfg.Subscriptions,
		ForecastTimeout: cfg.ForecastTimeout,
		SeedTimeout:     cfg.SeedTimeout,
	}, log)

	if cfg.GCSBucket != "" {
		a.Storage = gcsuploader.NewGCSStorageService()
	}

	if cfg.BigQueryProject != "" {
		rec, err := infra.NewSnapshotRecorder(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.Recorder = rec
		a.closers = append(a.closers, rec.Close)
	}

	if cfg.NotionToken != "" && cfg.NotionGoalsDBID != "" {
		a.Notion = notionsync.NewNotionClient(cfg.NotionToken)
	}

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("llm_provider", cfg.LLMProvider).
		Bool("archive", a.Storage != nil).
		Bool("snapshots", a.Recorder != nil).
		Bool("notion", a.Notion != nil).
		Msg("Application initialized")
	return a, nil
}

// Close releases every opened client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore connects the backend selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return memory.New(), nil
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.BackendBigQuery:
		return infra.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	case config.BackendMongo:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("OpenStore: unknown backend %q", cfg.StoreBackend)
	}
}

// NewGenerator builds the model client for cfg.LLMProvider. A provider
// without an API key yields a nil generator, which disables the model.
func NewGenerator(ctx context.Context, cfg config.Config) (coach.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		gen, err := coach.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("NewGenerator: %w", err)
		}
		return gen, nil
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return coach.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case config.ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("NewGenerator: unknown provider %q", cfg.LLMProvider)
	}
}
